// internal/workers/credit/register-customer/validation.go
package registercustomer

import "credit-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"firstName", "monthlyIncome", "phoneNumber"},
		Properties: map[string]validation.Property{
			"firstName": {
				Type:      "string",
				MinLength: validation.Int(1),
				MaxLength: validation.Int(100),
			},
			"lastName": {
				Type:      "string",
				MaxLength: validation.Int(100),
			},
			"age": {
				Type:    "integer",
				Minimum: validation.Float(18),
				Maximum: validation.Float(120),
			},
			"monthlyIncome": {
				Type:        "integer",
				Description: "Monthly income in whole currency units",
				Minimum:     validation.Float(1),
			},
			"phoneNumber": {
				Type:    "string",
				Pattern: `^\+?[0-9]{6,15}$`,
			},
		},
	}
}

var inputValidator = validation.MustValidator(GetInputSchema())
