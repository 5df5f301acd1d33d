// internal/workers/credit/create-loan/validation.go
package createloan

import "credit-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"customerId", "loanAmount", "interestRate", "tenure"},
		Properties: map[string]validation.Property{
			"customerId": {
				Type:    "integer",
				Minimum: validation.Float(1),
			},
			"loanAmount": {
				Type:             "number",
				ExclusiveMinimum: validation.Float(0),
				Maximum:          validation.Float(1e12),
			},
			"interestRate": {
				Type:    "number",
				Minimum: validation.Float(0),
				Maximum: validation.Float(100),
			},
			"tenure": {
				Type:    "integer",
				Minimum: validation.Float(1),
				Maximum: validation.Float(600),
			},
		},
	}
}

var inputValidator = validation.MustValidator(GetInputSchema())
