// internal/workers/credit/view-customer-loans/validation.go
package viewcustomerloans

import "credit-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"customerId"},
		Properties: map[string]validation.Property{
			"customerId": {
				Type:    "integer",
				Minimum: validation.Float(1),
			},
		},
	}
}

var inputValidator = validation.MustValidator(GetInputSchema())
