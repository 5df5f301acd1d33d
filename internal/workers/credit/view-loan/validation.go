// internal/workers/credit/view-loan/validation.go
package viewloan

import "credit-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"loanId"},
		Properties: map[string]validation.Property{
			"loanId": {
				Type:    "integer",
				Minimum: validation.Float(1),
			},
		},
	}
}

var inputValidator = validation.MustValidator(GetInputSchema())
