// internal/workers/credit/check-eligibility/validation.go
package checkeligibility

import "credit-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"customerId", "loanAmount", "interestRate", "tenure"},
		Properties: map[string]validation.Property{
			"customerId": {
				Type:        "integer",
				Description: "Customer to evaluate",
				Minimum:     validation.Float(1),
			},
			"loanAmount": {
				Type:             "number",
				Description:      "Requested principal",
				ExclusiveMinimum: validation.Float(0),
				Maximum:          validation.Float(1e12),
			},
			"interestRate": {
				Type:        "number",
				Description: "Requested nominal annual rate in percent",
				Minimum:     validation.Float(0),
				Maximum:     validation.Float(100),
			},
			"tenure": {
				Type:        "integer",
				Description: "Loan tenure in months",
				Minimum:     validation.Float(1),
				Maximum:     validation.Float(600),
			},
		},
	}
}

var inputValidator = validation.MustValidator(GetInputSchema())
