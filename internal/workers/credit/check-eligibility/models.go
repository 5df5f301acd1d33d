// internal/workers/credit/check-eligibility/models.go
package checkeligibility

type Input struct {
	CustomerID   int64   `json:"customerId"`
	LoanAmount   float64 `json:"loanAmount"`
	InterestRate float64 `json:"interestRate"`
	Tenure       int     `json:"tenure"`
}

type Output struct {
	CustomerID            int64   `json:"customerId"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interestRate"`
	CorrectedInterestRate float64 `json:"correctedInterestRate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthlyInstallment"`
	CreditScore           int     `json:"creditScore"`
	CreditBand            string  `json:"creditBand"`
	Reason                string  `json:"reason"`
}
