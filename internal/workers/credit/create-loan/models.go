// internal/workers/credit/create-loan/models.go
package createloan

import "credit-workers/internal/models"

type Input struct {
	CustomerID   int64   `json:"customerId"`
	LoanAmount   float64 `json:"loanAmount"`
	InterestRate float64 `json:"interestRate"`
	Tenure       int     `json:"tenure"`
}

// Output leaves loanId and monthlyInstallment null when the loan is rejected.
type Output struct {
	LoanID                *int64                `json:"loanId"`
	CustomerID            int64                 `json:"customerId"`
	LoanApproved          bool                  `json:"loanApproved"`
	Message               string                `json:"message"`
	MonthlyInstallment    *float64              `json:"monthlyInstallment"`
	CorrectedInterestRate float64               `json:"correctedInterestRate"`
	CreditScore           int                   `json:"creditScore"`
	StartDate             string                `json:"startDate,omitempty"`
	EndDate               string                `json:"endDate,omitempty"`
	Notifications         []models.Notification `json:"notifications,omitempty"`
}
