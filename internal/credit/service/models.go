// internal/credit/service/models.go
package service

import (
	"credit-workers/internal/credit/eligibility"
	"credit-workers/internal/models"
)

// EligibilityRequest carries a customer and the proposed loan terms.
type EligibilityRequest struct {
	CustomerID   int64
	LoanAmount   float64
	InterestRate float64
	Tenure       int
}

func (r EligibilityRequest) loanRequest() eligibility.LoanRequest {
	return eligibility.LoanRequest{
		Principal:    r.LoanAmount,
		InterestRate: r.InterestRate,
		Tenure:       r.Tenure,
	}
}

// Outcome is the result of a check or create. Loan is set only when a
// create was approved and the record was written.
type Outcome struct {
	Customer      *models.Customer
	Result        *eligibility.Result
	Loan          *models.Loan
	Notifications []models.Notification
}

type RegisterRequest struct {
	FirstName     string
	LastName      string
	Age           int
	MonthlyIncome int64
	PhoneNumber   string
}

type Registration struct {
	Customer      *models.Customer
	Notifications []models.Notification
}

// LoanView is a single loan with its borrower.
type LoanView struct {
	Loan     *models.Loan
	Customer *models.Customer
}

// LoanSummary is one open loan in a customer's listing.
type LoanSummary struct {
	LoanID             int64
	LoanAmount         float64
	IsApproved         bool
	InterestRate       float64
	MonthlyInstallment float64
	RepaymentsLeft     int
}
