// internal/models/loan.go
package models

import (
	"time"

	"cloud.google.com/go/civil"

	"credit-workers/internal/credit/eligibility"
)

type Loan struct {
	ID               int64      `json:"loanId"`
	CustomerID       int64      `json:"customerId"`
	LoanAmount       float64    `json:"loanAmount"`
	Tenure           int        `json:"tenure"`
	InterestRate     float64    `json:"interestRate"`
	MonthlyRepayment float64    `json:"monthlyRepayment"`
	EMIsPaidOnTime   int        `json:"emisPaidOnTime"`
	StartDate        civil.Date `json:"startDate"`
	EndDate          civil.Date `json:"endDate"`
	IsApproved       bool       `json:"isApproved"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// RepaymentsLeft is the number of EMIs not yet paid on time, never negative.
func (l *Loan) RepaymentsLeft() int {
	return max(l.Tenure-l.EMIsPaidOnTime, 0)
}

// Record projects the loan onto the evaluator's history type.
func (l *Loan) Record() eligibility.LoanRecord {
	return eligibility.LoanRecord{
		LoanID:           l.ID,
		Principal:        l.LoanAmount,
		Tenure:           l.Tenure,
		InterestRate:     l.InterestRate,
		MonthlyRepayment: l.MonthlyRepayment,
		EMIsPaidOnTime:   l.EMIsPaidOnTime,
		StartDate:        l.StartDate,
		EndDate:          l.EndDate,
		Approved:         l.IsApproved,
	}
}

// LoanFromRecord builds a persistable loan for customerID.
func LoanFromRecord(customerID int64, rec eligibility.LoanRecord) *Loan {
	return &Loan{
		CustomerID:       customerID,
		LoanAmount:       rec.Principal,
		Tenure:           rec.Tenure,
		InterestRate:     rec.InterestRate,
		MonthlyRepayment: rec.MonthlyRepayment,
		EMIsPaidOnTime:   rec.EMIsPaidOnTime,
		StartDate:        rec.StartDate,
		EndDate:          rec.EndDate,
		IsApproved:       rec.Approved,
	}
}

// Records converts a loan history for evaluation.
func Records(loans []Loan) []eligibility.LoanRecord {
	out := make([]eligibility.LoanRecord, len(loans))
	for i := range loans {
		out[i] = loans[i].Record()
	}
	return out
}
