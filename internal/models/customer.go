// internal/models/customer.go
package models

import (
	"time"

	"credit-workers/internal/credit/eligibility"
)

type Customer struct {
	ID            int64     `json:"customerId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Age           int       `json:"age"`
	PhoneNumber   string    `json:"phoneNumber"`
	MonthlySalary int64     `json:"monthlySalary"`
	ApprovedLimit int64     `json:"approvedLimit"`
	CurrentDebt   float64   `json:"currentDebt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Profile projects the customer onto the fields the evaluator reads.
func (c *Customer) Profile() eligibility.CustomerProfile {
	return eligibility.CustomerProfile{
		CustomerID:    c.ID,
		MonthlyIncome: c.MonthlySalary,
		ApprovedLimit: c.ApprovedLimit,
		CurrentDebt:   c.CurrentDebt,
	}
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
