// internal/workers/credit/register-customer/models.go
package registercustomer

import "credit-workers/internal/models"

type Input struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Age           int    `json:"age"`
	MonthlyIncome int64  `json:"monthlyIncome"`
	PhoneNumber   string `json:"phoneNumber"`
}

type Output struct {
	CustomerID    int64                 `json:"customerId"`
	Name          string                `json:"name"`
	Age           int                   `json:"age"`
	MonthlyIncome int64                 `json:"monthlyIncome"`
	ApprovedLimit int64                 `json:"approvedLimit"`
	PhoneNumber   string                `json:"phoneNumber"`
	Notifications []models.Notification `json:"notifications,omitempty"`
}
