// internal/workers/credit/view-customer-loans/models.go
package viewcustomerloans

type Input struct {
	CustomerID int64 `json:"customerId"`
}

type Loan struct {
	LoanID             int64   `json:"loanId"`
	LoanAmount         float64 `json:"loanAmount"`
	IsApproved         bool    `json:"isApproved"`
	InterestRate       float64 `json:"interestRate"`
	MonthlyInstallment float64 `json:"monthlyInstallment"`
	RepaymentsLeft     int     `json:"repaymentsLeft"`
}

type Output struct {
	CustomerID int64  `json:"customerId"`
	Loans      []Loan `json:"loans"`
	Count      int    `json:"count"`
}
