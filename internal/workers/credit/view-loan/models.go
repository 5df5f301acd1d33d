// internal/workers/credit/view-loan/models.go
package viewloan

type Input struct {
	LoanID int64 `json:"loanId"`
}

type Customer struct {
	CustomerID  int64  `json:"customerId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Age         int    `json:"age"`
}

type Output struct {
	LoanID             int64    `json:"loanId"`
	Customer           Customer `json:"customer"`
	LoanAmount         float64  `json:"loanAmount"`
	InterestRate       float64  `json:"interestRate"`
	IsApproved         bool     `json:"isApproved"`
	MonthlyInstallment float64  `json:"monthlyInstallment"`
	Tenure             int      `json:"tenure"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
}
