// internal/credit/eligibility/models.go
package eligibility

import "cloud.google.com/go/civil"

// CustomerProfile is the part of a customer record the evaluator reads.
type CustomerProfile struct {
	CustomerID    int64
	MonthlyIncome int64
	ApprovedLimit int64
	CurrentDebt   float64
}

// LoanRecord is one historical loan of the customer being evaluated.
type LoanRecord struct {
	LoanID           int64
	Principal        float64
	Tenure           int
	InterestRate     float64
	MonthlyRepayment float64
	EMIsPaidOnTime   int
	StartDate        civil.Date
	EndDate          civil.Date
	Approved         bool
}

// LoanRequest carries the candidate loan terms.
type LoanRequest struct {
	Principal    float64
	InterestRate float64
	Tenure       int
}

// Band names the score band a decision fell into.
type Band string

const (
	BandHigh    Band = "high"     // score > 50
	BandMedium  Band = "medium"   // 30 < score <= 50
	BandLow     Band = "low"      // 10 < score <= 30
	BandVeryLow Band = "very_low" // score <= 10
	// BandEMICap marks a rejection by the EMI affordability check, before banding.
	BandEMICap Band = "emi_cap"
)

// ScoreBreakdown records the aggregates Stage 1 derived from the loan history.
type ScoreBreakdown struct {
	LoanCount       int     `json:"loanCount"`
	ActiveLoans     int     `json:"activeLoans"`
	CurrentLoansSum float64 `json:"currentLoansSum"`
	TotalEMI        float64 `json:"totalEmi"`
	FullyPaidOnTime int     `json:"fullyPaidOnTime"`
	RecentActivity  int     `json:"recentActivity"`
	ApprovedVolume  float64 `json:"approvedVolume"`
	OverLimit       bool    `json:"overLimit"`
}

// Decision is the Stage 2 outcome.
type Decision struct {
	Approved      bool
	CorrectedRate float64
	Band          Band
	Reason        string
}

// Result is the full outcome of evaluating a loan request.
type Result struct {
	CustomerID    int64
	Score         int
	RawScore      float64
	Approved      bool
	RequestedRate float64
	CorrectedRate float64
	Tenure        int
	Installment   float64
	Band          Band
	Reason        string
	Breakdown     ScoreBreakdown
	EvaluatedOn   civil.Date
}
