// internal/credit/eligibility/evaluator.go
package eligibility

import (
	"fmt"
	"math"

	"cloud.google.com/go/civil"
)

// Input bounds. They keep the EMI and amortization arithmetic well inside
// float64 range.
const (
	MaxTenureMonths = 600
	MaxPrincipal    = 1e12
	MaxInterestRate = 100.0
)

// ValidationError reports a loan request field outside its accepted range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks req against the input bounds.
func Validate(req LoanRequest) error {
	switch {
	case req.Tenure < 1:
		return &ValidationError{Field: "tenure", Reason: "must be a positive number of months"}
	case req.Tenure > MaxTenureMonths:
		return &ValidationError{Field: "tenure", Reason: fmt.Sprintf("must not exceed %d months", MaxTenureMonths)}
	case math.IsNaN(req.Principal) || math.IsInf(req.Principal, 0):
		return &ValidationError{Field: "loanAmount", Reason: "must be a finite number"}
	case req.Principal <= 0:
		return &ValidationError{Field: "loanAmount", Reason: "must be greater than zero"}
	case req.Principal > MaxPrincipal:
		return &ValidationError{Field: "loanAmount", Reason: fmt.Sprintf("must not exceed %.0f", MaxPrincipal)}
	case math.IsNaN(req.InterestRate) || math.IsInf(req.InterestRate, 0):
		return &ValidationError{Field: "interestRate", Reason: "must be a finite number"}
	case req.InterestRate < 0 || req.InterestRate > MaxInterestRate:
		return &ValidationError{Field: "interestRate", Reason: fmt.Sprintf("must be between 0 and %.0f", MaxInterestRate)}
	}
	return nil
}

// Evaluate scores the customer, applies the approval policy and prices the
// installment at the corrected rate. It is deterministic in its arguments;
// today is the evaluation date.
func Evaluate(profile CustomerProfile, loans []LoanRecord, req LoanRequest, today civil.Date) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	score, breakdown := Score(profile, loans, today)
	decision := Decide(score, profile, breakdown.TotalEMI, req)

	return &Result{
		CustomerID:    profile.CustomerID,
		Score:         ReportedScore(score),
		RawScore:      score,
		Approved:      decision.Approved,
		RequestedRate: req.InterestRate,
		CorrectedRate: decision.CorrectedRate,
		Tenure:        req.Tenure,
		Installment:   Installment(req.Principal, decision.CorrectedRate, req.Tenure),
		Band:          decision.Band,
		Reason:        decision.Reason,
		Breakdown:     breakdown,
		EvaluatedOn:   today,
	}, nil
}

// NewLoan builds the record materialised for an approved result. The stored
// rate is the requested one. clamped reports an end date pinned to month end.
func NewLoan(req LoanRequest, result *Result) (LoanRecord, bool) {
	end, clamped := AddMonths(result.EvaluatedOn, req.Tenure)
	return LoanRecord{
		Principal:        req.Principal,
		Tenure:           req.Tenure,
		InterestRate:     req.InterestRate,
		MonthlyRepayment: result.Installment,
		EMIsPaidOnTime:   0,
		StartDate:        result.EvaluatedOn,
		EndDate:          end,
		Approved:         true,
	}, clamped
}
