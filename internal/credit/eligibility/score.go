// internal/credit/eligibility/score.go
package eligibility

import (
	"math"

	"cloud.google.com/go/civil"
)

const (
	baseScore           = 100
	perLoanPenalty      = 5
	fullyPaidBonus      = 10
	recentActivityBonus = 5
	recentActivityCap   = 15
	volumeUnit          = 100000
	volumeBonusCap      = 20
	minScore            = 0
	maxScore            = 100
)

// Summarize aggregates the loan history as of today.
func Summarize(loans []LoanRecord, today civil.Date) ScoreBreakdown {
	b := ScoreBreakdown{LoanCount: len(loans)}

	for _, loan := range loans {
		if !loan.EndDate.Before(today) {
			b.ActiveLoans++
			b.CurrentLoansSum += loan.Principal
			b.TotalEMI += loan.MonthlyRepayment
		}
		if loan.EMIsPaidOnTime >= loan.Tenure {
			b.FullyPaidOnTime++
		}
		if loan.StartDate.Year == today.Year {
			b.RecentActivity++
		}
		b.ApprovedVolume += loan.Principal
	}

	return b
}

// Score computes the 0-100 credit score. The volume term is fractional, so
// the score is too; bands are chosen on this value. A customer whose active
// principal exceeds the approved limit scores 0 outright.
func Score(profile CustomerProfile, loans []LoanRecord, today civil.Date) (float64, ScoreBreakdown) {
	b := Summarize(loans, today)

	if b.CurrentLoansSum > float64(profile.ApprovedLimit) {
		b.OverLimit = true
		return minScore, b
	}

	points := baseScore
	points -= perLoanPenalty * b.LoanCount
	points += fullyPaidBonus * b.FullyPaidOnTime
	points += min(recentActivityBonus*b.RecentActivity, recentActivityCap)

	score := float64(points) + math.Min(b.ApprovedVolume/volumeUnit, volumeBonusCap)
	return math.Max(minScore, math.Min(score, maxScore)), b
}

// ReportedScore is the integer score published in results and logs.
func ReportedScore(score float64) int {
	return int(math.Round(score))
}
