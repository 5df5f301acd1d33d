package eligibility

import (
	"errors"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = civil.Date{Year: 2024, Month: time.June, Day: 15}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func standardProfile() CustomerProfile {
	return CustomerProfile{CustomerID: 7, MonthlyIncome: 50000, ApprovedLimit: 1800000}
}

// oldLoans returns n small, closed loans from 2019 that only count toward the per-loan penalty.
func oldLoans(n int) []LoanRecord {
	loans := make([]LoanRecord, n)
	for i := range loans {
		loans[i] = LoanRecord{
			Principal:        5000,
			Tenure:           12,
			EMIsPaidOnTime:   3,
			MonthlyRepayment: 800,
			StartDate:        date(2019, time.January, 10),
			EndDate:          date(2020, time.January, 10),
			Approved:         true,
		}
	}
	return loans
}

func TestEvaluate_NoLoansApprovedAtRequestedRate(t *testing.T) {
	req := LoanRequest{Principal: 100000, InterestRate: 13.0, Tenure: 12}

	result, err := Evaluate(standardProfile(), nil, req, today)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.True(t, result.Approved)
	assert.Equal(t, 13.0, result.RequestedRate)
	assert.Equal(t, 13.0, result.CorrectedRate)
	assert.InDelta(t, 8931.73, result.Installment, 0.001)
	assert.Equal(t, BandHigh, result.Band)
	assert.Equal(t, ReasonApproved, result.Reason)
	assert.Equal(t, today, result.EvaluatedOn)
}

func TestEvaluate_ActivePrincipalOverLimitScoresZero(t *testing.T) {
	loans := []LoanRecord{{
		Principal:        2000000,
		Tenure:           120,
		EMIsPaidOnTime:   120,
		MonthlyRepayment: 1000,
		StartDate:        date(2024, time.January, 1),
		EndDate:          date(2034, time.January, 1),
		Approved:         true,
	}}
	req := LoanRequest{Principal: 100000, InterestRate: 10.0, Tenure: 12}

	result, err := Evaluate(standardProfile(), loans, req, today)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.True(t, result.Breakdown.OverLimit)
	assert.False(t, result.Approved)
	assert.Equal(t, BandVeryLow, result.Band)
	assert.Equal(t, 16.0, result.CorrectedRate)
	assert.Equal(t, 10.0, result.RequestedRate)
	assert.InDelta(t, 9073.09, result.Installment, 0.001)
	assert.Equal(t, ReasonLowScore, result.Reason)
}

func TestEvaluate_OverLimitKeepsHigherRequestedRate(t *testing.T) {
	loans := []LoanRecord{{
		Principal:        1900000,
		Tenure:           12,
		MonthlyRepayment: 100,
		StartDate:        date(2024, time.January, 1),
		EndDate:          date(2025, time.January, 1),
	}}
	req := LoanRequest{Principal: 100000, InterestRate: 18.0, Tenure: 12}

	result, err := Evaluate(standardProfile(), loans, req, today)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Approved)
	assert.Equal(t, 18.0, result.CorrectedRate)
}

func TestEvaluate_EMICapRejectsBeforeBanding(t *testing.T) {
	profile := CustomerProfile{CustomerID: 1, MonthlyIncome: 20000, ApprovedLimit: 700000}

	tests := []struct {
		name          string
		rate          float64
		wantCorrected float64
		wantEMI       float64
	}{
		{name: "rate raised to floor", rate: 10, wantCorrected: 16, wantEMI: 18146.17},
		{name: "higher rate kept", rate: 18, wantCorrected: 18, wantEMI: 18336.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := LoanRequest{Principal: 200000, InterestRate: tt.rate, Tenure: 12}
			result, err := Evaluate(profile, nil, req, today)
			require.NoError(t, err)

			assert.Equal(t, 100, result.Score)
			assert.False(t, result.Approved)
			assert.Equal(t, BandEMICap, result.Band)
			assert.Equal(t, ReasonEMIExceeded, result.Reason)
			assert.Equal(t, tt.wantCorrected, result.CorrectedRate)
			assert.InDelta(t, tt.wantEMI, result.Installment, 0.001)
		})
	}
}

func TestEvaluate_EMICapCountsActiveRepayments(t *testing.T) {
	// 8333.33 alone fits under 25,000 but not on top of 17,000 already owed.
	loans := []LoanRecord{{
		Principal:        300000,
		Tenure:           24,
		MonthlyRepayment: 17000,
		StartDate:        date(2023, time.March, 1),
		EndDate:          date(2025, time.March, 1),
	}}
	req := LoanRequest{Principal: 100000, InterestRate: 14, Tenure: 12}

	result, err := Evaluate(standardProfile(), loans, req, today)
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Equal(t, ReasonEMIExceeded, result.Reason)
}

func TestEvaluate_ScoreBands(t *testing.T) {
	// Each old loan costs 5 points and adds 0.05 of volume bonus.
	tests := []struct {
		name          string
		loanCount     int
		rate          float64
		wantRaw       float64
		wantBand      Band
		wantApproved  bool
		wantCorrected float64
		wantEMI       float64
		wantReason    string
	}{
		{"score 55.45 approved at any rate", 9, 10.0, 55.45, BandHigh, true, 10.0, 8791.59, ReasonApproved},
		{"score 50.5 approved at any rate", 10, 10.0, 50.5, BandHigh, true, 10.0, 8791.59, ReasonApproved},
		{"score 45.55 at 12 rejected", 11, 12.0, 45.55, BandMedium, false, 12.0, 8884.88, ReasonRateTooLow},
		{"score 45.55 below 12 corrected up", 11, 10.0, 45.55, BandMedium, false, 12.0, 8884.88, ReasonRateTooLow},
		{"score 45.55 above 12 approved", 11, 12.5, 45.55, BandMedium, true, 12.5, 8908.29, ReasonApproved},
		{"score 30.7 at 12 rejected", 14, 12.0, 30.7, BandMedium, false, 12.0, 8884.88, ReasonRateTooLow},
		{"score 25.75 at 16 rejected", 15, 16.0, 25.75, BandLow, false, 16.0, 9073.09, ReasonRateTooLow},
		{"score 25.75 above 16 approved", 15, 16.5, 25.75, BandLow, true, 16.5, 9096.76, ReasonApproved},
		{"score 10.9 at 16 rejected", 18, 16.0, 10.9, BandLow, false, 16.0, 9073.09, ReasonRateTooLow},
		{"score 5.95 always rejected", 19, 20.0, 5.95, BandVeryLow, false, 20.0, 9263.45, ReasonLowScore},
		{"score 5.95 rate floored", 19, 12.0, 5.95, BandVeryLow, false, 16.0, 9073.09, ReasonLowScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := LoanRequest{Principal: 100000, InterestRate: tt.rate, Tenure: 12}
			result, err := Evaluate(standardProfile(), oldLoans(tt.loanCount), req, today)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantRaw, result.RawScore, 1e-9)
			assert.Equal(t, ReportedScore(tt.wantRaw), result.Score)
			assert.Equal(t, tt.wantBand, result.Band)
			assert.Equal(t, tt.wantApproved, result.Approved)
			assert.Equal(t, tt.wantCorrected, result.CorrectedRate)
			assert.Equal(t, tt.rate, result.RequestedRate)
			assert.Equal(t, tt.wantReason, result.Reason)
			assert.InDelta(t, tt.wantEMI, result.Installment, 0.001)
		})
	}
}

func TestEvaluate_FractionalScoreAboveFiftyIsHighBand(t *testing.T) {
	// 100 - 5*10 + 50000/100000 = 50.5
	req := LoanRequest{Principal: 10000, InterestRate: 10.0, Tenure: 12}

	result, err := Evaluate(standardProfile(), oldLoans(10), req, today)
	require.NoError(t, err)

	assert.InDelta(t, 50.5, result.RawScore, 1e-9)
	assert.Equal(t, BandHigh, result.Band)
	assert.True(t, result.Approved)
	assert.Equal(t, 10.0, result.CorrectedRate)
	assert.Equal(t, ReasonApproved, result.Reason)
}

func TestBandFor_Edges(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandHigh},
		{50.01, BandHigh},
		{50, BandMedium},
		{30.5, BandMedium},
		{30, BandLow},
		{10.05, BandLow},
		{10, BandVeryLow},
		{0, BandVeryLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.score), "score %v", tt.score)
	}
}

func TestEvaluate_EMIExactlyAtHalfIncomeIsApproved(t *testing.T) {
	profile := CustomerProfile{CustomerID: 1, MonthlyIncome: 20000, ApprovedLimit: 700000}

	// 120000/12 is exactly half of 20000.
	atCap, err := Evaluate(profile, nil, LoanRequest{Principal: 120000, InterestRate: 10, Tenure: 12}, today)
	require.NoError(t, err)
	assert.True(t, atCap.Approved)
	assert.Equal(t, BandHigh, atCap.Band)
	assert.Equal(t, ReasonApproved, atCap.Reason)
	assert.InDelta(t, 10549.91, atCap.Installment, 0.001)

	over, err := Evaluate(profile, nil, LoanRequest{Principal: 120012, InterestRate: 10, Tenure: 12}, today)
	require.NoError(t, err)
	assert.False(t, over.Approved)
	assert.Equal(t, BandEMICap, over.Band)
	assert.Equal(t, ReasonEMIExceeded, over.Reason)
}

func TestScore_Components(t *testing.T) {
	loans := []LoanRecord{
		// closed and fully paid
		{Principal: 300000, Tenure: 12, EMIsPaidOnTime: 12, MonthlyRepayment: 26000,
			StartDate: date(2022, time.January, 1), EndDate: date(2023, time.January, 1)},
		// active, started this year
		{Principal: 200000, Tenure: 24, EMIsPaidOnTime: 5, MonthlyRepayment: 9000,
			StartDate: date(2024, time.February, 1), EndDate: date(2026, time.February, 1)},
		// active, started this year
		{Principal: 50000, Tenure: 6, EMIsPaidOnTime: 2, MonthlyRepayment: 8500,
			StartDate: date(2024, time.March, 1), EndDate: date(2024, time.September, 1)},
	}
	loans = append(loans, oldLoans(3)...)

	score, b := Score(standardProfile(), loans, today)

	// 100 - 5*6 + 10*1 + min(5*2, 15) + 565000/100000
	assert.InDelta(t, 95.65, score, 1e-9)
	assert.Equal(t, 6, b.LoanCount)
	assert.Equal(t, 2, b.ActiveLoans)
	assert.InDelta(t, 250000, b.CurrentLoansSum, 0.001)
	assert.InDelta(t, 17500, b.TotalEMI, 0.001)
	assert.Equal(t, 1, b.FullyPaidOnTime)
	assert.Equal(t, 2, b.RecentActivity)
	assert.InDelta(t, 565000, b.ApprovedVolume, 0.001)
	assert.False(t, b.OverLimit)
}

func TestScore_CapsAndClamp(t *testing.T) {
	recent := func(principal float64) LoanRecord {
		return LoanRecord{Principal: principal, Tenure: 2, EMIsPaidOnTime: 1,
			StartDate: date(2024, time.January, 5), EndDate: date(2024, time.March, 5)}
	}

	t.Run("recent activity capped at 15", func(t *testing.T) {
		loans := []LoanRecord{recent(1000), recent(1000), recent(1000), recent(1000)}
		score, b := Score(standardProfile(), loans, today)
		assert.Equal(t, 4, b.RecentActivity)
		// 100 - 20 + 0 + 15 + 0.04
		assert.InDelta(t, 95.04, score, 1e-9)
	})

	t.Run("volume bonus capped at 20 and clamped to 100", func(t *testing.T) {
		score, b := Score(standardProfile(), []LoanRecord{recent(2500000)}, today)
		assert.InDelta(t, 2500000, b.ApprovedVolume, 0.001)
		assert.Equal(t, 100.0, score)
	})

	t.Run("many loans clamp at zero", func(t *testing.T) {
		score, b := Score(standardProfile(), oldLoans(25), today)
		assert.False(t, b.OverLimit)
		assert.Equal(t, 0.0, score)
	})

	t.Run("volume bonus keeps partial units", func(t *testing.T) {
		old := LoanRecord{Principal: 50000, Tenure: 12, EMIsPaidOnTime: 3,
			StartDate: date(2019, time.May, 1), EndDate: date(2020, time.May, 1)}
		// 100 - 5 + 0.5
		score, _ := Score(standardProfile(), []LoanRecord{old}, today)
		assert.InDelta(t, 95.5, score, 1e-9)
	})
}

func TestScore_EndDateOnEvaluationDayIsActive(t *testing.T) {
	loan := LoanRecord{Principal: 1900000, Tenure: 12, MonthlyRepayment: 100,
		StartDate: date(2023, time.June, 15), EndDate: today}

	score, b := Score(standardProfile(), []LoanRecord{loan}, today)
	assert.Equal(t, 1, b.ActiveLoans)
	assert.Equal(t, 0.0, score)

	loan.EndDate = date(2024, time.June, 14)
	score, b = Score(standardProfile(), []LoanRecord{loan}, today)
	assert.Equal(t, 0, b.ActiveLoans)
	// 100 - 5 + 19, clamped
	assert.Equal(t, 100.0, score)
}

func TestScore_ScoreAlwaysWithinRange(t *testing.T) {
	for n := 0; n <= 30; n++ {
		score, _ := Score(standardProfile(), oldLoans(n), today)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestEvaluate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   LoanRequest
		field string
	}{
		{"zero tenure", LoanRequest{Principal: 1000, InterestRate: 10, Tenure: 0}, "tenure"},
		{"negative tenure", LoanRequest{Principal: 1000, InterestRate: 10, Tenure: -3}, "tenure"},
		{"tenure too long", LoanRequest{Principal: 1000, InterestRate: 10, Tenure: 601}, "tenure"},
		{"zero principal", LoanRequest{Principal: 0, InterestRate: 10, Tenure: 12}, "loanAmount"},
		{"negative principal", LoanRequest{Principal: -5, InterestRate: 10, Tenure: 12}, "loanAmount"},
		{"NaN principal", LoanRequest{Principal: math.NaN(), InterestRate: 10, Tenure: 12}, "loanAmount"},
		{"huge principal", LoanRequest{Principal: 1e13, InterestRate: 10, Tenure: 12}, "loanAmount"},
		{"negative rate", LoanRequest{Principal: 1000, InterestRate: -1, Tenure: 12}, "interestRate"},
		{"infinite rate", LoanRequest{Principal: 1000, InterestRate: math.Inf(1), Tenure: 12}, "interestRate"},
		{"rate above 100", LoanRequest{Principal: 1000, InterestRate: 150, Tenure: 12}, "interestRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(standardProfile(), nil, tt.req, today)
			assert.Nil(t, result)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	req := LoanRequest{Principal: 250000, InterestRate: 14, Tenure: 36}
	loans := oldLoans(4)

	first, err := Evaluate(standardProfile(), loans, req, today)
	require.NoError(t, err)
	second, err := Evaluate(standardProfile(), loans, req, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 8544.41, first.Installment, 0.001)
}

func TestNewLoan(t *testing.T) {
	req := LoanRequest{Principal: 100000, InterestRate: 13, Tenure: 12}
	result, err := Evaluate(standardProfile(), nil, req, date(2024, time.January, 31))
	require.NoError(t, err)

	loan, clamped := NewLoan(req, result)
	assert.False(t, clamped)
	assert.Equal(t, 100000.0, loan.Principal)
	assert.Equal(t, 13.0, loan.InterestRate)
	assert.Equal(t, 12, loan.Tenure)
	assert.Equal(t, result.Installment, loan.MonthlyRepayment)
	assert.Equal(t, 0, loan.EMIsPaidOnTime)
	assert.True(t, loan.Approved)
	assert.Equal(t, date(2024, time.January, 31), loan.StartDate)
	assert.Equal(t, date(2025, time.January, 31), loan.EndDate)

	short := LoanRequest{Principal: 10000, InterestRate: 13, Tenure: 1}
	result, err = Evaluate(standardProfile(), nil, short, date(2024, time.January, 31))
	require.NoError(t, err)
	loan, clamped = NewLoan(short, result)
	assert.True(t, clamped)
	assert.Equal(t, date(2024, time.February, 29), loan.EndDate)
}
