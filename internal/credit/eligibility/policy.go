// internal/credit/eligibility/policy.go
package eligibility

import "math"

const (
	// MaxEMIIncomeRatio is the share of monthly income all EMIs together may take.
	MaxEMIIncomeRatio = 0.5

	mediumBandFloorRate = 12.0
	lowBandFloorRate    = 16.0
)

const (
	ReasonApproved    = "Loan approved successfully."
	ReasonEMIExceeded = "Loan not approved: EMI exceeds 50% of monthly salary."
	ReasonRateTooLow  = "Loan not approved: interest rate too low for credit score."
	ReasonLowScore    = "Loan not approved due to low credit score."
)

// BandFor maps a score onto its band.
func BandFor(score float64) Band {
	switch {
	case score > 50:
		return BandHigh
	case score > 30:
		return BandMedium
	case score > 10:
		return BandLow
	default:
		return BandVeryLow
	}
}

// Decide applies the EMI affordability check and then the score bands.
// totalEMI is the sum of repayments on the customer's active loans.
func Decide(score float64, profile CustomerProfile, totalEMI float64, req LoanRequest) Decision {
	prospectiveEMI := totalEMI + req.Principal/float64(req.Tenure)
	if prospectiveEMI > MaxEMIIncomeRatio*float64(profile.MonthlyIncome) {
		return Decision{
			Approved:      false,
			CorrectedRate: math.Max(req.InterestRate, lowBandFloorRate),
			Band:          BandEMICap,
			Reason:        ReasonEMIExceeded,
		}
	}

	band := BandFor(score)
	switch band {
	case BandHigh:
		return approve(req, band)
	case BandMedium:
		if req.InterestRate > mediumBandFloorRate {
			return approve(req, band)
		}
		return Decision{CorrectedRate: mediumBandFloorRate, Band: band, Reason: ReasonRateTooLow}
	case BandLow:
		if req.InterestRate > lowBandFloorRate {
			return approve(req, band)
		}
		return Decision{CorrectedRate: lowBandFloorRate, Band: band, Reason: ReasonRateTooLow}
	default:
		return Decision{
			CorrectedRate: math.Max(req.InterestRate, lowBandFloorRate),
			Band:          band,
			Reason:        ReasonLowScore,
		}
	}
}

func approve(req LoanRequest, band Band) Decision {
	return Decision{
		Approved:      true,
		CorrectedRate: req.InterestRate,
		Band:          band,
		Reason:        ReasonApproved,
	}
}
