// internal/credit/eligibility/installment.go
package eligibility

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Installment returns the monthly repayment for an amortizing loan at the
// given nominal annual rate (percent), rounded to cents. A zero rate splits
// the principal evenly.
func Installment(principal, annualRate float64, tenure int) float64 {
	r := annualRate / 1200
	n := float64(tenure)

	var emi float64
	if r > 0 {
		growth := math.Pow(1+r, n)
		emi = principal * r * growth / (growth - 1)
	} else {
		emi = principal / n
	}

	return RoundMoney(emi)
}

// RoundMoney rounds the exact binary value of v to two decimal places, ties
// to even. 2.675 is stored just below the tie, so it rounds to 2.67.
func RoundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact := decimal.RequireFromString(strconv.FormatFloat(v, 'f', 40, 64))
	f, _ := exact.RoundBank(2).Float64()
	return f
}

// ApprovedLimit derives a customer's credit limit from monthly income:
// 36 months of income, rounded half-to-even to the nearest 100,000.
func ApprovedLimit(monthlyIncome int64) int64 {
	units := math.RoundToEven(36 * float64(monthlyIncome) / volumeUnit)
	return int64(units) * volumeUnit
}
