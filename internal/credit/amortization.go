package credit

import "github.com/shopspring/decimal"

var (
	monthsPerYearPercent = decimal.NewFromInt(1200)
	one                  = decimal.NewFromInt(1)
)

// powPlaces bounds intermediate precision of (1+r)^n so long tenures at
// non-terminating monthly rates do not grow without limit. Far beyond what
// two-place installments need.
const powPlaces = 48

// ComputeEMI returns the equated monthly installment for a principal borrowed at
// annualRatePercent over tenureMonths:
//
//	r   = annualRatePercent / 1200
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate is straight-line repayment. A non-positive tenure yields zero.
// The result is unrounded.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(tenureMonths))

	r := annualRatePercent.Div(monthsPerYearPercent)
	if r.IsZero() {
		return principal.Div(months)
	}

	factor := powInt(one.Add(r), tenureMonths)
	denominator := factor.Sub(one)
	if denominator.IsZero() {
		return principal.Div(months)
	}
	return principal.Mul(r).Mul(factor).Div(denominator)
}

// powInt raises base to a non-negative integer power by repeated squaring.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(powPlaces)
		}
		exp >>= 1
		if exp > 0 {
			base = base.Mul(base).Round(powPlaces)
		}
	}
	return result
}
