package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanFacts is the slice of a loan record the engine reads.
type LoanFacts struct {
	Principal          decimal.Decimal
	TenureMonths       int
	InstallmentsPaid   int
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	Active             bool
}

// Sub-score weights and caps.
var (
	weightPayment  = decimal.RequireFromString("0.4")
	weightVolume   = decimal.RequireFromString("0.2")
	weightActivity = decimal.RequireFromString("0.2")
	weightSize     = decimal.RequireFromString("0.2")

	capVolume   = decimal.NewFromInt(30)
	capActivity = decimal.NewFromInt(20)
	capSize     = decimal.NewFromInt(20)

	pointsPerLoan         = decimal.NewFromInt(10)
	pointsPerRecentLoan   = decimal.NewFromInt(15)
	pointsPerMillionTaken = decimal.NewFromInt(10)
	million               = decimal.NewFromInt(1_000_000)
	hundred               = decimal.NewFromInt(100)

	// NeutralScore is assigned to applicants without any loan history.
	NeutralScore = decimal.NewFromInt(50)
	maxScore     = hundred
)

// ScoreBreakdown holds the capped sub-scores and the weighted total.
type ScoreBreakdown struct {
	Payment  decimal.Decimal
	Volume   decimal.Decimal
	Activity decimal.Decimal
	Size     decimal.Decimal
	Score    decimal.Decimal
	// NoHistory is set when Score is the neutral default.
	NoHistory bool
}

// Breakdown scores a loan history (active and closed loans alike). Recent
// activity counts loans started in the calendar year of now.
func Breakdown(loans []LoanFacts, now time.Time) ScoreBreakdown {
	if len(loans) == 0 {
		return ScoreBreakdown{
			Payment:   decimal.Zero,
			Volume:    decimal.Zero,
			Activity:  decimal.Zero,
			Size:      decimal.Zero,
			Score:     NeutralScore,
			NoHistory: true,
		}
	}

	var totalTenure, totalPaid, startedThisYear int64
	totalPrincipal := decimal.Zero
	for _, l := range loans {
		totalTenure += int64(l.TenureMonths)
		totalPaid += int64(l.InstallmentsPaid)
		totalPrincipal = totalPrincipal.Add(l.Principal)
		if l.StartDate.Year() == now.Year() {
			startedThisYear++
		}
	}

	b := ScoreBreakdown{Payment: decimal.Zero}
	if totalTenure > 0 {
		b.Payment = decimal.NewFromInt(totalPaid).Mul(hundred).Div(decimal.NewFromInt(totalTenure))
	}
	b.Volume = decimal.Min(decimal.NewFromInt(int64(len(loans))).Mul(pointsPerLoan), capVolume)
	b.Activity = decimal.Min(decimal.NewFromInt(startedThisYear).Mul(pointsPerRecentLoan), capActivity)
	b.Size = decimal.Min(totalPrincipal.Div(million).Mul(pointsPerMillionTaken), capSize)

	score := b.Payment.Mul(weightPayment).
		Add(b.Volume.Mul(weightVolume)).
		Add(b.Activity.Mul(weightActivity)).
		Add(b.Size.Mul(weightSize))
	b.Score = clampScore(score)
	return b
}

// ComputeScore returns the credit score in [0, 100].
func ComputeScore(loans []LoanFacts, now time.Time) decimal.Decimal {
	return Breakdown(loans, now).Score
}

func clampScore(score decimal.Decimal) decimal.Decimal {
	if score.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(score, maxScore)
}
