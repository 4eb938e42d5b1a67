package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Veto names a capacity guard that forced the score to zero.
type Veto string

const (
	VetoActiveDebtExceedsLimit       Veto = "active_debt_exceeds_limit"
	VetoInstallmentsExceedHalfIncome Veto = "installments_exceed_half_income"
)

var half = decimal.RequireFromString("0.5")

// Applicant is the customer snapshot the engine reads.
type Applicant struct {
	MonthlyIncome decimal.Decimal
	ApprovedLimit decimal.Decimal
}

// Application is the requested loan.
type Application struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	TenureMonths int
}

// History is a customer's full loan history together with its active subset.
// Both are read as separate snapshots; NewHistory derives one from the other.
type History struct {
	Loans  []LoanFacts
	Active []LoanFacts
}

// NewHistory partitions loans by their active flag.
func NewHistory(loans []LoanFacts) History {
	active := make([]LoanFacts, 0, len(loans))
	for _, l := range loans {
		if l.Active {
			active = append(active, l)
		}
	}
	return History{Loans: loans, Active: active}
}

// Assessment is the engine verdict for one application.
type Assessment struct {
	Breakdown ScoreBreakdown
	// Score is the score the policy saw: zero when any guard vetoed.
	Score              decimal.Decimal
	Vetoes             []Veto
	Tier               Tier
	Approved           bool
	RequestedRate      decimal.Decimal
	CorrectedRate      decimal.Decimal
	TenureMonths       int
	MonthlyInstallment decimal.Decimal
}

// Vetoed reports whether a capacity guard fired.
func (a Assessment) Vetoed() bool { return len(a.Vetoes) > 0 }

// CheckGuards evaluates both capacity guards against the active loans. Both
// always run; the result lists every guard that fired.
func CheckGuards(applicant Applicant, active []LoanFacts) []Veto {
	activePrincipal := decimal.Zero
	activeInstallments := decimal.Zero
	for _, l := range active {
		activePrincipal = activePrincipal.Add(l.Principal)
		activeInstallments = activeInstallments.Add(l.MonthlyInstallment)
	}

	var vetoes []Veto
	if activePrincipal.GreaterThan(applicant.ApprovedLimit) {
		vetoes = append(vetoes, VetoActiveDebtExceedsLimit)
	}
	if activeInstallments.GreaterThan(applicant.MonthlyIncome.Mul(half)) {
		vetoes = append(vetoes, VetoInstallmentsExceedHalfIncome)
	}
	return vetoes
}

// Assess scores the history, applies the guards and the approval policy, and
// prices the installment at the corrected rate. The installment is computed
// for rejected applications too so eligibility checks can report it.
func Assess(applicant Applicant, app Application, history History, now time.Time) Assessment {
	breakdown := Breakdown(history.Loans, now)
	score := breakdown.Score

	vetoes := CheckGuards(applicant, history.Active)
	if len(vetoes) > 0 {
		score = decimal.Zero
	}

	approved, corrected := Decide(score, app.AnnualRate)
	return Assessment{
		Breakdown:          breakdown,
		Score:              score,
		Vetoes:             vetoes,
		Tier:               TierFor(score),
		Approved:           approved,
		RequestedRate:      app.AnnualRate,
		CorrectedRate:      corrected,
		TenureMonths:       app.TenureMonths,
		MonthlyInstallment: ComputeEMI(app.Principal, corrected, app.TenureMonths),
	}
}

// Origination is the loan to persist for an approved assessment.
type Origination struct {
	Principal          decimal.Decimal
	AnnualRate         decimal.Decimal
	TenureMonths       int
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	EndDate            time.Time
}

// NewLoan builds the loan terms for an approved assessment, starting on the
// date of today. The installment is rounded half away from zero to two places.
// ok is false for rejected assessments.
func NewLoan(app Application, a Assessment, today time.Time) (o Origination, ok bool) {
	if !a.Approved {
		return Origination{}, false
	}
	start := DateOnly(today)
	return Origination{
		Principal:          app.Principal,
		AnnualRate:         a.CorrectedRate,
		TenureMonths:       app.TenureMonths,
		MonthlyInstallment: a.MonthlyInstallment.Round(2),
		StartDate:          start,
		EndDate:            AddMonths(start, app.TenureMonths),
	}, true
}
