package credit

import "github.com/shopspring/decimal"

// Tier names the approval band a score falls into.
type Tier string

const (
	TierPrime    Tier = "prime"
	TierStandard Tier = "standard"
	TierSubprime Tier = "subprime"
	TierRejected Tier = "rejected"
)

var (
	primeAbove    = decimal.NewFromInt(50)
	standardAbove = decimal.NewFromInt(30)
	subprimeAbove = decimal.NewFromInt(10)

	standardRateFloor = decimal.NewFromInt(12)
	subprimeRateFloor = decimal.NewFromInt(16)
)

// TierFor maps a score to its band. Boundaries (50, 30, 10) belong to the lower band.
func TierFor(score decimal.Decimal) Tier {
	switch {
	case score.GreaterThan(primeAbove):
		return TierPrime
	case score.GreaterThan(standardAbove):
		return TierStandard
	case score.GreaterThan(subprimeAbove):
		return TierSubprime
	default:
		return TierRejected
	}
}

// Decide approves or rejects and returns the corrected annual rate. Approved
// standard and subprime applicants pay at least their tier's floor; prime and
// rejected applicants keep the requested rate.
func Decide(score, requestedRate decimal.Decimal) (approved bool, correctedRate decimal.Decimal) {
	switch TierFor(score) {
	case TierPrime:
		return true, requestedRate
	case TierStandard:
		return true, decimal.Max(requestedRate, standardRateFloor)
	case TierSubprime:
		return true, decimal.Max(requestedRate, subprimeRateFloor)
	default:
		return false, requestedRate
	}
}
