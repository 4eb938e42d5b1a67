package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func loan(principal string, tenure, paid int, start time.Time, active bool) LoanFacts {
	return LoanFacts{
		Principal:          dec(principal),
		TenureMonths:       tenure,
		InstallmentsPaid:   paid,
		MonthlyInstallment: decimal.Zero,
		StartDate:          start,
		Active:             active,
	}
}
