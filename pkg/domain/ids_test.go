package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "creditline/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be positive decimal integers".
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCustomerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseCustomerID("0")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts positive integer", func(t *testing.T) {
		id, err := ParseCustomerID("42")
		require.NoError(t, err)
		assert.Equal(t, CustomerID(42), id)
		assert.Equal(t, "42", id.String())
	})

	t.Run("loan ids follow the same rules", func(t *testing.T) {
		id, err := ParseLoanID("7")
		require.NoError(t, err)
		assert.Equal(t, LoanID(7), id)

		_, err = ParseLoanID("-7")
		require.Error(t, err)
	})
}

// TestParseID_TrustBoundary covers inputs arriving from URL path segments.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "1; DROP TABLE loans;--", true},
		{"Path traversal", "../../etc/passwd", true},
		{"Null byte injection", "12\x0034", true},
		{"Oversized input", strings.Repeat("9", 40), true},
		{"Overflow", "9223372036854775808", true},
		{"Signed", "+12", true},
		{"Negative", "-1", true},
		{"Whitespace", " 12 ", true},
		{"Decimal point", "1.5", true},

		{"Max int64", "9223372036854775807", false},
		{"Leading zeros", "007", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCustomerID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, CustomerID(0).IsZero())
	assert.False(t, CustomerID(1).IsZero())
	assert.True(t, LoanID(0).IsZero())
}
