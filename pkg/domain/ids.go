// Package domain holds typed identifiers shared across modules.
//
// Customer and loan identities are positive integers assigned by the store.
// Distinct named types keep a loan id from being passed where a customer id is
// expected.
package domain

import (
	"strconv"

	dErrors "creditline/pkg/domain-errors"
)

// maxIDLength bounds input before parsing; int64 fits in 19 digits.
const maxIDLength = 19

// CustomerID identifies a registered customer.
type CustomerID int64

// LoanID identifies a loan record.
type LoanID int64

func (c CustomerID) String() string { return strconv.FormatInt(int64(c), 10) }
func (l LoanID) String() string     { return strconv.FormatInt(int64(l), 10) }

// IsZero reports whether the id was never assigned.
func (c CustomerID) IsZero() bool { return c == 0 }

// IsZero reports whether the id was never assigned.
func (l LoanID) IsZero() bool { return l == 0 }

// ParseCustomerID parses a decimal customer id from an untrusted string.
func ParseCustomerID(s string) (CustomerID, error) {
	v, err := parsePositive(s, "customer_id")
	if err != nil {
		return 0, err
	}
	return CustomerID(v), nil
}

// ParseLoanID parses a decimal loan id from an untrusted string.
func ParseLoanID(s string) (LoanID, error) {
	v, err := parsePositive(s, "loan_id")
	if err != nil {
		return 0, err
	}
	return LoanID(v), nil
}

func parsePositive(s, field string) (int64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	if len(s) > maxIDLength {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" is too long")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, dErrors.New(dErrors.CodeInvalidInput, field+" must be a positive integer")
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, field+" must be a positive integer")
	}
	return v, nil
}
