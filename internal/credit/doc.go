// Package credit is the credit decisioning engine: scoring, approval policy,
// EMI math and the debt-capacity guards.
//
// Everything here is pure domain logic - no I/O, no clocks, no locks. Callers
// pass snapshots of the applicant and their loan history together with the
// evaluation date, and get back an Assessment. Money and rates are
// decimal.Decimal; rounding to two places happens only when a value leaves the
// system (NewLoan and the HTTP layer).
package credit
