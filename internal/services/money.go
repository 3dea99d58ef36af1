package services

import "github.com/shopspring/decimal"

// Money columns are NUMERIC(24,2) on Postgres; SQLite is held to the same range.
const (
	maxMoneyIntegerDigits = 22
	maxMoneyScale         = 2
)

// validateMoney rejects values outside the storable range. Bounds are checked
// on the coefficient and exponent so huge exponents are never expanded.
func validateMoney(field string, d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	exp := int64(d.Exponent())
	digits := int64(d.NumDigits())

	if digits+exp > maxMoneyIntegerDigits {
		return invalid("%s must have at most %d integer digits", field, maxMoneyIntegerDigits)
	}
	if exp >= -maxMoneyScale {
		return nil
	}
	// A nonzero value below 10^-2 always needs more than two places.
	if digits+exp <= -maxMoneyScale || !d.Equal(d.Truncate(maxMoneyScale)) {
		return invalid("%s must have at most %d decimal places", field, maxMoneyScale)
	}
	return nil
}
