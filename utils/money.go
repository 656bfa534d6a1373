package utils

import (
	"github.com/shopspring/decimal"
)

// Amounts are stored in minor units (kobo, cents) with two decimal places.
const minorUnitExp = 2

// ToMinor converts a major-unit amount such as 5000.50 to 500050, rounding
// half away from zero.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(minorUnitExp).Round(0).IntPart()
}

func FromMinor(v int64) decimal.Decimal {
	return decimal.New(v, -minorUnitExp)
}

// FormatMinor renders a minor-unit amount as a fixed two-decimal string.
func FormatMinor(v int64) string {
	return FromMinor(v).StringFixed(minorUnitExp)
}
