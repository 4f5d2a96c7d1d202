// Package currency supplies per-currency minimal-unit precision for the
// calculators. The engine treats precision as an opaque rounding step and
// hardcodes no currency rules of its own beyond this lookup table.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimalPlaces applies to currency codes not in the registry; most
// ISO 4217 currencies use two decimal places.
const DefaultDecimalPlaces = 2

// minorUnits lists the currencies whose minor unit differs from the default,
// plus the majors for explicitness.
var minorUnits = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"CAD": 2,
	"AUD": 2,
	"CHF": 2,
	"CNY": 2,
	"INR": 2,
	"MXN": 2,
	"BRL": 2,

	// Zero-decimal currencies.
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"CLP": 0,
	"ISK": 0,

	// Three-decimal currencies.
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"LYD": 3,
	"OMR": 3,
	"TND": 3,
}

// DecimalPlaces returns the number of minor-unit decimal places for an
// ISO 4217 code. Unknown codes get the two-decimal default.
func DecimalPlaces(code string) int32 {
	if places, ok := minorUnits[strings.ToUpper(code)]; ok {
		return places
	}
	return DefaultDecimalPlaces
}

// Precision returns the currency's minimal unit as a decimal step, e.g.
// 0.01 for USD, 1 for JPY, 0.001 for BHD. This is the value fed into
// RoundingConfig.Precision.
func Precision(code string) decimal.Decimal {
	return decimal.New(1, -DecimalPlaces(code))
}
