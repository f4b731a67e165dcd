// Package calculator holds the pure allocation and settlement math.
// Nothing in here performs I/O or logging, so every function can be
// unit-tested without mocks.
package calculator

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/nbbang/dutchpay/internal/models"
)

// MinorUnit returns the number of decimal places of the currency's
// smallest unit (0 for KRW, 2 for USD). Unknown codes fall back to 2.
func MinorUnit(code string) int32 {
	if c := money.GetCurrency(code); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// SmallestUnit returns one minor unit of the currency as a decimal,
// e.g. 1 for KRW, 0.01 for USD.
func SmallestUnit(code string) decimal.Decimal {
	return decimal.New(1, -MinorUnit(code))
}

// Round applies the bill's rounding rule at the given precision.
// UP rounds away from zero, DOWN toward zero, NEAREST half away from
// zero.
func Round(d decimal.Decimal, rule models.RoundingRule, places int32) decimal.Decimal {
	switch rule {
	case models.RoundUp:
		return d.RoundUp(places)
	case models.RoundDown:
		return d.RoundDown(places)
	default:
		return d.Round(places)
	}
}
