package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which provider supplied the quote price.
type Source string

const (
	SourcePrimary  Source = "PRIMARY"
	SourceFallback Source = "FALLBACK"
)

// Quote is the normalized snapshot the report is built from.
// Price is in minor currency units (pence). Optional fields that no provider
// supplied stay invalid and render as N/A.
type Quote struct {
	Symbol           string
	Name             string
	Price            decimal.Decimal
	PreviousClose    decimal.NullDecimal
	DayLow           decimal.NullDecimal
	DayHigh          decimal.NullDecimal
	Volume           int64
	AverageVolume10d decimal.NullDecimal
	MarketCap        decimal.NullDecimal
	Source           Source
	SourceName       string
	AsOf             time.Time
}

// Valid returns a valid NullDecimal holding d.
func Valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Positive returns a valid NullDecimal when v > 0. Providers report absent
// fields as zero, so zero is treated as missing.
func Positive(v float64) decimal.NullDecimal {
	if v <= 0 {
		return decimal.NullDecimal{}
	}
	return Valid(decimal.NewFromFloat(v))
}
