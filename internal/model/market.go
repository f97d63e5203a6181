package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// LatestPrice is the authoritative close reported by a price source.
type LatestPrice struct {
	Symbol string
	Close  decimal.Decimal
	Date   time.Time
}

// QuoteInfo holds the per-ticker fields reported by the market-data source.
// Fields the source did not report are left invalid.
type QuoteInfo struct {
	Symbol           string
	Name             string
	Currency         string
	Price            decimal.NullDecimal
	PreviousClose    decimal.NullDecimal
	DayLow           decimal.NullDecimal
	DayHigh          decimal.NullDecimal
	Volume           decimal.NullDecimal
	AverageVolume10d decimal.NullDecimal
	MarketCap        decimal.NullDecimal
	AsOf             time.Time
}
