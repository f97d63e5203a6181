package model

import "github.com/shopspring/decimal"

// VolumeTrend classifies today's volume against the trailing average.
type VolumeTrend string

const (
	TrendHigh   VolumeTrend = "High"
	TrendNormal VolumeTrend = "Normal"
	TrendLow    VolumeTrend = "Low"
)

// Direction of the price move versus the previous close.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// ReportMetrics holds all values derived from a Quote.
type ReportMetrics struct {
	ChangePercent decimal.Decimal
	Direction     Direction
	VolumeRatio   decimal.Decimal
	Trend         VolumeTrend
	TradedValue   decimal.Decimal // major currency units
}
