package calculator

import (
	"github.com/shopspring/decimal"

	"KodalReport/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Thresholds bound the Normal band of the volume ratio.
// A ratio exactly on either bound is Normal.
type Thresholds struct {
	High decimal.Decimal
	Low  decimal.Decimal
}

// DefaultThresholds returns the 0.5 / 1.5 band.
func DefaultThresholds() Thresholds {
	return Thresholds{
		High: decimal.NewFromFloat(1.5),
		Low:  decimal.NewFromFloat(0.5),
	}
}

// PercentChange returns (price - prevClose) / prevClose * 100, or 0 when the
// previous close is absent or zero.
func PercentChange(price decimal.Decimal, prevClose decimal.NullDecimal) decimal.Decimal {
	if !prevClose.Valid || prevClose.Decimal.IsZero() {
		return decimal.Zero
	}
	return price.Sub(prevClose.Decimal).Div(prevClose.Decimal).Mul(hundred)
}

// DirectionOf maps a percent change to its marker direction. The change is
// rounded to the two places it is displayed with, so -0.001 is UP.
func DirectionOf(change decimal.Decimal) model.Direction {
	if change.Round(2).IsNegative() {
		return model.DirectionDown
	}
	return model.DirectionUp
}

// VolumeRatio returns volume / average, or 0 when the average is absent or not positive.
func VolumeRatio(volume int64, average decimal.NullDecimal) decimal.Decimal {
	if !average.Valid || !average.Decimal.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(volume).Div(average.Decimal)
}

// ClassifyRatio maps a volume ratio onto the trend band.
func ClassifyRatio(ratio decimal.Decimal, th Thresholds) model.VolumeTrend {
	switch {
	case ratio.GreaterThan(th.High):
		return model.TrendHigh
	case ratio.LessThan(th.Low):
		return model.TrendLow
	default:
		return model.TrendNormal
	}
}

// VolumeTrend computes the ratio and its classification. Without a usable
// average there is nothing to compare against, so the trend is Normal.
func VolumeTrend(volume int64, average decimal.NullDecimal, th Thresholds) (decimal.Decimal, model.VolumeTrend) {
	if !average.Valid || !average.Decimal.IsPositive() {
		return decimal.Zero, model.TrendNormal
	}
	ratio := VolumeRatio(volume, average)
	return ratio, ClassifyRatio(ratio, th)
}

// TradedValue returns volume * price / 100: price in minor units, result in major units.
func TradedValue(volume int64, price decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(volume).Mul(price).Div(hundred)
}

// Compute derives every report metric from q.
func Compute(q *model.Quote, th Thresholds) model.ReportMetrics {
	change := PercentChange(q.Price, q.PreviousClose)
	ratio, trend := VolumeTrend(q.Volume, q.AverageVolume10d, th)
	return model.ReportMetrics{
		ChangePercent: change,
		Direction:     DirectionOf(change),
		VolumeRatio:   ratio,
		Trend:         trend,
		TradedValue:   TradedValue(q.Volume, q.Price),
	}
}
