package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"KodalReport/internal/model"
)

// LatestBarRange returns the low and high of the most recent bar.
func LatestBarRange(bars []model.OHLCV) (low, high decimal.Decimal, err error) {
	if len(bars) == 0 {
		return decimal.Zero, decimal.Zero, errors.New("no daily bars provided")
	}
	last := bars[len(bars)-1]
	if last.High.LessThan(last.Low) {
		return decimal.Zero, decimal.Zero, errors.New("high must be >= low")
	}
	return last.Low, last.High, nil
}
