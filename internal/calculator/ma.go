package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"KodalReport/internal/model"
)

// AverageVolume returns the simple average volume of the most recent window bars.
// When fewer bars are available the average covers all of them.
func AverageVolume(bars []model.OHLCV, window int) (decimal.Decimal, error) {
	if window <= 0 {
		return decimal.Zero, errors.New("window must be positive")
	}
	if len(bars) == 0 {
		return decimal.Zero, errors.New("no bars for average volume")
	}
	start := len(bars) - window
	if start < 0 {
		start = 0
	}
	sum := decimal.Zero
	for i := start; i < len(bars); i++ {
		sum = sum.Add(decimal.NewFromInt(bars[i].Volume))
	}
	return sum.Div(decimal.NewFromInt(int64(len(bars) - start))), nil
}
