package collector

import (
	"context"

	"KodalReport/internal/model"
)

// PriceSource supplies an authoritative latest close for a symbol.
//
//go:generate mockgen -package=collector_test -destination=mock_fetcher_test.go -source=fetcher.go
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) (*model.LatestPrice, error)
	Name() string
}

// MarketData supplies per-ticker info and a daily bar history.
type MarketData interface {
	Info(ctx context.Context, symbol string) (*model.QuoteInfo, error)
	History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}
