package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"KodalReport/internal/calculator"
	apperr "KodalReport/internal/errors"
	"KodalReport/internal/model"
)

// Collector assembles a Quote from a price source and a market-data source.
type Collector struct {
	Primary       PriceSource // optional
	Market        MarketData
	Symbol        string
	PrimarySymbol string
	Name          string
	HistoryDays   int
	AverageWindow int
	Logger        zerolog.Logger
}

// NewCollector creates a new Collector. primary may be nil when no key is configured.
func NewCollector(primary PriceSource, market MarketData, symbol string) *Collector {
	return &Collector{
		Primary:       primary,
		Market:        market,
		Symbol:        symbol,
		PrimarySymbol: symbol,
		HistoryDays:   15,
		AverageWindow: 10,
		Logger:        zerolog.Nop(),
	}
}

// Collect fetches the quote. The primary source is tried once for the price;
// everything else comes from the market-data source. It fails only when no
// price can be obtained at all.
func (c *Collector) Collect(ctx context.Context) (*model.Quote, error) {
	var errs []error

	info, err := c.Market.Info(ctx, c.Symbol)
	if err != nil {
		c.Logger.Warn().Err(err).Str("provider", c.Market.Name()).Msg("info fetch failed, supplementary fields unavailable")
		errs = append(errs, apperr.NewProviderError(c.Market.Name(), c.Symbol, err))
		info = &model.QuoteInfo{Symbol: c.Symbol}
	}

	bars, err := c.Market.History(ctx, c.Symbol, c.HistoryDays)
	if err != nil {
		c.Logger.Warn().Err(err).Str("provider", c.Market.Name()).Msg("history fetch failed")
		errs = append(errs, apperr.NewProviderError(c.Market.Name(), c.Symbol, err))
		bars = nil
	}

	q := &model.Quote{
		Symbol:        c.Symbol,
		Name:          info.Name,
		PreviousClose: info.PreviousClose,
		DayLow:        info.DayLow,
		DayHigh:       info.DayHigh,
		MarketCap:     info.MarketCap,
		AsOf:          info.AsOf,
	}
	if q.Name == "" {
		q.Name = c.Name
	}

	if !c.primaryPrice(ctx, q, &errs) && !c.fallbackPrice(q, info, bars) {
		cause := apperr.ErrNoPrice
		if len(errs) > 0 {
			cause = fmt.Errorf("%w: %w", apperr.ErrNoPrice, errors.Join(errs...))
		}
		return nil, apperr.NewProviderError("all", c.Symbol, cause)
	}

	if info.Volume.Valid {
		q.Volume = info.Volume.Decimal.IntPart()
	} else if len(bars) > 0 {
		q.Volume = bars[len(bars)-1].Volume
	}

	if !q.DayLow.Valid || !q.DayHigh.Valid {
		if low, high, err := calculator.LatestBarRange(bars); err == nil {
			q.DayLow = model.Valid(low)
			q.DayHigh = model.Valid(high)
		} else {
			c.Logger.Debug().Err(err).Msg("day range unavailable")
		}
	}

	if avg, err := calculator.AverageVolume(bars, c.AverageWindow); err == nil {
		q.AverageVolume10d = model.Valid(avg)
	} else {
		c.Logger.Warn().Err(err).Msg("average volume from history failed, using provider average")
		q.AverageVolume10d = info.AverageVolume10d
	}

	c.Logger.Info().
		Str("price", q.Price.String()).
		Str("source", q.SourceName).
		Int64("volume", q.Volume).
		Msg("quote collected")
	return q, nil
}

func (c *Collector) primaryPrice(ctx context.Context, q *model.Quote, errs *[]error) bool {
	if c.Primary == nil {
		return false
	}
	lp, err := c.Primary.LatestPrice(ctx, c.PrimarySymbol)
	if err != nil {
		c.Logger.Warn().Err(err).Str("provider", c.Primary.Name()).Msg("primary price failed, falling back")
		*errs = append(*errs, apperr.NewProviderError(c.Primary.Name(), c.PrimarySymbol, err))
		return false
	}
	q.Price = lp.Close
	q.Source = model.SourcePrimary
	q.SourceName = c.Primary.Name()
	if !lp.Date.IsZero() {
		q.AsOf = lp.Date
	}
	return true
}

func (c *Collector) fallbackPrice(q *model.Quote, info *model.QuoteInfo, bars []model.OHLCV) bool {
	var price decimal.Decimal
	switch {
	case info.Price.Valid:
		price = info.Price.Decimal
	case len(bars) > 0:
		last := bars[len(bars)-1]
		price = last.Close
		if q.AsOf.IsZero() {
			q.AsOf = last.Time
		}
	default:
		return false
	}
	q.Price = price
	q.Source = model.SourceFallback
	q.SourceName = c.Market.Name()
	return true
}
