package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperr "KodalReport/internal/errors"
	"KodalReport/internal/model"
)

// YahooFetcher implements MarketData using the Yahoo Finance chart API for
// session fields and history, and the finance-go equity lookup for market
// cap, the 10-day average volume and the long name.
type YahooFetcher struct {
	ChartURL string
	Client   *http.Client
	// EquityLookup defaults to equity.Get. Nil disables the enrichment.
	EquityLookup func(symbol string) (*finance.Equity, error)
	Logger       zerolog.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. A nil client uses http.DefaultClient.
func NewYahooFetcher(chartURL string, client *http.Client, logger zerolog.Logger) *YahooFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &YahooFetcher{
		ChartURL:     strings.TrimRight(chartURL, "/"),
		Client:       client,
		EquityLookup: equity.Get,
		Logger:       logger,
	}
}

func (f *YahooFetcher) Name() string { return "Yahoo Finance" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       yahooMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketTime    int64   `json:"regularMarketTime"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, query url.Values) (yahooMeta, []model.OHLCV, error) {
	u := fmt.Sprintf("%s/%s?%s", f.ChartURL, url.PathEscape(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return yahooMeta{}, nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return yahooMeta{}, nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return yahooMeta{}, nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return yahooMeta{}, nil, fmt.Errorf("yahoo: %w", apperr.ErrEmptyResponse)
	}

	result := chart.Chart.Result[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	if len(result.Indicators.Quote) > 0 {
		q := result.Indicators.Quote[0]
		for i, ts := range result.Timestamp {
			c := at(q.Close, i)
			if c == nil {
				continue // null bars (holidays, halted sessions)
			}
			var vol int64
			if v := atInt(q.Volume, i); v != nil {
				vol = *v
			}
			bars = append(bars, model.OHLCV{
				Time:   time.Unix(ts, 0),
				Open:   decimalOr(at(q.Open, i), *c),
				High:   decimalOr(at(q.High, i), *c),
				Low:    decimalOr(at(q.Low, i), *c),
				Close:  decimal.NewFromFloat(*c),
				Volume: vol,
			})
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return result.Meta, bars, nil
}

// Info returns the current session fields for symbol. The chart meta and the
// equity lookup are merged; either one alone is enough.
func (f *YahooFetcher) Info(ctx context.Context, symbol string) (*model.QuoteInfo, error) {
	info, chartErr := f.chartInfo(ctx, symbol)
	if chartErr != nil {
		f.Logger.Warn().Err(chartErr).Str("symbol", symbol).Msg("yahoo chart meta unavailable")
	}

	eq, eqErr := f.lookupEquity(ctx, symbol)
	if eqErr != nil {
		f.Logger.Warn().Err(eqErr).Str("symbol", symbol).Msg("yahoo equity lookup failed, market cap unavailable")
	}

	if chartErr != nil && eqErr != nil {
		return nil, fmt.Errorf("chart: %w; equity: %w", chartErr, eqErr)
	}
	if info == nil {
		info = &model.QuoteInfo{Symbol: symbol}
	}
	if eq != nil {
		mergeEquity(info, eq)
	}
	return info, nil
}

func (f *YahooFetcher) chartInfo(ctx context.Context, symbol string) (*model.QuoteInfo, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("range", "1d")
	meta, _, err := f.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}
	prev := meta.PreviousClose
	if prev <= 0 {
		prev = meta.ChartPreviousClose
	}
	info := &model.QuoteInfo{
		Symbol:        symbol,
		Name:          firstNonEmpty(meta.LongName, meta.ShortName),
		Currency:      meta.Currency,
		Price:         model.Positive(meta.RegularMarketPrice),
		PreviousClose: model.Positive(prev),
		DayLow:        model.Positive(meta.RegularMarketDayLow),
		DayHigh:       model.Positive(meta.RegularMarketDayHigh),
		Volume:        model.Positive(float64(meta.RegularMarketVolume)),
	}
	if meta.RegularMarketTime > 0 {
		info.AsOf = time.Unix(meta.RegularMarketTime, 0)
	}
	return info, nil
}

type equityResult struct {
	eq  *finance.Equity
	err error
}

// lookupEquity runs the context-unaware finance-go lookup and stops waiting
// once ctx is done. The abandoned call is bounded by the shared client timeout.
func (f *YahooFetcher) lookupEquity(ctx context.Context, symbol string) (*finance.Equity, error) {
	if f.EquityLookup == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("equity lookup: %w", err)
	}

	done := make(chan equityResult, 1)
	go func() {
		eq, err := f.EquityLookup(symbol)
		done <- equityResult{eq: eq, err: err}
	}()

	var res equityResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("equity lookup: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("equity lookup: %w", res.err)
	}
	if res.eq == nil {
		return nil, fmt.Errorf("equity lookup: %w", apperr.ErrEmptyResponse)
	}
	return res.eq, nil
}

// mergeEquity fills fields the chart meta did not supply. Market cap and the
// 10-day average only come from the equity lookup.
func mergeEquity(info *model.QuoteInfo, eq *finance.Equity) {
	info.MarketCap = model.Positive(float64(eq.MarketCap))
	info.AverageVolume10d = model.Positive(float64(eq.AverageDailyVolume10Day))
	if name := firstNonEmpty(eq.LongName, eq.ShortName); name != "" {
		info.Name = name
	}
	if info.Currency == "" {
		info.Currency = eq.CurrencyID
	}
	fill := func(dst *decimal.NullDecimal, v float64) {
		if !dst.Valid {
			*dst = model.Positive(v)
		}
	}
	fill(&info.Price, float64(eq.RegularMarketPrice))
	fill(&info.PreviousClose, float64(eq.RegularMarketPreviousClose))
	fill(&info.DayLow, float64(eq.RegularMarketDayLow))
	fill(&info.DayHigh, float64(eq.RegularMarketDayHigh))
	fill(&info.Volume, float64(eq.RegularMarketVolume))
	if info.AsOf.IsZero() && eq.RegularMarketTime > 0 {
		info.AsOf = time.Unix(int64(eq.RegularMarketTime), 0)
	}
}

// History returns the daily bars of the last days calendar days, oldest first.
func (f *YahooFetcher) History(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if days <= 0 {
		return nil, fmt.Errorf("history days must be positive")
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))

	_, bars, err := f.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo history: %w", apperr.ErrEmptyResponse)
	}
	return bars, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func atInt(vals []*int64, i int) *int64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func decimalOr(v *float64, fallback float64) decimal.Decimal {
	if v == nil {
		return decimal.NewFromFloat(fallback)
	}
	return decimal.NewFromFloat(*v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
