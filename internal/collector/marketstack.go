package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperr "KodalReport/internal/errors"
	"KodalReport/internal/httpx"
	"KodalReport/internal/model"
)

// MarketstackFetcher implements PriceSource using the Marketstack EOD API.
type MarketstackFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewMarketstackFetcher creates a new fetcher. A nil client uses http.DefaultClient.
func NewMarketstackFetcher(baseURL, apiKey string, client *http.Client) *MarketstackFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &MarketstackFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  client,
	}
}

func (f *MarketstackFetcher) Name() string { return "Marketstack" }

// msLatest is the expected JSON shape of /eod/latest.
type msLatest struct {
	Data []struct {
		Symbol string              `json:"symbol"`
		Close  decimal.NullDecimal `json:"close"`
		Date   string              `json:"date"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// LatestPrice returns the most recent end-of-day close for symbol.
func (f *MarketstackFetcher) LatestPrice(ctx context.Context, symbol string) (*model.LatestPrice, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("marketstack access key: %w", apperr.ErrMissingCredentials)
	}
	query := url.Values{}
	query.Set("access_key", f.APIKey)
	query.Set("symbols", symbol)
	endpoint := f.BaseURL + "/eod/latest?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest price: %w", httpx.RedactURL(err, f.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest price: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result msLatest
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode latest price: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("marketstack api error %s: %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("latest price: %w", apperr.ErrEmptyResponse)
	}
	row := result.Data[0]
	if !row.Close.Valid || row.Close.Decimal.IsNegative() {
		return nil, fmt.Errorf("latest price: invalid close %q", row.Close.Decimal.String())
	}
	return &model.LatestPrice{
		Symbol: symbol,
		Close:  row.Close.Decimal,
		Date:   parseMarketstackDate(row.Date),
	}, nil
}

// parseMarketstackDate accepts "2024-01-05T00:00:00+0000" and RFC3339.
// Unparseable dates yield the zero time.
func parseMarketstackDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
