package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KodalReport/internal/calculator"
	"KodalReport/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

func testBuilder(t *testing.T) *Builder {
	b := NewBuilder(calculator.DefaultThresholds(), "GBP", london(t))
	b.Now = func() time.Time { return time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC) }
	return b
}

func fullQuote() *model.Quote {
	return &model.Quote{
		Symbol:           "KOD.L",
		Name:             "Kodal Minerals",
		Price:            dec("5.2"),
		PreviousClose:    model.Valid(dec("5.0")),
		DayLow:           model.Valid(dec("4.9")),
		DayHigh:          model.Valid(dec("5.3")),
		Volume:           3000000,
		AverageVolume10d: model.Valid(dec("1500000")),
		MarketCap:        model.Valid(dec("104500000")),
		Source:           model.SourcePrimary,
		SourceName:       "Marketstack",
		AsOf:             time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild_FullLayout(t *testing.T) {
	out := testBuilder(t).Build(fullQuote())

	want := strings.Join([]string{
		"📊 *Kodal Minerals (KOD.L) Daily Report*",
		"📅 Fri 15 Mar 2024",
		"--- --- --- --- --- ---",
		"💰 Price: 5.20p 🔼 +4.00%",
		"🔗 Source: Marketstack",
		"📉 Prev Close: 5.00p",
		"📈 Volume: 3,000,000",
		"📊 10d Avg Volume: 1,500,000",
		"🔥 Trend: High (2.00x)",
		"🏢 Mkt Cap: £104,500,000",
		"💷 Traded Value: £156,000.00",
		"↕️ Day Range: 4.90p - 5.30p",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestBuild_ChangeScenarios(t *testing.T) {
	tests := []struct {
		name  string
		price string
		prev  decimal.NullDecimal
		want  string
	}{
		{"up 25 percent", "10", model.Valid(dec("8")), "💰 Price: 10.00p 🔼 +25.00%"},
		{"zero previous close", "10", model.Valid(decimal.Zero), "💰 Price: 10.00p 🔼 +0.00%"},
		{"absent previous close", "10", decimal.NullDecimal{}, "💰 Price: 10.00p 🔼 +0.00%"},
		{"down", "4", model.Valid(dec("5")), "💰 Price: 4.00p 🔽 -20.00%"},
		{"negligible drop", "4.9999", model.Valid(dec("5")), "💰 Price: 5.00p 🔼 +0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := fullQuote()
			q.Price = dec(tt.price)
			q.PreviousClose = tt.prev
			assert.Contains(t, testBuilder(t).Build(q), tt.want)
		})
	}
}

func TestBuild_MissingFieldsRenderNA(t *testing.T) {
	q := &model.Quote{
		Symbol:     "KOD.L",
		Name:       "Kodal Minerals",
		Price:      dec("5.2"),
		Source:     model.SourceFallback,
		SourceName: "Yahoo Finance",
	}
	out := testBuilder(t).Build(q)

	assert.Contains(t, out, "🏢 Mkt Cap: N/A")
	assert.Contains(t, out, "📉 Prev Close: N/A")
	assert.Contains(t, out, "📊 10d Avg Volume: N/A")
	assert.Contains(t, out, "↕️ Day Range: N/A")
	assert.Contains(t, out, "🔥 Trend: Normal (0.00x)")
	assert.Contains(t, out, "📈 Volume: 0")
	assert.Contains(t, out, "💷 Traded Value: £0.00")
	assert.Contains(t, out, "🔗 Source: Yahoo Finance (fallback)")
	assert.Contains(t, out, "📅 Fri 15 Mar 2024", "falls back to the build time")
	assert.NotContains(t, out, "<nil>")
	assert.NotContains(t, out, "null")
}

func TestBuild_NextRunFooter(t *testing.T) {
	b, err := testBuilder(t).WithNextRun("0 8 * * 1-5")
	require.NoError(t, err)

	out := b.Build(fullQuote())
	assert.True(t, strings.HasSuffix(out, "⏰ Next report: Mon 18 Mar 08:00 GMT\n"), out)
}

func TestWithNextRun_Invalid(t *testing.T) {
	_, err := testBuilder(t).WithNextRun("every day")
	assert.Error(t, err)
}

func TestBuild_EscapesMarkdownInName(t *testing.T) {
	q := fullQuote()
	q.Name = "Kodal_Minerals *PLC*"
	out := testBuilder(t).Build(q)
	assert.Contains(t, out, `📊 *Kodal\_Minerals \*PLC\* (KOD.L) Daily Report*`)
}

func TestUnavailable(t *testing.T) {
	out := testBuilder(t).Unavailable("KOD.L", "Kodal Minerals")
	assert.Equal(t, "❌ *Kodal Minerals (KOD.L)*: quote unavailable\n📅 Fri 15 Mar 2024\n", out)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1,234,567", GroupInt(1234567))
	assert.Equal(t, "999", GroupInt(999))
	assert.Equal(t, NA, GroupNull(decimal.NullDecimal{}))
	assert.Equal(t, "2,500,001", GroupNull(model.Valid(dec("2500000.6"))))
	assert.Equal(t, "+1.50%", SignedPercent(dec("1.499")))
	assert.Equal(t, "-0.25%", SignedPercent(dec("-0.25")))
	assert.Equal(t, "£1,234.57", Money(dec("1234.567"), "GBP"))
	assert.Equal(t, "$10.00", Money(dec("10"), "USD"))
	assert.Equal(t, "£", Symbol("GBP"))
}
