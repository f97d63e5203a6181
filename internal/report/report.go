// Package report renders a Quote into the Telegram Markdown daily report.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"KodalReport/internal/calculator"
	"KodalReport/internal/model"
)

// Builder renders reports. A zero Builder is not usable; use NewBuilder.
type Builder struct {
	Thresholds calculator.Thresholds
	Currency   string
	Location   *time.Location
	// NextRun, when set, adds a "Next report" footer.
	NextRun cron.Schedule
	Now     func() time.Time
}

// NewBuilder creates a Builder for currency (ISO code) in loc.
func NewBuilder(th calculator.Thresholds, currency string, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{
		Thresholds: th,
		Currency:   currency,
		Location:   loc,
		Now:        time.Now,
	}
}

// WithNextRun parses a standard 5-field cron expression for the footer.
// An empty expression leaves the footer off.
func (b *Builder) WithNextRun(expr string) (*Builder, error) {
	if expr == "" {
		b.NextRun = nil
		return b, nil
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return b, fmt.Errorf("parse next run %q: %w", expr, err)
	}
	b.NextRun = sched
	return b, nil
}

const separator = "--- --- --- --- --- ---"

// Build renders q. It never fails; absent fields render as N/A.
func (b *Builder) Build(q *model.Quote) string {
	m := calculator.Compute(q, b.Thresholds)
	now := b.Now().In(b.Location)
	day := now
	if !q.AsOf.IsZero() {
		day = q.AsOf.In(b.Location)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *%s (%s) Daily Report*\n", EscapeMarkdown(q.Name), EscapeMarkdown(q.Symbol))
	fmt.Fprintf(&sb, "📅 %s\n", day.Format("Mon 02 Jan 2006"))
	sb.WriteString(separator + "\n")

	fmt.Fprintf(&sb, "💰 Price: %s %s %s\n", b.minor(q.Price), marker(m.Direction), SignedPercent(m.ChangePercent))
	fmt.Fprintf(&sb, "🔗 Source: %s\n", sourceLabel(q))
	fmt.Fprintf(&sb, "📉 Prev Close: %s\n", b.prevClose(q))
	fmt.Fprintf(&sb, "📈 Volume: %s\n", GroupInt(q.Volume))
	fmt.Fprintf(&sb, "📊 10d Avg Volume: %s\n", GroupNull(q.AverageVolume10d))
	fmt.Fprintf(&sb, "🔥 Trend: %s (%sx)\n", m.Trend, m.VolumeRatio.StringFixed(2))
	fmt.Fprintf(&sb, "🏢 Mkt Cap: %s\n", b.marketCap(q))
	fmt.Fprintf(&sb, "💷 Traded Value: %s\n", Money(m.TradedValue, b.Currency))
	fmt.Fprintf(&sb, "↕️ Day Range: %s\n", b.dayRange(q))

	if b.NextRun != nil {
		next := b.NextRun.Next(now).In(b.Location)
		fmt.Fprintf(&sb, "⏰ Next report: %s\n", next.Format("Mon 02 Jan 15:04 MST"))
	}
	return sb.String()
}

// Unavailable renders the short notice sent when no price could be fetched.
func (b *Builder) Unavailable(symbol, name string) string {
	now := b.Now().In(b.Location)
	return fmt.Sprintf("❌ *%s (%s)*: quote unavailable\n📅 %s\n",
		EscapeMarkdown(name), EscapeMarkdown(symbol), now.Format("Mon 02 Jan 2006"))
}

func marker(d model.Direction) string {
	if d == model.DirectionDown {
		return "🔽"
	}
	return "🔼"
}

func sourceLabel(q *model.Quote) string {
	name := q.SourceName
	if name == "" {
		name = string(q.Source)
	}
	if q.Source == model.SourceFallback {
		return EscapeMarkdown(name) + " (fallback)"
	}
	return EscapeMarkdown(name)
}

func (b *Builder) prevClose(q *model.Quote) string {
	if !q.PreviousClose.Valid {
		return NA
	}
	return b.minor(q.PreviousClose.Decimal)
}

func (b *Builder) dayRange(q *model.Quote) string {
	if !q.DayLow.Valid || !q.DayHigh.Valid {
		return NA
	}
	return b.minor(q.DayLow.Decimal) + " - " + b.minor(q.DayHigh.Decimal)
}

func (b *Builder) marketCap(q *model.Quote) string {
	if !q.MarketCap.Valid {
		return NA
	}
	return Symbol(b.Currency) + GroupInt(q.MarketCap.Decimal.Round(0).IntPart())
}
