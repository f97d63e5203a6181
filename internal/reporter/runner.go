// Package reporter runs the fetch, build and deliver pipeline once.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"KodalReport/internal/model"
	"KodalReport/internal/report"
)

// QuoteFetcher produces the quote for the configured instrument.
type QuoteFetcher interface {
	Collect(ctx context.Context) (*model.Quote, error)
}

// Notifier delivers a rendered report.
type Notifier interface {
	Send(ctx context.Context, text string) (*model.NotificationResult, error)
}

// Outcome aggregates what happened during one run.
type Outcome struct {
	Quote        *model.Quote
	Report       string
	Notification *model.NotificationResult
	FetchErr     error
	DeliveryErr  error
	PanicErr     error
	DryRun       bool
}

// Err joins every stage error, or returns nil for a clean run.
func (o Outcome) Err() error {
	return errors.Join(o.FetchErr, o.DeliveryErr, o.PanicErr)
}

// Delivered reports whether the notification endpoint accepted the message.
func (o Outcome) Delivered() bool {
	return o.Notification != nil && o.Notification.Delivered
}

// Log writes the single summary line for the run.
func (o Outcome) Log(logger zerolog.Logger) {
	var ev *zerolog.Event
	if err := o.Err(); err != nil {
		ev = logger.Error().Err(err)
	} else {
		ev = logger.Info()
	}
	if o.Quote != nil {
		ev = ev.Str("price", o.Quote.Price.String()).Str("source", o.Quote.SourceName)
	}
	if o.Notification != nil {
		ev = ev.Int("status", o.Notification.StatusCode)
	}
	ev.Bool("delivered", o.Delivered()).Bool("dry_run", o.DryRun).Msg("run finished")
}

// Runner wires the three stages together.
type Runner struct {
	Fetcher  QuoteFetcher
	Builder  *report.Builder
	Notifier Notifier
	Symbol   string
	Name     string
	DryRun   bool
	Out      io.Writer
	Logger   zerolog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(fetcher QuoteFetcher, builder *report.Builder, notifier Notifier, logger zerolog.Logger) *Runner {
	return &Runner{
		Fetcher:  fetcher,
		Builder:  builder,
		Notifier: notifier,
		Out:      io.Discard,
		Logger:   logger,
	}
}

// Run executes the pipeline once. It never panics; every failure ends up in
// the returned Outcome.
func (r *Runner) Run(ctx context.Context) (out Outcome) {
	out.DryRun = r.DryRun
	defer func() {
		if rec := recover(); rec != nil {
			out.PanicErr = fmt.Errorf("panic: %v", rec)
			r.Logger.Error().Interface("panic", rec).Msg("recovered from panic")
		}
	}()

	r.Logger.Info().Str("symbol", r.Symbol).Msg("running daily report")
	q, err := r.Fetcher.Collect(ctx)
	if err != nil {
		r.Logger.Error().Err(err).Msg("collect failed")
		out.FetchErr = err
		out.Report = r.Builder.Unavailable(r.Symbol, r.Name)
	} else {
		out.Quote = q
		out.Report = r.Builder.Build(q)
	}

	if r.DryRun {
		fmt.Fprint(r.Out, out.Report)
		return out
	}

	res, err := r.Notifier.Send(ctx, out.Report)
	out.Notification = res
	if err != nil {
		out.DeliveryErr = err
	}
	return out
}
