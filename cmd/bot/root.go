package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/piquette/finance-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"KodalReport/internal/collector"
	"KodalReport/internal/config"
	"KodalReport/internal/httpx"
	"KodalReport/internal/logging"
	"KodalReport/internal/notifier"
	"KodalReport/internal/report"
	"KodalReport/internal/reporter"
)

type options struct {
	configPath string
	dryRun     bool
	debug      bool
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "kodalreport",
		Short:         "Post the daily Kodal Minerals stock report to Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			runReport(ctx, opts, cmd.OutOrStdout())
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "path to the YAML config file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the report instead of sending it")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kodalreport %s\n", version)
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// runReport performs one report run. It logs every failure and never panics.
func runReport(ctx context.Context, opts *options, stdout io.Writer) {
	logger := logging.NewLogger("info")
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("unexpected failure")
		}
	}()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.configPath).Msg("load config")
		return
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Log.Level,
		Console:    os.Stdout,
		FilePath:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	})
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("config validation")
		return
	}

	runner, err := buildRunner(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init")
		return
	}
	runner.DryRun = opts.dryRun
	runner.Out = stdout

	runner.Run(ctx).Log(logger)
}

func buildRunner(cfg *config.Config, logger zerolog.Logger) (*reporter.Runner, error) {
	client := httpx.New(cfg.Timeout(), cfg.Proxy)
	finance.SetHTTPClient(client)

	var primary collector.PriceSource
	if cfg.Marketstack.APIKey != "" {
		primary = collector.NewMarketstackFetcher(cfg.Marketstack.BaseURL, cfg.Marketstack.APIKey, client)
	} else {
		logger.Info().Msg("MARKETSTACK_KEY not set, using Yahoo Finance price")
	}
	yahoo := collector.NewYahooFetcher(cfg.Yahoo.ChartURL, client, logging.WithComponent(logger, "yahoo"))

	col := collector.NewCollector(primary, yahoo, cfg.Instrument.Symbol)
	col.PrimarySymbol = cfg.Instrument.PrimarySymbol
	col.Name = cfg.Instrument.Name
	col.HistoryDays = cfg.Yahoo.HistoryDays
	col.AverageWindow = cfg.Report.AverageWindow
	col.Logger = logging.WithSymbol(logging.WithComponent(logger, "collector"), cfg.Instrument.Symbol)

	builder, err := report.NewBuilder(cfg.Thresholds(), cfg.Report.Currency, cfg.Location()).
		WithNextRun(cfg.Report.NextRunCron)
	if err != nil {
		return nil, err
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID,
		client, logging.WithComponent(logger, "telegram"))

	runner := reporter.NewRunner(col, builder, tn, logging.WithComponent(logger, "reporter"))
	runner.Symbol = cfg.Instrument.Symbol
	runner.Name = cfg.Instrument.Name
	return runner, nil
}
