package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
)

var (
	envFile     string
	backendFlag string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Record income and expenses and report on the current month",
	Long: `Tracker records income and expense transactions for the running session,
keeps a live balance and produces a monthly income/expense summary that can be
viewed or exported to a text file.

It can be used from the terminal (tracker shell) or the browser (tracker serve).
Transactions live only as long as the process.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "transaction store: memory or sqlite (overrides DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := cli.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return cli.LoadAndValidateConfig(func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("backend") {
			cfg.DataBackend = backendFlag
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("host") {
			cfg.Host, _ = flags.GetString("host")
		}
		if flags.Changed("port") {
			cfg.Port, _ = flags.GetString("port")
		}
		if flags.Changed("export-dir") {
			cfg.ExportDir, _ = flags.GetString("export-dir")
		}
	})
}

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	tracker *services.Tracker
	cleanup backend.CleanupFunc
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithCurrencySymbol(cfg.CurrencySymbol),
		services.WithReportFileName(cfg.ReportFileName),
	}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		tracker: services.NewTracker(ledger.New(res.Store), opts...),
		cleanup: res.Cleanup,
	}, nil
}

func (a *app) Close() {
	if a.cleanup == nil {
		return
	}
	if err := a.cleanup(); err != nil {
		a.logger.Error("Cleanup failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
	}
}
