package main

import (
	"context"
	"os"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/datastore"
	"github.com/aleister1102/ocrdiff/internal/httpclient"
	"github.com/aleister1102/ocrdiff/internal/imagemanager"
	"github.com/aleister1102/ocrdiff/internal/logger"
	"github.com/aleister1102/ocrdiff/internal/orchestrator"
	"github.com/aleister1102/ocrdiff/internal/reporter"
	"github.com/aleister1102/ocrdiff/internal/taskapi"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	baseURL    string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ocrdiff",
		Short: "Side-by-side viewer for GPU-OCR document comparisons",
		Long: `ocrdiff follows comparison tasks on the GPU-OCR backend and renders their
results: both documents side by side with every difference boxed, linked
through the difference gutter, as PNG snapshots and an HTML report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Backend API base URL (overrides the config file)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides the config file)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newWatchCmd(opts),
		newRenderCmd(opts),
		newSnapshotCmd(opts),
		newHistoryCmd(opts),
		newDeleteCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// app holds what every command builds from the configuration.
type app struct {
	cfg    *config.GlobalConfig
	logger zerolog.Logger
}

func loadApp(opts *rootOptions, taskID string) (*app, error) {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	cfg, err := config.LoadGlobalConfig(opts.configFile, bootstrap)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		cfg.APIConfig.BaseURL = opts.baseURL
	}
	if opts.logLevel != "" {
		cfg.LogConfig.LogLevel = opts.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var zLogger zerolog.Logger
	if taskID != "" {
		zLogger, err = logger.NewWithTaskID(cfg.LogConfig, taskID)
	} else {
		zLogger, err = logger.New(cfg.LogConfig)
	}
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: zLogger}, nil
}

// httpClient builds a backend transport; maxBytes > 0 caps response bodies.
func (a *app) httpClient(maxBytes int) (*httpclient.HTTPClient, error) {
	return httpclient.NewHTTPClientBuilder(a.logger).
		FromAPI(a.cfg.APIConfig).
		WithMaxContentSize(maxBytes).
		Build()
}

func (a *app) taskClient() (*taskapi.Client, error) {
	hc, err := a.httpClient(0)
	if err != nil {
		return nil, err
	}
	return taskapi.NewClient(a.cfg.APIConfig, hc, a.logger)
}

func (a *app) images() (*imagemanager.Manager, error) {
	var hc *httpclient.HTTPClient
	if a.cfg.ImageConfig.Mode != config.ImageModeEmbedded {
		var err error
		hc, err = a.httpClient(a.cfg.ImageConfig.MaxImageBytes)
		if err != nil {
			return nil, err
		}
	}
	return imagemanager.NewFromConfig(a.cfg.ImageConfig, a.cfg.APIConfig, hc, a.logger)
}

func (a *app) history(ctx context.Context) (*datastore.HistoryDB, error) {
	return datastore.NewHistoryDB(ctx, a.cfg.StorageConfig.SQLiteDBPath, a.logger)
}

// orchestrator builds the full pipeline. The returned cleanup closes the
// history database.
func (a *app) orchestrator(ctx context.Context, tasks orchestrator.TaskSource) (*orchestrator.CompareOrchestrator, func(), error) {
	images, err := a.images()
	if err != nil {
		return nil, nil, err
	}
	rep, err := reporter.NewHTMLReporter(a.cfg.ReporterConfig, a.logger)
	if err != nil {
		return nil, nil, err
	}
	history, err := a.history(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Run history unavailable, continuing without it")
		history = nil
	}
	cleanup := func() {
		if history != nil {
			_ = history.Close()
		}
	}
	return orchestrator.NewCompareOrchestrator(a.cfg, tasks, images, rep, history, a.logger), cleanup, nil
}
