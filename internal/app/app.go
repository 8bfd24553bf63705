// Package app wires configuration, clients, storage, and services into a
// running application. It is the composition root used by both binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/giftscan/internal/analyzer"
	"github.com/bobmcallan/giftscan/internal/clients/telegram"
	"github.com/bobmcallan/giftscan/internal/clients/yahoo"
	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/services/runner"
	"github.com/bobmcallan/giftscan/internal/services/scheduler"
	"github.com/bobmcallan/giftscan/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	SymbolStore interfaces.SymbolStore
	QuoteClient interfaces.QuoteClient
	Notifier    interfaces.Notifier
	Runner      *runner.Service
	Scheduler   *scheduler.Service
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// New initializes the application from a config file path. An empty path
// falls back to GIFTSCAN_CONFIG, then giftscan.toml next to the binary, then
// config/giftscan.toml.
func New(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("GIFTSCAN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "giftscan.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/giftscan.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	symbolStore, err := storage.NewSymbolStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize symbol store: %w", err)
	}

	quoteClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithMarketSuffix(config.Clients.Yahoo.MarketSuffix),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	if config.Clients.Telegram.BotToken == "" {
		logger.Warn().Msg("Telegram bot token not configured - report delivery will fail")
	}
	notifier := telegram.NewClient(config.Clients.Telegram.BotToken,
		telegram.WithBaseURL(config.Clients.Telegram.BaseURL),
		telegram.WithRateLimit(config.Clients.Telegram.RateLimit),
		telegram.WithTimeout(config.Clients.Telegram.GetTimeout()),
		telegram.WithLogger(logger),
	)

	// Each run gets a fresh analyzer bound to its destination and filter.
	factory := runner.AnalyzerFactory(func(chatID string, onlyDiscounted bool) interfaces.StockAnalyzer {
		return analyzer.New(
			quoteClient,
			analyzer.NewStandardCalculator(),
			analyzer.NewFundamentalMarketEvaluator(),
			notifier,
			logger,
			analyzer.Options{
				ChatID:         chatID,
				OnlyDiscounted: onlyDiscounted,
				Delivery:       config.Report.Delivery,
				BatchSize:      config.Report.GetBatchSize(),
			},
		)
	})

	runService := runner.NewService(factory, logger, config.Report.GetQueueSize())
	schedService := scheduler.NewService(symbolStore, runService, logger, config.Scheduler)

	return &App{
		Config:      config,
		Logger:      logger,
		SymbolStore: symbolStore,
		QuoteClient: quoteClient,
		Notifier:    notifier,
		Runner:      runService,
		Scheduler:   schedService,
		StartupTime: time.Now(),
	}, nil
}

// Start launches the background services.
func (a *App) Start() error {
	a.Runner.Start()
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close stops background services and releases the symbol store.
func (a *App) Close() {
	a.Scheduler.Stop()
	a.Runner.Stop()
	if err := a.SymbolStore.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close symbol store")
	}
}
