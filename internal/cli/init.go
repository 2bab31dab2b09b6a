// Package cli wires configuration, storage, the tax engine and the ledger
// service together for the binaries under cmd/.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budget/internal/backend"
	"budget/internal/cache"
	"budget/internal/config"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/tax"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the given level and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App holds the components shared by the CLI commands and the server.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Service *services.LedgerService
	Table   tax.Table
	Tax     *tax.Cached
	Caches  *cache.Manager

	cleanup backend.CleanupFunc
}

// Bootstrap builds the ledger service from cfg and loads the persisted record.
// Close the returned App to release the store and the AMQP connection.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	table, err := tax.LoadTable(cfg.TaxTableFile)
	if err != nil {
		return nil, fmt.Errorf("load tax table: %w", err)
	}
	calc := tax.NewCached(tax.NewEngine(table), cfg.TaxCacheSize, cfg.TaxCacheTTL)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	var factory backend.Factory = backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	res, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if client := factory.CreatePublisher(bcfg); client != nil {
		publisher = client
	}

	l := ledger.New(calc, res.Store,
		ledger.WithKey(cfg.StorageKey),
		ledger.WithLogger(logger.WithComponent(log.ComponentStorage).Logger),
		ledger.WithTaxEnabled(cfg.TaxEnabled),
		ledger.WithAgeBracket(cfg.AgeBracketValue()),
	)
	svc := services.NewLedgerService(l, calc, res.Store, publisher, logger)
	snap := svc.Load(ctx)

	logger.InfoContext(ctx, "Ledger loaded",
		log.FieldBackend, bcfg.Type.String(),
		"expenses", len(snap.Expenses),
		"incomes", len(snap.Incomes),
		log.FieldBalance, snap.Balance)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Service: svc,
		Table:   table,
		Tax:     calc,
		Caches:  cache.NewManager(calc),
		cleanup: res.Cleanup,
	}, nil
}

// Close stops event publishing and then releases the store.
func (a *App) Close() error {
	var errs []error
	if err := a.Service.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.cleanup != nil {
		if err := a.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("release store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
