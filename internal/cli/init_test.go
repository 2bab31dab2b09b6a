package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/log"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                 "8081",
		DataBackend:          "file",
		DataFilePath:         filepath.Join(t.TempDir(), "budget.json"),
		StorageKey:           "budgetTrackerData",
		TaxEnabled:           true,
		AgeBracket:           string(core.From65To74),
		TaxCacheSize:         16,
		TaxCacheTTL:          time.Minute,
		CacheCleanupInterval: time.Minute,
		RateLimitPerMinute:   60,
		LogLevel:             "info",
	}
}

func TestBootstrap_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := Bootstrap(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if got := app.Service.Snapshot().Salary.AgeBracket; got != core.From65To74 {
		t.Errorf("default age bracket = %q, want %q", got, core.From65To74)
	}
	if _, err := app.Service.AddExpense(ctx, core.Expense{Name: "Rent", Amount: 100, Category: core.Housing}); err != nil {
		t.Fatal(err)
	}
	released := false
	release := app.cleanup
	app.cleanup = func() error {
		released = true
		return release()
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !released {
		t.Error("Close() did not release the store")
	}

	app, err = Bootstrap(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	defer app.Close()
	if snap := app.Service.Snapshot(); len(snap.Expenses) != 1 || snap.TotalExpenses != 100 {
		t.Errorf("reloaded snapshot = %+v", snap)
	}
}

func TestBootstrap_TaxTableFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataBackend = "memory"
	cfg.TaxTableFile = filepath.Join(t.TempDir(), "tax.toml")
	if err := os.WriteFile(cfg.TaxTableFile, []byte("uif_cap = 200.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(context.Background(), cfg, log.Discard())
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer app.Close()
	if app.Table.UIFCap != 200 {
		t.Errorf("UIFCap = %v, want 200", app.Table.UIFCap)
	}

	cfg.TaxTableFile = filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(cfg.TaxTableFile, []byte("brackets = ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Bootstrap(context.Background(), cfg, log.Discard()); err == nil {
		t.Error("Bootstrap() with a malformed tax table should fail")
	}
}

func TestBootstrap_InvalidBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataBackend = "postgres"
	if _, err := Bootstrap(context.Background(), cfg, log.Discard()); err == nil {
		t.Error("Bootstrap() with unknown backend should fail")
	}
}
