package testutil

import (
	"context"
	"testing"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/storage"
)

// NewTestLogger creates a logger suitable for tests
func NewTestLogger() *logging.Logger {
	logger, err := logging.NewLogger(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		panic(err)
	}

	return logger
}

// NewMemoryStore creates an in-memory analytical store and registers cleanup
func NewMemoryStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := storage.NewMemoryStore()
	if err != nil {
		t.Fatalf("failed to create in-memory store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedCompanies creates and populates a company table with a small fixture
func SeedCompanies(t *testing.T, store storage.Store) {
	t.Helper()

	ctx := context.Background()

	stmts := []string{
		`CREATE TABLE company (rank INTEGER, company VARCHAR, industry VARCHAR, revenue DOUBLE, number_of_employees BIGINT)`,
		`INSERT INTO company VALUES
			(1, 'Walmart', 'Retail', 611289.0, 2100000),
			(2, 'Amazon', 'Retail', 513983.0, 1541000),
			(3, 'Exxon Mobil', 'Energy', 413680.0, 62000)`,
	}

	for _, stmt := range stmts {
		if err := store.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}
}

// BuildCatalog introspects the store and returns the resulting catalog
func BuildCatalog(t *testing.T, store storage.Store) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	return cat
}
