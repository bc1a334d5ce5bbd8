package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/datachat-labs/datachat/internal/config"
)

// DuckDBStore implements the Store interface using DuckDB
type DuckDBStore struct {
	db   *sql.DB
	path string
}

// NewDuckDBStore opens a DuckDB database with connection pooling configured
// from cfg. Connections are short-lived and scoped to single statements;
// no transaction is held across pipeline stages.
func NewDuckDBStore(cfg config.DatabaseConfig) (*DuckDBStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(lifetime)
	}

	if idle, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		db.SetConnMaxIdleTime(idle)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DuckDBStore{db: db, path: cfg.Path}, nil
}

// NewMemoryStore opens an in-memory DuckDB database, used by tests and
// one-shot invocations that load CSVs on the fly.
func NewMemoryStore() (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DuckDBStore{db: db}, nil
}

// Query executes a SQL statement and normalizes the rows. Values are scanned
// generically because the statement shape is not known ahead of time.
func (s *DuckDBStore) Query(ctx context.Context, sqlText string) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &ResultSet{Columns: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}

		result.Rows = append(result.Rows, record)
	}

	result.Count = len(result.Rows)

	return result, rows.Err()
}

// Exec runs a statement for its side effects
func (s *DuckDBStore) Exec(ctx context.Context, sqlText string, args ...interface{}) error {
	_, err := s.db.ExecContext(ctx, sqlText, args...)
	return err
}

// ListTables returns the names of all user tables in the main schema
func (s *DuckDBStore) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Columns returns the column descriptors of a table in declaration order
func (s *DuckDBStore) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	var columns []ColumnInfo

	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// Sample returns up to limit rows of a table
func (s *DuckDBStore) Sample(ctx context.Context, table string, limit int) (*ResultSet, error) {
	return s.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", QuoteIdentifier(table), limit))
}

// Close closes the underlying connection pool
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// QuoteIdentifier quotes a table or column name for safe interpolation
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// normalizeValue converts driver-specific values into plain Go types.
// Byte slices become strings so answers and logs stay readable.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}

	return v
}
