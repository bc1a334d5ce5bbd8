package storage

import (
	"context"
)

// Store defines the interface for relational store operations. The query
// path is read-only and advisory; ingestion is the only writer.
type Store interface {
	// Query executes a SQL statement and returns normalized rows in the
	// order the store produced them. No implicit LIMIT is applied.
	Query(ctx context.Context, sqlText string) (*ResultSet, error)

	// Exec runs a statement for its side effects (ingestion DDL).
	Exec(ctx context.Context, sqlText string, args ...interface{}) error

	// ListTables returns the names of all user tables.
	ListTables(ctx context.Context) ([]string, error)

	// Columns returns the column descriptors of a table in declaration order.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)

	// Sample returns up to limit rows of a table.
	Sample(ctx context.Context, table string, limit int) (*ResultSet, error)

	Close() error
}

// ColumnInfo describes a single table column
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResultSet represents normalized query results. Columns preserves the
// projection order; each row maps column name to scanned value.
type ResultSet struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Count   int                      `json:"count"`
}

// Empty reports whether the result set contains no rows
func (rs *ResultSet) Empty() bool {
	return rs == nil || rs.Count == 0
}
