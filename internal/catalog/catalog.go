// Package catalog holds immutable snapshots of the schemas of all loaded
// datasets. A snapshot is rebuilt wholesale after each ingestion cycle and
// handed read-only to every pipeline run.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/datachat-labs/datachat/internal/storage"
)

// MaxSampleRows caps how many rows are captured per table at catalog build time
const MaxSampleRows = 5

// TableSchema is an immutable snapshot of one loaded dataset. Identity is
// the table name, unique within a catalog.
type TableSchema struct {
	Name       string               `json:"name"`
	Columns    []storage.ColumnInfo `json:"columns"`
	SampleRows [][]interface{}      `json:"sample_rows"`
}

// ColumnNames returns the column names in declaration order
func (t TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}

	return names
}

// HasColumns reports whether the table declares every named column
func (t TableSchema) HasColumns(names ...string) bool {
	declared := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		declared[strings.ToLower(col.Name)] = true
	}

	for _, name := range names {
		if !declared[strings.ToLower(name)] {
			return false
		}
	}

	return true
}

// Catalog is an ordered collection of table schemas, insertion order being
// dataset discovery order.
type Catalog struct {
	Tables []TableSchema `json:"tables"`
}

// TableNames returns all table names in catalog order
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}

	return names
}

// FindTable returns the schema of the named table, if present
func (c *Catalog) FindTable(name string) (TableSchema, bool) {
	for _, t := range c.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}

	return TableSchema{}, false
}

// FindTableWithColumns returns the first table declaring every named column
func (c *Catalog) FindTableWithColumns(names ...string) (TableSchema, bool) {
	for _, t := range c.Tables {
		if t.HasColumns(names...) {
			return t, true
		}
	}

	return TableSchema{}, false
}

// Build introspects the store and produces a fresh catalog snapshot
func Build(ctx context.Context, store storage.Store) (*Catalog, error) {
	tables, err := store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	c := &Catalog{}

	for _, name := range tables {
		columns, err := store.Columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}

		sample, err := store.Sample(ctx, name, MaxSampleRows)
		if err != nil {
			return nil, fmt.Errorf("failed to sample %s: %w", name, err)
		}

		schema := TableSchema{Name: name, Columns: columns}

		// Re-project sample rows into declaration order tuples
		for _, row := range sample.Rows {
			tuple := make([]interface{}, len(columns))
			for i, col := range columns {
				tuple[i] = row[col.Name]
			}

			schema.SampleRows = append(schema.SampleRows, tuple)
		}

		c.Tables = append(c.Tables, schema)
	}

	return c, nil
}

// Provider publishes catalog snapshots atomically. In-flight requests keep
// the snapshot they were handed; Rebuild swaps in a new one without
// interleaving with readers.
type Provider struct {
	store   storage.Store
	current atomic.Pointer[Catalog]
}

// NewProvider creates a provider over the given store without building a
// snapshot; call Rebuild before serving requests.
func NewProvider(store storage.Store) *Provider {
	p := &Provider{store: store}
	p.current.Store(&Catalog{})

	return p
}

// Rebuild introspects the store and atomically publishes the new snapshot
func (p *Provider) Rebuild(ctx context.Context) (*Catalog, error) {
	c, err := Build(ctx, p.store)
	if err != nil {
		return nil, err
	}

	p.current.Store(c)

	return c, nil
}

// Snapshot returns the most recently published catalog
func (p *Provider) Snapshot() *Catalog {
	return p.current.Load()
}
