// Package ingest loads datasets into the analytical store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/storage"
)

// invalidTableChars matches characters not allowed in derived table names
var invalidTableChars = regexp.MustCompile(`[^a-z0-9_]`)

// LoadResult describes one loaded dataset
type LoadResult struct {
	Table string
	File  string
	Rows  int
}

// Loader ingests CSV files into the store
type Loader struct {
	store storage.Store
	log   *logging.Logger
}

// NewLoader creates a CSV loader over a store
func NewLoader(store storage.Store, log *logging.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// LoadDir ingests every .csv file in dir, one table per file. Table names
// derive from file names; an existing table of the same name is replaced,
// so reloading a directory is idempotent.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeIngest, "failed to read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		files = append(files, entry.Name())
	}

	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrTypeIngest, "no CSV files found in %s", dir)
	}

	sort.Strings(files)

	results := make([]LoadResult, 0, len(files))

	for _, name := range files {
		result, err := l.LoadFile(ctx, filepath.Join(dir, name))
		if err != nil {
			return results, err
		}

		results = append(results, *result)
	}

	return results, nil
}

// LoadFile ingests a single CSV file into a table named after it
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	table := TableName(path)
	if table == "" {
		return nil, errors.Newf(errors.ErrTypeIngest, "cannot derive table name from %s", path)
	}

	// read_csv_auto infers column names and types from the file itself
	createSQL := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(%s)",
		storage.QuoteIdentifier(table), quoteLiteral(path),
	)

	if err := l.store.Exec(ctx, createSQL); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeIngest, "failed to load %s", path)
	}

	rows, err := l.countRows(ctx, table)
	if err != nil {
		return nil, err
	}

	l.log.WithFields(map[string]interface{}{
		"table": table,
		"file":  path,
		"rows":  rows,
	}).Info("loaded dataset")

	return &LoadResult{Table: table, File: path, Rows: rows}, nil
}

func (l *Loader) countRows(ctx context.Context, table string) (int, error) {
	rs, err := l.store.Query(ctx, fmt.Sprintf("SELECT count(*) AS n FROM %s", storage.QuoteIdentifier(table)))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrTypeIngest, "failed to count rows of %s", table)
	}

	if rs.Count == 0 {
		return 0, nil
	}

	switch v := rs.Rows[0]["n"].(type) {
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, nil
	}
}

// TableName derives a table name from a file path: the base name without
// extension, lowered, with spaces and dashes folded to underscores and any
// remaining invalid characters stripped.
func TableName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = invalidTableChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "_")

	return name
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
