package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/formatter"
	"github.com/datachat-labs/datachat/internal/storage"
)

var tablesVerbose bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the loaded tables",
	Long:  `List the tables in the local database. With --verbose, show each table's columns and types.`,
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

func init() {
	tablesCmd.Flags().BoolVarP(&tablesVerbose, "verbose", "v", false, "Show columns and types per table")

	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.ListTables(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to list tables")
	}

	entries := make([]formatter.TableEntry, 0, len(names))

	for _, name := range names {
		cols, err := store.Columns(ctx, name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to describe table %s", name)
		}

		rows, err := countTableRows(ctx, store, name)
		if err != nil {
			return err
		}

		entries = append(entries, formatter.TableEntry{Name: name, Columns: cols, Rows: rows})
	}

	formatter.NewFormatter().WriteTableList(os.Stdout, entries, tablesVerbose)

	return nil
}

func countTableRows(ctx context.Context, store storage.Store, table string) (int, error) {
	rs, err := store.Query(ctx, fmt.Sprintf("SELECT count(*) AS n FROM %s", storage.QuoteIdentifier(table)))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrTypeDatabase, "failed to count rows of %s", table)
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
