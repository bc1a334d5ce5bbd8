package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/ingest"
	"github.com/datachat-labs/datachat/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Load CSV datasets into the local database",
	Long: `Load CSV files into the local DuckDB database, one table per file.
The path may be a single .csv file or a directory; for a directory every
.csv file in it is loaded. Table names derive from file names, and
reloading a file replaces its table.

Examples:
  datachat load ./data
  datachat load ./data/companies.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()

	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTypeIngest, "cannot access %s", path)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	loader := ingest.NewLoader(store, logger)

	var results []ingest.LoadResult

	if info.IsDir() {
		results, err = loader.LoadDir(ctx, path)
	} else {
		var result *ingest.LoadResult
		if result, err = loader.LoadFile(ctx, path); result != nil {
			results = append(results, *result)
		}
	}

	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("Loaded %s into table %q (%d rows)\n", r.File, r.Table, r.Rows)
	}

	fmt.Printf("\n%d table(s) ready. Try: datachat ask \"<your question>\"\n", len(results))

	return nil
}
