package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/logging"
)

// cfg is the active configuration, loaded once before any command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "datachat",
	Short: "Ask natural-language questions about your datasets",
	Long: `datachat loads tabular datasets into a local DuckDB database and answers
natural-language questions about them. Questions are translated to SQL by a
language model, executed locally, and the results are summarized back into
plain language. It can also run as a webhook server that routes chat
messages between the data assistant and an issue-tracker assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration")
		}

		if err := loaded.EnsureDirectories(); err != nil {
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to prepare directories")
		}

		if err := logging.InitializeLogger(loaded.Logging); err != nil {
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to initialize logging")
		}

		cfg = loaded

		return nil
	},
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}
