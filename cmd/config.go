package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/errors"
)

var configSave bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the active configuration",
	Long: `Show the current active configuration merged from defaults, the config
file, and environment variables. Secrets are masked. With --save, the merged
configuration is written back to the config file.`,
	Args: cobra.NoArgs,
	RunE: runConfigCmd,
}

func init() {
	configCmd.Flags().BoolVar(&configSave, "save", false, "Write the merged configuration to the config file")

	rootCmd.AddCommand(configCmd)
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	writeConfigSummary(os.Stdout, cfg)

	if configSave {
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		fmt.Println("\nConfiguration saved.")
	}

	return nil
}

func writeConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Active configuration:")

	fmt.Fprintln(w, "\nDatabase:")
	fmt.Fprintf(w, "  Path: %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "  Max Connections: %d\n", cfg.Database.MaxConnections)
	fmt.Fprintf(w, "  Query Timeout: %s\n", cfg.Database.QueryTimeout)

	fmt.Fprintln(w, "\nLLM:")
	fmt.Fprintf(w, "  Provider: %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  Model: %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  API Key: %s\n", maskSecret(cfg.LLM.APIKey))

	if cfg.LLM.BaseURL != "" {
		fmt.Fprintf(w, "  Base URL: %s\n", cfg.LLM.BaseURL)
	}

	fmt.Fprintf(w, "  Timeout: %s\n", cfg.LLM.Timeout)

	fmt.Fprintln(w, "\nServer:")
	fmt.Fprintf(w, "  Host: %s\n", cfg.Server.Host)
	fmt.Fprintf(w, "  Port: %d\n", cfg.Server.Port)

	fmt.Fprintln(w, "\nTracker:")

	if cfg.Tracker.Owner != "" && cfg.Tracker.Repo != "" {
		fmt.Fprintf(w, "  Repository: %s/%s\n", cfg.Tracker.Owner, cfg.Tracker.Repo)
		fmt.Fprintf(w, "  Max Issues: %d\n", cfg.Tracker.MaxIssues)
	} else {
		fmt.Fprintln(w, "  (not configured)")
	}

	fmt.Fprintln(w, "\nMessaging:")
	fmt.Fprintf(w, "  Slack Token: %s\n", maskSecret(cfg.Messaging.SlackToken))

	if cfg.Messaging.DefaultChannel != "" {
		fmt.Fprintf(w, "  Default Channel: %s\n", cfg.Messaging.DefaultChannel)
	}

	fmt.Fprintln(w, "\nLogging:")
	fmt.Fprintf(w, "  Level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Fprintf(w, "  File: %s\n", cfg.Logging.File)
	}
}

// maskSecret hides all but the last four characters of a credential
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}

	if len(s) <= 4 {
		return "****"
	}

	return "****" + s[len(s)-4:]
}
