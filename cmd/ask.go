package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/formatter"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/pipeline"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the loaded datasets",
	Long: `Ask a question about your data in plain language. The question is translated
to a SQL query over the loaded tables, executed locally, and the result is
summarized back into a plain-language answer, followed by the SQL statement
that produced it and the raw result rows.

Examples:
  datachat ask "how many employees does Walmart have?"
  datachat ask "which industry has the highest total revenue?"
  datachat ask "top 5 companies by revenue"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return errors.New(errors.ErrTypeValidation, "question cannot be empty")
	}

	requestID := uuid.New().String()
	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"question":   question,
	}).Info("processing question")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := newLLMService(cfg)
	if err != nil {
		return err
	}

	assistant, provider := newDataAssistant(store, service, logger)

	if _, err := provider.Rebuild(ctx); err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to read table schemas")
	}

	if !assistant.Initialized() {
		return errors.New(errors.ErrTypeValidation,
			"no tables loaded yet; use 'datachat load' to ingest datasets first")
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " Thinking..."
	spin.Start()

	answer := assistant.Ask(ctx, question)

	spin.Stop()

	printAnswer(os.Stdout, answer)

	return nil
}

// printAnswer writes the answer followed by its audit trail: the SQL
// statement that produced it and the raw result rows, when present.
func printAnswer(w io.Writer, answer pipeline.Answer) {
	fmt.Fprintln(w, answer.Text)

	if answer.StatementUsed != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SQL:", answer.StatementUsed)
	}

	if answer.Outcome.Succeeded() && answer.Outcome.RowCount() > 0 {
		fmt.Fprintln(w)
		formatter.NewFormatter().WriteResultSet(w, answer.Outcome.Rows)
	}
}
