package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/messaging"
	"github.com/datachat-labs/datachat/internal/router"
	"github.com/datachat-labs/datachat/internal/server"
	"github.com/datachat-labs/datachat/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long: `Run the webhook server that receives chat messages and routes them to the
data assistant or, for ticket-related questions, the issue-tracker
assistant. Replies go out through the configured Slack channel when a
token is set, otherwise in the HTTP response body.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := newLLMService(cfg)
	if err != nil {
		return err
	}

	dataAssistant, provider := newDataAssistant(store, service, logger)

	cat, err := provider.Rebuild(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to read table schemas")
	}

	if len(cat.Tables) == 0 {
		logger.Warn("no tables loaded; data questions will be declined until datasets are ingested")
	} else {
		logger.WithField("tables", len(cat.Tables)).Info("catalog ready")
	}

	assistants := map[router.Intent]router.Assistant{
		router.IntentData: dataAssistant,
	}

	if cfg.Tracker.Owner != "" && cfg.Tracker.Repo != "" {
		trackerClient := tracker.NewClient(cfg.Tracker, service, logger)
		assistants[router.IntentIssueTracker] = trackerClient

		if trackerClient.Initialized() {
			if status, err := trackerClient.Verify(ctx); err != nil {
				logger.WithError(err).Warn("issue tracker verification failed")
			} else {
				logger.Info(status)
			}
		}
	}

	var sender messaging.Sender

	if cfg.Messaging.SlackToken != "" {
		slackSender, err := messaging.NewSlackSender(cfg.Messaging.SlackToken, logger)
		if err != nil {
			return err
		}

		sender = slackSender
	}

	rt := router.New(assistants, logger)
	srv := server.New(cfg.Server, rt, sender, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, errors.ErrTypeNetwork, "server failed")
		}

		return nil
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")

		if err := srv.Shutdown(context.Background()); err != nil {
			return errors.Wrap(err, errors.ErrTypeNetwork, "shutdown failed")
		}

		return nil
	}
}
