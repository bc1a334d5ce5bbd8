package cmd

import (
	"time"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/llm"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/pipeline"
	"github.com/datachat-labs/datachat/internal/storage"
)

// openStore creates the analytical store from the active configuration
func openStore(cfg *config.Config) (storage.Store, error) {
	store, err := storage.NewDuckDBStore(cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to open database")
	}

	return store, nil
}

// newLLMService creates the language model client from the active configuration
func newLLMService(cfg *config.Config) (llm.Service, error) {
	client, err := llm.NewClient(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to configure language model client")
	}

	if timeout, err := time.ParseDuration(cfg.LLM.Timeout); err == nil && timeout > 0 {
		client.SetTimeout(timeout)
	}

	return client, nil
}

// newDataAssistant wires the question-answering pipeline over a store. The
// catalog provider is returned alongside so callers can rebuild the snapshot
// after ingesting new data.
func newDataAssistant(store storage.Store, service llm.Service, log *logging.Logger) (*pipeline.DataAssistant, *catalog.Provider) {
	generator := pipeline.NewGenerator(service, log)
	executor := pipeline.NewExecutor(store, pipeline.NewDuckDBClassifier(), log)
	synthesizer := pipeline.NewSynthesizer(service, log)
	resolver := pipeline.NewResolver(generator, executor, synthesizer, log)
	provider := catalog.NewProvider(store)

	return pipeline.NewDataAssistant(resolver, provider), provider
}
