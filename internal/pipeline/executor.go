package pipeline

import (
	"context"

	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/storage"
)

// Executor runs generated statements against the relational store as a pure
// read path and classifies failures. It never retries a statement; retry,
// if any, is a regeneration decision one layer up.
type Executor struct {
	store      storage.Store
	classifier FailureClassifier
	log        *logging.Logger
}

// NewExecutor creates a new SQL executor
func NewExecutor(store storage.Store, classifier FailureClassifier, log *logging.Logger) *Executor {
	return &Executor{store: store, classifier: classifier, log: log}
}

// Execute runs the statement and returns its outcome. Rows are returned in
// store order with no implicit LIMIT. On failure the error text is kept
// verbatim in the Failure detail; a missing-table failure additionally
// carries the store's known table names so the synthesizer can suggest the
// closest match.
func (e *Executor) Execute(ctx context.Context, stmt GeneratedStatement) ExecutionOutcome {
	rows, err := e.store.Query(ctx, stmt.SQL)
	if err == nil {
		e.log.WithFields(map[string]interface{}{
			"sql":  stmt.SQL,
			"rows": rows.Count,
		}).Debug("statement executed")

		return ExecutionOutcome{Rows: rows}
	}

	failure := &Failure{
		Kind:   e.classifier.Classify(err),
		Detail: err.Error(),
	}

	if failure.Kind == FailureMissingTable {
		if tables, listErr := e.store.ListTables(ctx); listErr == nil {
			failure.KnownTables = tables
		} else {
			e.log.WithError(listErr).Warn("failed to list known tables")
		}
	}

	e.log.WithFields(map[string]interface{}{
		"sql":  stmt.SQL,
		"kind": string(failure.Kind),
	}).WithError(err).Debug("statement failed")

	return ExecutionOutcome{Failure: failure}
}
