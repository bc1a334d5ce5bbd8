// Package pipeline implements the query-resolution pipeline: schema-grounded
// SQL generation, execution with failure classification, and answer
// synthesis, orchestrated per question by the Resolver.
package pipeline

import (
	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/storage"
)

// QueryRequest is one incoming question paired with the catalog snapshot it
// will be answered against. Owned exclusively by a single pipeline run.
type QueryRequest struct {
	Question string           `json:"question"`
	Catalog  *catalog.Catalog `json:"-"`
}

// GeneratedStatement is a candidate SQL statement. Raw preserves the model
// output before fence stripping; SQL is the cleaned statement handed to the
// executor.
type GeneratedStatement struct {
	Raw string `json:"raw"`
	SQL string `json:"sql"`
}

// FailureKind classifies why a statement failed to execute
type FailureKind string

const (
	FailureMissingTable  FailureKind = "missing_table"
	FailureMissingColumn FailureKind = "missing_column"
	FailureSyntax        FailureKind = "syntax"
	FailureOther         FailureKind = "other"
)

// Failure carries a classified execution failure. Detail preserves the
// store's error text verbatim for the synthesizer to reason about.
type Failure struct {
	Kind        FailureKind `json:"kind"`
	Detail      string      `json:"detail"`
	KnownTables []string    `json:"known_tables,omitempty"`
}

// ExecutionOutcome is the result of executing one statement: either a
// normalized result set or a classified failure, never both.
type ExecutionOutcome struct {
	Rows    *storage.ResultSet `json:"rows,omitempty"`
	Failure *Failure           `json:"failure,omitempty"`
}

// Succeeded reports whether execution produced a result set
func (o ExecutionOutcome) Succeeded() bool {
	return o.Failure == nil
}

// RowCount returns the number of returned rows, zero on failure
func (o ExecutionOutcome) RowCount() int {
	if o.Rows == nil {
		return 0
	}

	return o.Rows.Count
}

// Answer is the unit returned to the caller. StatementUsed is always the
// exact statement whose execution produced Outcome; it is shown in the UI
// for auditability, never hidden.
type Answer struct {
	Text          string           `json:"text"`
	StatementUsed string           `json:"statement_used"`
	Outcome       ExecutionOutcome `json:"outcome"`
}
