package pipeline

import (
	"strings"
)

// FailureClassifier maps a store error onto a FailureKind. Matching rules
// are backend-specific, so the classifier is swappable per store.
type FailureClassifier interface {
	Classify(err error) FailureKind
}

// DuckDBClassifier classifies failures by matching DuckDB error text. It
// also recognizes the generic SQLite-style messages so datasets migrated
// from other embedded stores classify the same way.
type DuckDBClassifier struct{}

// NewDuckDBClassifier creates a classifier for DuckDB error messages
func NewDuckDBClassifier() *DuckDBClassifier {
	return &DuckDBClassifier{}
}

// Classify inspects the error text and returns the failure kind
func (c *DuckDBClassifier) Classify(err error) FailureKind {
	if err == nil {
		return FailureOther
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "table") && strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "no such table"):
		return FailureMissingTable
	case strings.Contains(msg, "referenced column") && strings.Contains(msg, "not found"),
		strings.Contains(msg, "column") && strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "no such column"):
		return FailureMissingColumn
	case strings.Contains(msg, "parser error"),
		strings.Contains(msg, "syntax error"):
		return FailureSyntax
	default:
		return FailureOther
	}
}
