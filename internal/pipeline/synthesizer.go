package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/llm"
	"github.com/datachat-labs/datachat/internal/logging"
	"github.com/datachat-labs/datachat/internal/storage"
)

// maxPromptResultRows caps how many result rows reach the synthesis prompt
const maxPromptResultRows = 50

const synthesizeSystemPrompt = `You answer questions about tabular data.
You are given a question, the SQL statement that was executed to answer it, and the rows it returned.

Rules:
1. Base your answer only on the returned rows. Never invent values that are not present in them.
2. Be direct and concise: answer the question, include the actual values and numbers.
3. Do not show SQL, do not describe your reasoning, and do not prefix the answer with phrases like "Based on the data".`

const noResultsText = "No matching rows were found for your question. " +
	"The value you asked about may be spelled or capitalized differently in the data, " +
	"the question may be aimed at a different table, or the data may simply not contain it."

// Synthesizer turns a question, statement, and execution outcome into a
// natural-language answer. It never re-executes SQL.
type Synthesizer struct {
	llm llm.Service
	log *logging.Logger
}

// NewSynthesizer creates a new answer synthesizer
func NewSynthesizer(service llm.Service, log *logging.Logger) *Synthesizer {
	return &Synthesizer{llm: service, log: log}
}

// Synthesize produces the answer text for an outcome. Zero-row and failure
// outcomes are answered deterministically; only non-empty results go back
// to the model. A model-call failure propagates to the caller.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, stmt GeneratedStatement, outcome ExecutionOutcome) (string, error) {
	if !outcome.Succeeded() {
		return s.explainFailure(outcome.Failure), nil
	}

	if outcome.RowCount() == 0 {
		return noResultsText, nil
	}

	userPrompt := fmt.Sprintf("Question: %s\n\nSQL executed:\n%s\n\nReturned rows:\n%s",
		question, stmt.SQL, FormatResult(outcome.Rows))

	answer, err := s.llm.Complete(ctx, synthesizeSystemPrompt, userPrompt)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeSynthesis, "model call failed")
	}

	return strings.TrimSpace(answer), nil
}

// explainFailure renders a user-safe message naming the failure kind in
// plain language. The raw store error stays in the logs for operators and
// is never echoed into the chat surface.
func (s *Synthesizer) explainFailure(failure *Failure) string {
	s.log.WithFields(map[string]interface{}{
		"kind":   string(failure.Kind),
		"detail": failure.Detail,
	}).Error("query execution failed")

	switch failure.Kind {
	case FailureMissingTable:
		msg := "I couldn't answer that: the question refers to a table that doesn't exist."
		if len(failure.KnownTables) > 0 {
			msg += " The available tables are: " + strings.Join(failure.KnownTables, ", ") + "."
		}

		return msg
	case FailureMissingColumn:
		return "I couldn't answer that: the question refers to a column that doesn't exist in the data."
	case FailureSyntax:
		return "I couldn't answer that: the query I built wasn't valid SQL. Try rephrasing the question."
	default:
		return "I couldn't answer that because the query failed to run. Try rephrasing the question."
	}
}

// FormatResult renders a result set for the synthesis prompt: a column
// header followed by pipe-separated rows, truncated past maxPromptResultRows.
func FormatResult(rows *storage.ResultSet) string {
	if rows == nil || rows.Count == 0 {
		return "Query returned no results."
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(rows.Columns, ", ")))
	sb.WriteString(fmt.Sprintf("Rows (%d total):\n", rows.Count))

	display := rows.Count
	if display > maxPromptResultRows {
		display = maxPromptResultRows
	}

	for i := 0; i < display; i++ {
		values := make([]string, len(rows.Columns))
		for j, col := range rows.Columns {
			values[j] = formatValue(rows.Rows[i][col])
		}

		sb.WriteString(strings.Join(values, " | ") + "\n")
	}

	if rows.Count > display {
		sb.WriteString(fmt.Sprintf("... and %d more rows\n", rows.Count-display))
	}

	return sb.String()
}

// formatValue renders a single cell. Floats are rounded so long decimal
// tails don't read like encoded values to the model.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}

		return fmt.Sprintf("%.2f", val)
	case float32:
		return formatValue(float64(val))
	case nil:
		return ""
	default:
		s := fmt.Sprintf("%v", v)
		if len(s) > 100 {
			s = s[:97] + "..."
		}

		return s
	}
}
