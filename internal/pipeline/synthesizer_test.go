package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/storage"
	"github.com/datachat-labs/datachat/internal/testutil"
)

func TestSynthesizer_Synthesize_NonEmptyResult(t *testing.T) {
	mock := testutil.NewMockLLM(testutil.WithResponses("Walmart has 2,100,000 employees."))
	syn := NewSynthesizer(mock, testutil.NewTestLogger())

	rows := &storage.ResultSet{
		Columns: []string{"company", "number_of_employees"},
		Rows: []map[string]interface{}{
			{"company": "Walmart", "number_of_employees": int64(2100000)},
		},
		Count: 1,
	}

	stmt := GeneratedStatement{SQL: "SELECT company, number_of_employees FROM company WHERE rank = 1"}

	answer, err := syn.Synthesize(context.Background(), "how many employees does Walmart have?", stmt, ExecutionOutcome{Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, "Walmart has 2,100,000 employees.", answer)

	// The prompt grounds the model in the actual rows and statement
	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].UserPrompt, "Walmart")
	assert.Contains(t, mock.Calls[0].UserPrompt, stmt.SQL)
}

func TestSynthesizer_Synthesize_ZeroRows(t *testing.T) {
	mock := testutil.NewMockLLM()
	syn := NewSynthesizer(mock, testutil.NewTestLogger())

	rows := &storage.ResultSet{Columns: []string{"company"}, Count: 0}

	answer, err := syn.Synthesize(context.Background(), "employees of Wallmart?", GeneratedStatement{SQL: "SELECT 1"}, ExecutionOutcome{Rows: rows})
	require.NoError(t, err)

	// Deterministic, no model call
	assert.Equal(t, 0, mock.CallCount())
	assert.Contains(t, answer, "No matching rows")
	assert.Contains(t, answer, "spelled or capitalized differently")
}

func TestSynthesizer_Synthesize_Failures(t *testing.T) {
	tests := []struct {
		name     string
		failure  *Failure
		contains []string
		excludes []string
	}{
		{
			name: "missing table lists known tables",
			failure: &Failure{
				Kind:        FailureMissingTable,
				Detail:      `Catalog Error: Table with name employees does not exist!`,
				KnownTables: []string{"company", "city"},
			},
			contains: []string{"table that doesn't exist", "company, city"},
			excludes: []string{"Catalog Error"},
		},
		{
			name:     "missing column",
			failure:  &Failure{Kind: FailureMissingColumn, Detail: `Binder Error: Referenced column "headcount" not found`},
			contains: []string{"column that doesn't exist"},
			excludes: []string{"Binder Error"},
		},
		{
			name:     "syntax",
			failure:  &Failure{Kind: FailureSyntax, Detail: "Parser Error: syntax error"},
			contains: []string{"wasn't valid SQL", "rephrasing"},
			excludes: []string{"Parser Error"},
		},
		{
			name:     "other",
			failure:  &Failure{Kind: FailureOther, Detail: "out of memory"},
			contains: []string{"failed to run"},
			excludes: []string{"out of memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockLLM()
			syn := NewSynthesizer(mock, testutil.NewTestLogger())

			answer, err := syn.Synthesize(context.Background(), "q", GeneratedStatement{}, ExecutionOutcome{Failure: tt.failure})
			require.NoError(t, err)

			// Failure answers are deterministic and never echo raw store errors
			assert.Equal(t, 0, mock.CallCount())

			for _, want := range tt.contains {
				assert.Contains(t, answer, want)
			}

			for _, unwanted := range tt.excludes {
				assert.NotContains(t, answer, unwanted)
			}
		})
	}
}

func TestSynthesizer_Synthesize_ModelError(t *testing.T) {
	mock := testutil.NewMockLLM(testutil.WithLLMError(fmt.Errorf("rate limited")))
	syn := NewSynthesizer(mock, testutil.NewTestLogger())

	rows := &storage.ResultSet{
		Columns: []string{"n"},
		Rows:    []map[string]interface{}{{"n": int64(3)}},
		Count:   1,
	}

	_, err := syn.Synthesize(context.Background(), "q", GeneratedStatement{SQL: "SELECT 1"}, ExecutionOutcome{Rows: rows})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSynthesis))
}

func TestFormatResult_TruncatesLongResults(t *testing.T) {
	rs := &storage.ResultSet{Columns: []string{"n"}, Count: 120}
	for i := 0; i < 120; i++ {
		rs.Rows = append(rs.Rows, map[string]interface{}{"n": int64(i)})
	}

	rendered := FormatResult(rs)

	assert.Contains(t, rendered, "Rows (120 total):")
	assert.Contains(t, rendered, "... and 70 more rows")
}
