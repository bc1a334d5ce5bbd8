package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/storage"
	"github.com/datachat-labs/datachat/internal/testutil"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare statement unchanged",
			input:    "SELECT * FROM company",
			expected: "SELECT * FROM company",
		},
		{
			name:     "fenced with language tag",
			input:    "```sql\nSELECT * FROM company\n```",
			expected: "SELECT * FROM company",
		},
		{
			name:     "fenced without language tag",
			input:    "```\nSELECT * FROM company\n```",
			expected: "SELECT * FROM company",
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```sql\nSELECT 1\n```\n  ",
			expected: "SELECT 1",
		},
		{
			name:     "multiline statement",
			input:    "```sql\nSELECT company\nFROM company\nWHERE rank = 1\n```",
			expected: "SELECT company\nFROM company\nWHERE rank = 1",
		},
		{
			name:     "single line fence",
			input:    "```sql SELECT 1```",
			expected: "SELECT 1",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	inputs := []string{
		"```sql\nSELECT * FROM company\n```",
		"SELECT * FROM company",
		"```\nSELECT 1\n```",
	}

	for _, input := range inputs {
		once := StripFences(input)
		assert.Equal(t, once, StripFences(once), "input: %q", input)
	}
}

func TestSchemaSummary(t *testing.T) {
	cat := &catalog.Catalog{Tables: []catalog.TableSchema{
		{
			Name: "company",
			Columns: []storage.ColumnInfo{
				{Name: "rank", Type: "INTEGER"},
				{Name: "company", Type: "VARCHAR"},
			},
			SampleRows: [][]interface{}{
				{1, "Walmart"},
				{2, "Amazon"},
				{3, "Exxon Mobil"},
				{4, "Apple"},
			},
		},
		{
			Name: "city",
			Columns: []storage.ColumnInfo{
				{Name: "name", Type: "VARCHAR"},
			},
		},
	}}

	summary := SchemaSummary(cat)

	assert.Contains(t, summary, "Table: company")
	assert.Contains(t, summary, "rank (INTEGER)")
	assert.Contains(t, summary, "company (VARCHAR)")
	assert.Contains(t, summary, "Table: city")
	assert.Contains(t, summary, "1 | Walmart")

	// Sample rows past the prompt cap stay out
	assert.NotContains(t, summary, "Apple")
}

func TestGenerator_Generate(t *testing.T) {
	mock := testutil.NewMockLLM(testutil.WithResponses("```sql\nSELECT count(*) FROM company\n```"))
	gen := NewGenerator(mock, testutil.NewTestLogger())

	cat := &catalog.Catalog{Tables: []catalog.TableSchema{{Name: "company"}}}

	stmt, err := gen.Generate(context.Background(), "how many companies are there?", cat)
	require.NoError(t, err)

	assert.Equal(t, "SELECT count(*) FROM company", stmt.SQL)
	assert.Equal(t, "```sql\nSELECT count(*) FROM company\n```", stmt.Raw)

	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].UserPrompt, "Table: company")
	assert.Contains(t, mock.Calls[0].UserPrompt, "how many companies are there?")
}

func TestGenerator_Generate_ModelError(t *testing.T) {
	mock := testutil.NewMockLLM(testutil.WithLLMError(fmt.Errorf("connection refused")))
	gen := NewGenerator(mock, testutil.NewTestLogger())

	_, err := gen.Generate(context.Background(), "anything", &catalog.Catalog{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeGeneration))
}
