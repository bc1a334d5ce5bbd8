package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/llm"
	"github.com/datachat-labs/datachat/internal/logging"
)

// maxPromptSampleRows caps how many sample rows per table reach the prompt.
// The catalog holds up to five; three is enough grounding without bloating
// the context.
const maxPromptSampleRows = 3

const generateSystemPrompt = `You are an expert at converting natural language questions into DuckDB SQL queries.
You will be given the schemas of the available tables, with a few sample rows each, and a question.

Rules:
1. Use only tables and columns that appear in the schemas below.
2. When multiple tables exist, pick the table whose columns best match the question.
3. Compare text case-insensitively, e.g. lower(column) = lower('value').
4. When matching names or other free-text values, use LIKE with % wildcards so partial matches are found.
5. Write a single SELECT statement.
6. Respond with the SQL statement only. No prose, no explanation, no markdown.`

// Generator turns a natural-language question plus a catalog snapshot into
// a single SQL statement. It performs no validation of the output; the
// database is the authority on validity.
type Generator struct {
	llm llm.Service
	log *logging.Logger
}

// NewGenerator creates a new SQL generator
func NewGenerator(service llm.Service, log *logging.Logger) *Generator {
	return &Generator{llm: service, log: log}
}

// Generate asks the model for a SQL statement answering the question. A
// model-call failure propagates to the caller; no statement is returned.
func (g *Generator) Generate(ctx context.Context, question string, cat *catalog.Catalog) (GeneratedStatement, error) {
	userPrompt := fmt.Sprintf("%s\nQuestion: %s", SchemaSummary(cat), question)

	raw, err := g.llm.Complete(ctx, generateSystemPrompt, userPrompt)
	if err != nil {
		return GeneratedStatement{}, errors.Wrap(err, errors.ErrTypeGeneration, "model call failed")
	}

	stmt := GeneratedStatement{Raw: raw, SQL: StripFences(raw)}

	g.log.WithField("sql", stmt.SQL).Debug("generated statement")

	return stmt, nil
}

// SchemaSummary renders the catalog as the grounding context for the model:
// per table its name, column list with types, and up to three sample rows.
// No statistics, keys, or relationships are included.
func SchemaSummary(cat *catalog.Catalog) string {
	var sb strings.Builder

	sb.WriteString("Available tables:\n\n")

	for _, table := range cat.Tables {
		sb.WriteString(fmt.Sprintf("Table: %s\n", table.Name))
		sb.WriteString("Columns:\n")

		for _, col := range table.Columns {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", col.Name, col.Type))
		}

		if len(table.SampleRows) > 0 {
			sb.WriteString("Sample rows:\n")

			for i, row := range table.SampleRows {
				if i >= maxPromptSampleRows {
					break
				}

				values := make([]string, len(row))
				for j, v := range row {
					values[j] = fmt.Sprintf("%v", v)
				}

				sb.WriteString("  " + strings.Join(values, " | ") + "\n")
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// StripFences removes markdown code-fence markers and surrounding whitespace
// from a model response. The transform is idempotent: stripping an already
// stripped statement returns it unchanged.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// Drop a language tag like "sql" on the fence line
		if idx := strings.IndexByte(s, '\n'); idx != -1 {
			firstLine := strings.TrimSpace(s[:idx])
			if firstLine == "sql" || firstLine == "" {
				s = s[idx+1:]
			}
		} else {
			s = strings.TrimPrefix(strings.TrimSpace(s), "sql")
		}
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
