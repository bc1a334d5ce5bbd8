package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/datachat-labs/datachat/internal/catalog"
	"github.com/datachat-labs/datachat/internal/storage"
)

// Fast paths answer a small set of known-frequent question shapes with
// hand-authored SQL, trading generality for determinism. A fast path that
// finds no rows falls through to the general pipeline instead of reporting
// a false negative.

var (
	employeeCountPattern = regexp.MustCompile(`(?i)how many employees does\s+(.+?)\s+have`)
	companyRankPattern   = regexp.MustCompile(`(?i)(?:which|what).*company.*rank\s+(\d+)`)
)

var englishPrinter = message.NewPrinter(language.English)

// tryFastPath checks the question against the known shapes and, on a match
// with a usable table, executes the hand-authored statement. The boolean
// reports whether a fast-path answer was produced.
func (r *Resolver) tryFastPath(ctx context.Context, question string, cat *catalog.Catalog) (Answer, bool) {
	if m := employeeCountPattern.FindStringSubmatch(question); m != nil {
		if answer, ok := r.employeeCount(ctx, cat, strings.TrimRight(m[1], "?.! ")); ok {
			return answer, true
		}
	}

	if m := companyRankPattern.FindStringSubmatch(question); m != nil {
		if answer, ok := r.companyRank(ctx, cat, m[1]); ok {
			return answer, true
		}
	}

	return Answer{}, false
}

// employeeCount answers "how many employees does X have"
func (r *Resolver) employeeCount(ctx context.Context, cat *catalog.Catalog, company string) (Answer, bool) {
	table, ok := cat.FindTableWithColumns("company", "number_of_employees")
	if !ok {
		return Answer{}, false
	}

	stmt := GeneratedStatement{SQL: fmt.Sprintf(
		"SELECT company, number_of_employees FROM %s WHERE lower(company) = lower(%s)",
		storage.QuoteIdentifier(table.Name), quoteLiteral(company))}

	outcome := r.executor.Execute(ctx, stmt)
	if !outcome.Succeeded() || outcome.RowCount() == 0 {
		return Answer{}, false
	}

	row := outcome.Rows.Rows[0]

	count, ok := toInt64(row["number_of_employees"])
	if !ok {
		return Answer{}, false
	}

	name := fmt.Sprintf("%v", row["company"])
	text := englishPrinter.Sprintf("%s has %d employees.", name, count)

	r.log.WithField("shape", "employee_count").Debug("fast path hit")

	return Answer{Text: text, StatementUsed: stmt.SQL, Outcome: outcome}, true
}

// companyRank answers "which company has rank N"
func (r *Resolver) companyRank(ctx context.Context, cat *catalog.Catalog, rank string) (Answer, bool) {
	table, ok := cat.FindTableWithColumns("company", "rank")
	if !ok {
		return Answer{}, false
	}

	stmt := GeneratedStatement{SQL: fmt.Sprintf(
		"SELECT company FROM %s WHERE rank = %s",
		storage.QuoteIdentifier(table.Name), rank)}

	outcome := r.executor.Execute(ctx, stmt)
	if !outcome.Succeeded() || outcome.RowCount() == 0 {
		return Answer{}, false
	}

	text := fmt.Sprintf("%v", outcome.Rows.Rows[0]["company"])

	r.log.WithField("shape", "company_rank").Debug("fast path hit")

	return Answer{Text: text, StatementUsed: stmt.SQL, Outcome: outcome}, true
}

// quoteLiteral quotes a string literal for interpolation into a
// hand-authored statement
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toInt64 coerces the numeric types the store may hand back
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}
