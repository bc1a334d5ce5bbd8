// Package formatter renders query results for terminal output.
package formatter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/datachat-labs/datachat/internal/storage"
)

// maxRenderedRows caps how many result rows are rendered in a table
const maxRenderedRows = 50

// Formatter renders result sets and catalog listings
type Formatter struct{}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResultSet renders rows as an aligned table. Rendering stops at
// maxRenderedRows with a note about the remainder.
func (f *Formatter) WriteResultSet(w io.Writer, rs *storage.ResultSet) {
	if rs == nil || rs.Empty() {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(rs.Columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	rendered := 0

	for _, row := range rs.Rows {
		if rendered >= maxRenderedRows {
			break
		}

		cells := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			cells[i] = FormatValue(row[col])
		}

		table.Append(cells)
		rendered++
	}

	table.Render()

	if rs.Count > rendered {
		fmt.Fprintf(w, "(%d more rows not shown)\n", rs.Count-rendered)
	}
}

// WriteTableList renders the table listing, optionally with column details
func (f *Formatter) WriteTableList(w io.Writer, tables []TableEntry, verbose bool) {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables loaded. Use 'datachat load' to ingest datasets.")
		return
	}

	if !verbose {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Table", "Columns", "Rows"})
		table.SetAutoFormatHeaders(false)

		for _, t := range tables {
			table.Append([]string{t.Name, strconv.Itoa(len(t.Columns)), strconv.Itoa(t.Rows)})
		}

		table.Render()

		return
	}

	for _, t := range tables {
		fmt.Fprintf(w, "%s (%d rows)\n", t.Name, t.Rows)

		cols := tablewriter.NewWriter(w)
		cols.SetHeader([]string{"Column", "Type"})
		cols.SetAutoFormatHeaders(false)

		for _, c := range t.Columns {
			cols.Append([]string{c.Name, c.Type})
		}

		cols.Render()
		fmt.Fprintln(w)
	}
}

// TableEntry is one table in the listing
type TableEntry struct {
	Name    string
	Columns []storage.ColumnInfo
	Rows    int
}

// FormatValue renders a single cell value
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
