package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/datachat-labs/datachat/internal/storage"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"string", "Walmart", "Walmart"},
		{"int64", int64(2100000), "2100000"},
		{"float", 611289.5, "611289.5"},
		{"bool", true, "true"},
		{"time", time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC), "2023-06-01 12:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}

func TestFormatter_WriteResultSet(t *testing.T) {
	rs := &storage.ResultSet{
		Columns: []string{"company", "rank"},
		Rows: []map[string]interface{}{
			{"company": "Walmart", "rank": int64(1)},
			{"company": "Amazon", "rank": int64(2)},
		},
		Count: 2,
	}

	var buf bytes.Buffer
	NewFormatter().WriteResultSet(&buf, rs)

	out := buf.String()
	assert.Contains(t, out, "company")
	assert.Contains(t, out, "Walmart")
	assert.Contains(t, out, "Amazon")
}

func TestFormatter_WriteResultSet_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter().WriteResultSet(&buf, &storage.ResultSet{Columns: []string{"a"}})

	assert.Contains(t, buf.String(), "(no rows)")
}

func TestFormatter_WriteTableList_NoTables(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter().WriteTableList(&buf, nil, false)

	assert.Contains(t, buf.String(), "No tables loaded")
}
