package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/fieldvalues/values"
	"github.com/wbrown/fieldvalues/values/storage"
)

// TableFormatter renders values and documents as markdown tables
type TableFormatter struct {
	// MaxWidth is the maximum width for a column; 0 disables truncation
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewTableFormatter creates a new table formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// FormatValues renders one row per value in the given order, with its
// type, literal form and canonical id
func (tf *TableFormatter) FormatValues(vs []values.Value) string {
	if len(vs) == 0 {
		return "_No values_"
	}

	rows := make([][]string, len(vs))
	for i, v := range vs {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			v.Type().String(),
			tf.truncate(v.String()),
			tf.truncate(values.CanonicalID(v)),
		}
	}
	return tf.formatTable([]string{"#", "type", "value", "canonical id"}, rows, "values")
}

// FormatDocuments renders one row per document with the given field paths
// as columns. Missing fields are left blank.
func (tf *TableFormatter) FormatDocuments(docs []*storage.Document, fields ...string) string {
	if len(docs) == 0 {
		return "_No documents_"
	}

	headers := append([]string{"key"}, fields...)
	headers = append(headers, "update time")

	rows := make([][]string, len(docs))
	for i, doc := range docs {
		row := make([]string, 0, len(headers))
		row = append(row, doc.Key)
		for _, f := range fields {
			if v, ok := doc.Fields.Field(f); ok {
				row = append(row, tf.truncate(v.String()))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, doc.UpdateTime.String())
		rows[i] = row
	}
	return tf.formatTable(headers, rows, "documents")
}

// formatTable formats headers and rows as a markdown table
func (tf *TableFormatter) formatTable(headers []string, rows [][]string, noun string) string {
	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d %s_\n", len(rows), noun))

	return tableString.String()
}

// truncate shortens s to MaxWidth runes including the truncation marker
func (tf *TableFormatter) truncate(s string) string {
	if tf.MaxWidth <= 0 || utf8.RuneCountInString(s) <= tf.MaxWidth {
		return s
	}
	keep := tf.MaxWidth - utf8.RuneCountInString(tf.TruncateString)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + tf.TruncateString
}
