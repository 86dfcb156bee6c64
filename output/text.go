package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/evtab/table"
)

// TextFormatter outputs rows as an aligned text table for terminals
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new aligned text table formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TextFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders the relation as an aligned table
func (t *TextFormatter) Format(rel table.Relation) error {
	names := columnNames(rel)

	tw := tablewriter.NewWriter(t.writer)
	tw.SetHeader(names)
	tw.SetAutoFormatHeaders(false)

	record := make([]string, len(names))
	for i := 0; i < rel.Len(); i++ {
		for k := range names {
			record[k] = formatValue(rel.Column(k).Value(i))
		}
		tw.Append(append([]string(nil), record...))
	}
	tw.Render()
	return nil
}
