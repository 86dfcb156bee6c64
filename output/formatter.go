// Package output provides formatters for printing tables and views.
//
// Supported formats:
//   - JSON Lines: one JSON object per row
//   - CSV: comma-separated values with a header row
//   - Text: an aligned table for terminals
//
// Column order always follows the relation's schema, dynamic columns
// included.
//
// Example usage:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//	if err := formatter.Format(tbl); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"io"

	"github.com/vegasq/evtab/table"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes the relation's rows in the formatter's format
	Format(rel table.Relation) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// columnNames returns the relation's column names in schema order.
func columnNames(rel table.Relation) []string {
	s := rel.Schema()
	out := make([]string, s.NumColumns())
	for i := range out {
		out[i] = s.Descriptor(i).Name
	}
	return out
}
