package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/vegasq/evtab/table"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the relation as CSV with a header row
func (c *CSVFormatter) Format(rel table.Relation) error {
	csvWriter := csv.NewWriter(c.writer)
	names := columnNames(rel)

	if err := csvWriter.Write(names); err != nil {
		return err
	}
	record := make([]string, len(names))
	for i := 0; i < rel.Len(); i++ {
		for k := range names {
			record[k] = formatValue(rel.Column(k).Value(i))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue converts a column value to its string representation
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case []float64:
		out := "["
		for i, f := range val {
			if i > 0 {
				out += " "
			}
			out += strconv.FormatFloat(f, 'g', -1, 64)
		}
		return out + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}
