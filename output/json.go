package output

import (
	"encoding/json"
	"io"

	"github.com/vegasq/evtab/table"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the relation as JSON Lines (one JSON object per row)
func (j *JSONFormatter) Format(rel table.Relation) error {
	names := columnNames(rel)
	encoder := json.NewEncoder(j.writer)
	for i := 0; i < rel.Len(); i++ {
		row := make(map[string]interface{}, len(names))
		for k, name := range names {
			row[name] = rel.Column(k).Value(i)
		}
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
