package director

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/evtab/table"
)

// parquetSchema derives a parquet schema for a table kind from stored
// column descriptors. Array columns are not representable in the merged
// output format; snapshots carry them instead.
func parquetSchema(kind string, descs []table.ColumnDescriptor) (*parquet.Schema, error) {
	group := parquet.Group{}
	for _, desc := range descs {
		switch desc.Type {
		case table.Float64:
			group[desc.Name] = parquet.Leaf(parquet.DoubleType)
		case table.Int64, table.RowRef:
			group[desc.Name] = parquet.Int(64)
		case table.Bool:
			group[desc.Name] = parquet.Leaf(parquet.BooleanType)
		default:
			return nil, fmt.Errorf("%w: column %q type %s has no parquet mapping (use snapshots)",
				table.ErrSchemaMismatch, desc.Name, desc.Type)
		}
	}
	return parquet.NewSchema(kind, group), nil
}

// writeParquetRows appends the given stored columns of a table to an open
// parquet writer.
func writeParquetRows(w *parquet.GenericWriter[map[string]interface{}], t *table.Table, descs []table.ColumnDescriptor) error {
	cols := make([]table.Column, len(descs))
	for k, desc := range descs {
		col, ok := table.ColumnByName(t, desc.Name)
		if !ok {
			return fmt.Errorf("%w: %q", table.ErrUnknownColumn, desc.Name)
		}
		cols[k] = col
	}
	rows := make([]map[string]interface{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := make(map[string]interface{}, len(descs))
		for k, desc := range descs {
			row[desc.Name] = cols[k].Value(i)
		}
		rows[i] = row
	}
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteParquet writes a whole table to a single parquet file, all stored
// columns included. Used by tooling; batch output goes through the output
// director.
func WriteParquet(path string, kind string, t *table.Table) error {
	pqSchema, err := parquetSchema(kind, t.Schema().Stored())
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w := parquet.NewGenericWriter[map[string]interface{}](f, pqSchema)
	if err := writeParquetRows(w, t, t.Schema().Stored()); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return f.Close()
}

// ReadParquet reads a whole parquet file into a table bound to the given
// schema. Dynamic columns of the schema are recomputed from the read
// columns.
func ReadParquet(path string, schema *table.Schema) (*table.Table, error) {
	rows, err := readParquetRows(path)
	if err != nil {
		return nil, err
	}
	buffers, err := rowsToBuffers(schema, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table.Bind(schema, buffers)
}

// OpenParquet reads a parquet file without a declared schema, inferring one
// from the file's own metadata. Used by tooling.
func OpenParquet(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pq, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	var descs []table.ColumnDescriptor
	for _, field := range pq.Schema().Fields() {
		switch field.Type().Kind() {
		case parquet.Double, parquet.Float:
			descs = append(descs, table.Col(field.Name(), table.Float64))
		case parquet.Int64, parquet.Int32:
			descs = append(descs, table.Col(field.Name(), table.Int64))
		case parquet.Boolean:
			descs = append(descs, table.Col(field.Name(), table.Bool))
		default:
			return nil, fmt.Errorf("%w: parquet column %q kind %v has no table mapping",
				table.ErrSchemaMismatch, field.Name(), field.Type().Kind())
		}
	}
	schema, err := table.NewSchema(descs...)
	if err != nil {
		return nil, err
	}

	rows, err := readAllRows(pq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	buffers, err := rowsToBuffers(schema, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table.Bind(schema, buffers)
}

func readParquetRows(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pq, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return readAllRows(pq)
}

func readAllRows(pq *parquet.File) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0)
	reader := parquet.NewReader(pq)
	defer func() { _ = reader.Close() }()
	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowsToBuffers transposes map rows into the column buffers Bind expects,
// widening the integer and float widths parquet readers hand back.
func rowsToBuffers(schema *table.Schema, rows []map[string]interface{}) (map[string]interface{}, error) {
	buffers := make(map[string]interface{})
	for _, desc := range schema.Stored() {
		switch desc.Type {
		case table.Float64:
			out := make([]float64, len(rows))
			for i, row := range rows {
				v, ok := numericValue(row[desc.Name])
				if !ok {
					return nil, fmt.Errorf("%w: column %q row %d is %T, not numeric",
						table.ErrSchemaMismatch, desc.Name, i, row[desc.Name])
				}
				out[i] = v
			}
			buffers[desc.Name] = out
		case table.Int64, table.RowRef:
			out := make([]int64, len(rows))
			for i, row := range rows {
				v, ok := integerValue(row[desc.Name])
				if !ok {
					return nil, fmt.Errorf("%w: column %q row %d is %T, not an integer",
						table.ErrSchemaMismatch, desc.Name, i, row[desc.Name])
				}
				out[i] = v
			}
			buffers[desc.Name] = out
		case table.Bool:
			out := make([]bool, len(rows))
			for i, row := range rows {
				v, ok := row[desc.Name].(bool)
				if !ok {
					return nil, fmt.Errorf("%w: column %q row %d is %T, not bool",
						table.ErrSchemaMismatch, desc.Name, i, row[desc.Name])
				}
				out[i] = v
			}
			buffers[desc.Name] = out
		default:
			return nil, fmt.Errorf("%w: column %q type %s has no parquet mapping",
				table.ErrSchemaMismatch, desc.Name, desc.Type)
		}
	}
	return buffers, nil
}

func numericValue(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	default:
		return 0, false
	}
}

func integerValue(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	default:
		return 0, false
	}
}
