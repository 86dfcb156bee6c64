package director

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vegasq/evtab/table"
)

// Serialize encodes a table's stored columns into raw little-endian buffers
// keyed by column name. Dynamic columns are excluded: they are recomputed
// after materialization, never transported.
func Serialize(t *table.Table) (map[string][]byte, error) {
	out := make(map[string][]byte)
	schema := t.Schema()
	for i := 0; i < schema.NumColumns(); i++ {
		desc := schema.Descriptor(i)
		if desc.Kind == table.Dynamic {
			continue
		}
		buf, err := encodeColumn(desc, t.Column(i), t.Len())
		if err != nil {
			return nil, err
		}
		out[desc.Name] = buf
	}
	return out, nil
}

// Materialize decodes raw column buffers against a schema and binds the
// resulting table. It is the exact inverse of Serialize for every stored
// column; dynamic columns come back recomputed from their inputs.
func Materialize(schema *table.Schema, buffers map[string][]byte) (*table.Table, error) {
	decoded := make(map[string]interface{}, len(buffers))
	for _, desc := range schema.Stored() {
		buf, ok := buffers[desc.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing buffer for column %q", table.ErrSchemaMismatch, desc.Name)
		}
		v, err := decodeColumn(desc, buf)
		if err != nil {
			return nil, err
		}
		decoded[desc.Name] = v
	}
	if len(buffers) != len(schema.Stored()) {
		return nil, fmt.Errorf("%w: got %d buffers, schema has %d stored columns",
			table.ErrSchemaMismatch, len(buffers), len(schema.Stored()))
	}
	return table.Bind(schema, decoded)
}

func encodeColumn(desc table.ColumnDescriptor, col table.Column, rows int) ([]byte, error) {
	switch desc.Type {
	case table.Float64:
		buf := make([]byte, 8*rows)
		for i := 0; i < rows; i++ {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(col.Float64(i)))
		}
		return buf, nil
	case table.Int64, table.RowRef:
		buf := make([]byte, 8*rows)
		for i := 0; i < rows; i++ {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(col.Value(i).(int64)))
		}
		return buf, nil
	case table.Bool:
		buf := make([]byte, rows)
		for i := 0; i < rows; i++ {
			if col.Value(i).(bool) {
				buf[i] = 1
			}
		}
		return buf, nil
	case table.Float64Array:
		buf := make([]byte, 8*rows*desc.Width)
		for i := 0; i < rows; i++ {
			arr := col.Value(i).([]float64)
			for k, v := range arr {
				binary.LittleEndian.PutUint64(buf[(i*desc.Width+k)*8:], math.Float64bits(v))
			}
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: column %q has unsupported type %s",
			table.ErrSchemaMismatch, desc.Name, desc.Type)
	}
}

func decodeColumn(desc table.ColumnDescriptor, buf []byte) (interface{}, error) {
	switch desc.Type {
	case table.Float64, table.Float64Array:
		if len(buf)%8 != 0 {
			return nil, fmt.Errorf("%w: column %q buffer is %d bytes, not a multiple of 8",
				table.ErrSchemaMismatch, desc.Name, len(buf))
		}
		out := make([]float64, len(buf)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
		return out, nil
	case table.Int64, table.RowRef:
		if len(buf)%8 != 0 {
			return nil, fmt.Errorf("%w: column %q buffer is %d bytes, not a multiple of 8",
				table.ErrSchemaMismatch, desc.Name, len(buf))
		}
		out := make([]int64, len(buf)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(buf[i*8:]))
		}
		return out, nil
	case table.Bool:
		out := make([]bool, len(buf))
		for i, b := range buf {
			out[i] = b != 0
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: column %q has unsupported type %s",
			table.ErrSchemaMismatch, desc.Name, desc.Type)
	}
}
