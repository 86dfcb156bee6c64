package table

import "fmt"

// Cursor accumulates rows for a schema and seals them into an immutable
// Table. A cursor is exclusively owned by a single producer; appends must
// arrive in row order from exactly one goroutine.
type Cursor struct {
	schema *Schema
	stored []ColumnDescriptor
	bufs   []interface{} // parallel to stored: []float64, []int64 or []bool
	rows   int
	sealed bool
}

// NewCursor returns an empty cursor for the schema.
func NewCursor(schema *Schema) *Cursor {
	stored := schema.Stored()
	bufs := make([]interface{}, len(stored))
	for i, desc := range stored {
		switch desc.Type {
		case Float64, Float64Array:
			bufs[i] = []float64(nil)
		case Int64, RowRef:
			bufs[i] = []int64(nil)
		case Bool:
			bufs[i] = []bool(nil)
		}
	}
	return &Cursor{schema: schema, stored: stored, bufs: bufs}
}

// Append adds one row. Values arrive in schema column order, stored columns
// only (dynamic columns are derived, never appended). Array columns take a
// []float64 of the declared width.
func (c *Cursor) Append(values ...interface{}) error {
	if c.sealed {
		return fmt.Errorf("%w: append after seal", ErrSealedTable)
	}
	if len(values) != len(c.stored) {
		return fmt.Errorf("%w: got %d values, schema stores %d columns",
			ErrSchemaMismatch, len(values), len(c.stored))
	}
	for i, desc := range c.stored {
		if err := c.appendValue(i, desc, values[i]); err != nil {
			return err
		}
	}
	c.rows++
	return nil
}

func (c *Cursor) appendValue(i int, desc ColumnDescriptor, v interface{}) error {
	switch desc.Type {
	case Float64:
		f, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("%w: column %q wants float64, got %T", ErrSchemaMismatch, desc.Name, v)
		}
		c.bufs[i] = append(c.bufs[i].([]float64), f)
	case Int64, RowRef:
		n, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("%w: column %q wants int64, got %T", ErrSchemaMismatch, desc.Name, v)
		}
		c.bufs[i] = append(c.bufs[i].([]int64), n)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: column %q wants bool, got %T", ErrSchemaMismatch, desc.Name, v)
		}
		c.bufs[i] = append(c.bufs[i].([]bool), b)
	case Float64Array:
		arr, ok := v.([]float64)
		if !ok || len(arr) != desc.Width {
			return fmt.Errorf("%w: column %q wants [%d]float64, got %T", ErrSchemaMismatch, desc.Name, desc.Width, v)
		}
		c.bufs[i] = append(c.bufs[i].([]float64), arr...)
	}
	return nil
}

// Len returns the number of rows appended so far.
func (c *Cursor) Len() int { return c.rows }

// Seal freezes the cursor's contents into an immutable Table. The cursor
// rejects further appends with ErrSealedTable.
func (c *Cursor) Seal() (*Table, error) {
	if c.sealed {
		return nil, fmt.Errorf("%w: already sealed", ErrSealedTable)
	}
	c.sealed = true
	buffers := make(map[string]interface{}, len(c.stored))
	for i, desc := range c.stored {
		buffers[desc.Name] = c.bufs[i]
	}
	return assemble(c.schema, buffers, c.rows)
}

func asFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	default:
		return 0, false
	}
}
