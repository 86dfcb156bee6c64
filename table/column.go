package table

import "fmt"

// Column is a read-only typed column. Accessors are not bounds-checked;
// callers go through Relation/Row for checked access.
type Column interface {
	Desc() ColumnDescriptor
	Len() int

	// Value returns the value at row i boxed as interface{}. Array columns
	// return a []float64 sub-slice of the backing buffer (shared, do not
	// mutate).
	Value(i int) interface{}

	// Float64 returns the numeric view of row i. Valid for Float64, Int64
	// and RowRef columns and for Dynamic columns.
	Float64(i int) float64
}

type float64Column struct {
	desc ColumnDescriptor
	data []float64
}

func (c *float64Column) Desc() ColumnDescriptor { return c.desc }
func (c *float64Column) Len() int               { return len(c.data) }
func (c *float64Column) Value(i int) interface{} {
	return c.data[i]
}
func (c *float64Column) Float64(i int) float64 { return c.data[i] }

type int64Column struct {
	desc ColumnDescriptor
	data []int64
}

func (c *int64Column) Desc() ColumnDescriptor { return c.desc }
func (c *int64Column) Len() int               { return len(c.data) }
func (c *int64Column) Value(i int) interface{} {
	return c.data[i]
}
func (c *int64Column) Float64(i int) float64 { return float64(c.data[i]) }

type boolColumn struct {
	desc ColumnDescriptor
	data []bool
}

func (c *boolColumn) Desc() ColumnDescriptor { return c.desc }
func (c *boolColumn) Len() int               { return len(c.data) }
func (c *boolColumn) Value(i int) interface{} {
	return c.data[i]
}
func (c *boolColumn) Float64(i int) float64 {
	panic(fmt.Sprintf("column %q: bool has no numeric view", c.desc.Name))
}

type arrayColumn struct {
	desc ColumnDescriptor
	data []float64 // len == rows * desc.Width
	rows int
}

func (c *arrayColumn) Desc() ColumnDescriptor { return c.desc }
func (c *arrayColumn) Len() int               { return c.rows }
func (c *arrayColumn) Value(i int) interface{} {
	w := c.desc.Width
	return c.data[i*w : (i+1)*w]
}
func (c *arrayColumn) Float64(i int) float64 {
	panic(fmt.Sprintf("column %q: array has no scalar view", c.desc.Name))
}

// dynamicColumn recomputes its value from resolved input columns on every
// access. It holds no per-row state, so concurrent reads are safe.
type dynamicColumn struct {
	desc   ColumnDescriptor
	inputs []Column
	rows   int
}

func (c *dynamicColumn) Desc() ColumnDescriptor { return c.desc }
func (c *dynamicColumn) Len() int               { return c.rows }
func (c *dynamicColumn) Value(i int) interface{} {
	return c.Float64(i)
}
func (c *dynamicColumn) Float64(i int) float64 {
	args := make([]float64, len(c.inputs))
	for k, in := range c.inputs {
		args[k] = in.Float64(i)
	}
	return c.desc.Func(args)
}

// newStoredColumn wraps a raw buffer in a typed column, validating the
// buffer's Go type and length against the descriptor.
func newStoredColumn(desc ColumnDescriptor, buf interface{}, rows int) (Column, error) {
	switch desc.Type {
	case Float64:
		data, ok := buf.([]float64)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants []float64, got %T", ErrSchemaMismatch, desc.Name, buf)
		}
		if len(data) != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrSchemaMismatch, desc.Name, len(data), rows)
		}
		return &float64Column{desc: desc, data: data}, nil
	case Int64, RowRef:
		data, ok := buf.([]int64)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants []int64, got %T", ErrSchemaMismatch, desc.Name, buf)
		}
		if len(data) != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrSchemaMismatch, desc.Name, len(data), rows)
		}
		return &int64Column{desc: desc, data: data}, nil
	case Bool:
		data, ok := buf.([]bool)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants []bool, got %T", ErrSchemaMismatch, desc.Name, buf)
		}
		if len(data) != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrSchemaMismatch, desc.Name, len(data), rows)
		}
		return &boolColumn{desc: desc, data: data}, nil
	case Float64Array:
		data, ok := buf.([]float64)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants []float64, got %T", ErrSchemaMismatch, desc.Name, buf)
		}
		if len(data) != rows*desc.Width {
			return nil, fmt.Errorf("%w: array column %q has %d elements, want %d", ErrSchemaMismatch, desc.Name, len(data), rows*desc.Width)
		}
		return &arrayColumn{desc: desc, data: data, rows: rows}, nil
	default:
		return nil, fmt.Errorf("%w: column %q has unsupported type %s", ErrSchemaMismatch, desc.Name, desc.Type)
	}
}

// bindDynamic resolves a dynamic column's inputs against already constructed
// sibling columns.
func bindDynamic(desc ColumnDescriptor, byName map[string]Column, rows int) (Column, error) {
	inputs := make([]Column, len(desc.Inputs))
	for k, name := range desc.Inputs {
		in, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: dynamic column %q needs %q", ErrUnresolvedDependency, desc.Name, name)
		}
		if !in.Desc().Type.Numeric() && in.Desc().Kind != Dynamic {
			return nil, fmt.Errorf("%w: dynamic column %q input %q is not numeric", ErrUnresolvedDependency, desc.Name, name)
		}
		inputs[k] = in
	}
	return &dynamicColumn{desc: desc, inputs: inputs, rows: rows}, nil
}
