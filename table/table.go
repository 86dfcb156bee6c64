package table

import "fmt"

// Relation is the read-only surface shared by tables, joins, and filtered
// views. Columns are addressed by schema ordinal for O(1) access.
type Relation interface {
	Schema() *Schema
	Len() int
	Column(i int) Column
}

// Table is an immutable columnar container conforming to a schema.
type Table struct {
	schema *Schema
	cols   []Column
	rows   int
}

var _ Relation = (*Table)(nil)

// Bind attaches raw column buffers to a schema and returns the resulting
// table. Validation is metadata-only: buffer presence, Go type, and length
// are checked, the values themselves are never copied or inspected.
//
// buffers maps stored column names to their backing slices ([]float64,
// []int64 or []bool depending on the column type). Dynamic columns take no
// buffer; their inputs are resolved against sibling columns here, failing
// with ErrUnresolvedDependency when absent.
func Bind(schema *Schema, buffers map[string]interface{}) (*Table, error) {
	stored := schema.Stored()
	if len(buffers) != len(stored) {
		return nil, fmt.Errorf("%w: got %d buffers, schema has %d stored columns",
			ErrSchemaMismatch, len(buffers), len(stored))
	}

	rows := -1
	for _, desc := range stored {
		buf, ok := buffers[desc.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing buffer for column %q", ErrSchemaMismatch, desc.Name)
		}
		n := bufferRows(desc, buf)
		if rows == -1 {
			rows = n
		}
	}
	if rows < 0 {
		rows = 0
	}

	return assemble(schema, buffers, rows)
}

// bufferRows derives the row count a buffer implies, or -1 when the buffer
// type is wrong (assemble reports the precise error).
func bufferRows(desc ColumnDescriptor, buf interface{}) int {
	switch data := buf.(type) {
	case []float64:
		if desc.Type == Float64Array {
			return len(data) / desc.Width
		}
		return len(data)
	case []int64:
		return len(data)
	case []bool:
		return len(data)
	default:
		return -1
	}
}

// assemble builds typed columns over the buffers and resolves dynamic
// columns in schema order. Dynamic columns may reference stored columns and
// dynamic columns declared before them.
func assemble(schema *Schema, buffers map[string]interface{}, rows int) (*Table, error) {
	cols := make([]Column, schema.NumColumns())
	byName := make(map[string]Column, schema.NumColumns())

	for i := 0; i < schema.NumColumns(); i++ {
		desc := schema.Descriptor(i)
		if desc.Kind == Dynamic {
			continue
		}
		col, err := newStoredColumn(desc, buffers[desc.Name], rows)
		if err != nil {
			return nil, err
		}
		cols[i] = col
		byName[desc.Name] = col
	}
	for i := 0; i < schema.NumColumns(); i++ {
		desc := schema.Descriptor(i)
		if desc.Kind != Dynamic {
			continue
		}
		col, err := bindDynamic(desc, byName, rows)
		if err != nil {
			return nil, err
		}
		cols[i] = col
		byName[desc.Name] = col
	}

	return &Table{schema: schema, cols: cols, rows: rows}, nil
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Column returns the column at schema ordinal i.
func (t *Table) Column(i int) Column { return t.cols[i] }

// Row returns a bounds-checked accessor for row i.
func (t *Table) Row(i int) (Row, error) { return RowOf(t, i) }

// Float64s returns the backing slice of a persistent float64 column, shared
// and read-only.
func (t *Table) Float64s(name string) ([]float64, error) {
	col, ok := ColumnByName(t, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	fc, ok := col.(*float64Column)
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, not float64",
			ErrSchemaMismatch, name, col.Desc().Type)
	}
	return fc.data, nil
}

// Int64s returns the backing slice of a persistent int64 or row-reference
// column, shared and read-only.
func (t *Table) Int64s(name string) ([]int64, error) {
	col, ok := ColumnByName(t, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	ic, ok := col.(*int64Column)
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, not int64",
			ErrSchemaMismatch, name, col.Desc().Type)
	}
	return ic.data, nil
}

// ColumnByName looks up a column of any relation by name.
func ColumnByName(rel Relation, name string) (Column, bool) {
	i, ok := rel.Schema().Ordinal(name)
	if !ok {
		return nil, false
	}
	return rel.Column(i), true
}

// Row is a lightweight view of one row of a relation.
type Row struct {
	rel Relation
	idx int
}

// RowOf returns a bounds-checked row accessor for any relation.
func RowOf(rel Relation, i int) (Row, error) {
	if i < 0 || i >= rel.Len() {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, rel.Len())
	}
	return Row{rel: rel, idx: i}, nil
}

// Index returns the row's index within its relation.
func (r Row) Index() int { return r.idx }

// Value returns the named column's value for this row.
func (r Row) Value(name string) (interface{}, error) {
	col, ok := ColumnByName(r.rel, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col.Value(r.idx), nil
}

// Float64 returns the named column's numeric view for this row.
func (r Row) Float64(name string) (float64, error) {
	col, ok := ColumnByName(r.rel, name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if !col.Desc().Type.Numeric() {
		return 0, fmt.Errorf("%w: column %q is %s, not numeric",
			ErrSchemaMismatch, name, col.Desc().Type)
	}
	return col.Float64(r.idx), nil
}

// Int64 returns the named int64 or row-reference column's value for this row.
func (r Row) Int64(name string) (int64, error) {
	col, ok := ColumnByName(r.rel, name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	v, ok := col.Value(r.idx).(int64)
	if !ok {
		return 0, fmt.Errorf("%w: column %q is %s, not int64",
			ErrSchemaMismatch, name, col.Desc().Type)
	}
	return v, nil
}

// Values returns the row's values in schema order, dynamic columns included.
func (r Row) Values() []interface{} {
	s := r.rel.Schema()
	out := make([]interface{}, s.NumColumns())
	for i := 0; i < s.NumColumns(); i++ {
		out[i] = r.rel.Column(i).Value(r.idx)
	}
	return out
}
