package table

import "fmt"

// Composite is a virtual table composed from the columns of two or more
// relations sharing one index domain. Reads delegate to the owning input
// columns; nothing is copied.
type Composite struct {
	schema *Schema
	cols   []Column
	rows   int
}

var _ Relation = (*Composite)(nil)

// Join composes a zero-copy virtual table from relations with identical row
// counts, where row i denotes the same logical entity in every input. Fails
// with ErrIncompatibleJoin on row count disagreement and ErrDuplicateColumn
// when inputs share a column name. The result schema is the union of the
// inputs' columns in input order.
func Join(rels ...Relation) (*Composite, error) {
	if len(rels) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 tables, got %d", ErrIncompatibleJoin, len(rels))
	}
	rows := rels[0].Len()
	for _, r := range rels[1:] {
		if r.Len() != rows {
			return nil, fmt.Errorf("%w: row counts %d and %d", ErrIncompatibleJoin, rows, r.Len())
		}
	}

	var descs []ColumnDescriptor
	var cols []Column
	for _, r := range rels {
		s := r.Schema()
		for i := 0; i < s.NumColumns(); i++ {
			descs = append(descs, s.Descriptor(i))
			cols = append(cols, r.Column(i))
		}
	}
	schema, err := NewSchema(descs...)
	if err != nil {
		return nil, err
	}
	return &Composite{schema: schema, cols: cols, rows: rows}, nil
}

// Derive extends a relation with dynamic columns whose inputs resolve
// against the relation's (possibly joined) schema. This is how a derived
// quantity can combine columns that only meet after a join. Fails with
// ErrUnresolvedDependency when an input is absent and ErrDuplicateColumn on
// a name collision.
func Derive(rel Relation, descs ...ColumnDescriptor) (*Composite, error) {
	base := rel.Schema()
	all := base.Columns()
	cols := make([]Column, 0, base.NumColumns()+len(descs))
	byName := make(map[string]Column, base.NumColumns()+len(descs))
	for i := 0; i < base.NumColumns(); i++ {
		col := rel.Column(i)
		cols = append(cols, col)
		byName[col.Desc().Name] = col
	}
	for _, desc := range descs {
		if desc.Kind != Dynamic {
			return nil, fmt.Errorf("%w: derived column %q must be dynamic", ErrSchemaMismatch, desc.Name)
		}
		col, err := bindDynamic(desc, byName, rel.Len())
		if err != nil {
			return nil, err
		}
		all = append(all, desc)
		cols = append(cols, col)
		byName[desc.Name] = col
	}
	schema, err := NewSchema(all...)
	if err != nil {
		return nil, err
	}
	return &Composite{schema: schema, cols: cols, rows: rel.Len()}, nil
}

// Schema returns the composite schema.
func (c *Composite) Schema() *Schema { return c.schema }

// Len returns the shared row count.
func (c *Composite) Len() int { return c.rows }

// Column returns the column at schema ordinal i, owned by one of the inputs.
func (c *Composite) Column(i int) Column { return c.cols[i] }

// Row returns a bounds-checked accessor for row i.
func (c *Composite) Row(i int) (Row, error) { return RowOf(c, i) }
