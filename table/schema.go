package table

import "fmt"

// ColumnKind classifies how a column's values come into existence.
type ColumnKind int

const (
	// Persistent columns are stored in the table's buffers and survive
	// serialization.
	Persistent ColumnKind = iota
	// Dynamic columns are derived: a pure function over sibling columns,
	// recomputed on every access and never stored.
	Dynamic
	// Index columns hold row references into another table. They are stored
	// like persistent columns but carry identity, not measurement values.
	Index
)

func (k ColumnKind) String() string {
	switch k {
	case Persistent:
		return "persistent"
	case Dynamic:
		return "dynamic"
	case Index:
		return "index"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// ValueType is the value type of a column.
type ValueType int

const (
	Float64 ValueType = iota
	Int64
	Bool
	// Float64Array is a fixed-width array of float64 per row. The width is
	// carried by the column descriptor.
	Float64Array
	// RowRef is a 0-based row index into a foreign table.
	RowRef
)

func (t ValueType) String() string {
	switch t {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case Float64Array:
		return "[]float64"
	case RowRef:
		return "rowref"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Numeric reports whether values of this type can participate in arithmetic
// and comparison expressions.
func (t ValueType) Numeric() bool {
	return t == Float64 || t == Int64 || t == RowRef
}

// Func is a pure function backing a dynamic column. It receives the values
// of the declared input columns, in declaration order, for one row.
type Func func(args []float64) float64

// ColumnDescriptor describes a single column of a schema.
type ColumnDescriptor struct {
	Name string
	Kind ColumnKind
	Type ValueType

	// Width is the per-row element count for Float64Array columns.
	Width int

	// RefTable names the foreign table kind for RowRef columns.
	RefTable string

	// Func and Inputs back Dynamic columns. Inputs name sibling columns
	// whose values are passed to Func, in order.
	Func   Func
	Inputs []string
}

// Col returns a descriptor for a persistent scalar column.
func Col(name string, typ ValueType) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Kind: Persistent, Type: typ}
}

// ArrayCol returns a descriptor for a persistent fixed-width array column.
func ArrayCol(name string, width int) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Kind: Persistent, Type: Float64Array, Width: width}
}

// RefCol returns a descriptor for an index column referencing rows of the
// named foreign table kind.
func RefCol(name, refTable string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Kind: Index, Type: RowRef, RefTable: refTable}
}

// DynamicCol returns a descriptor for a derived column computed by fn from
// the named input columns.
func DynamicCol(name string, fn Func, inputs ...string) ColumnDescriptor {
	return ColumnDescriptor{Name: name, Kind: Dynamic, Type: Float64, Func: fn, Inputs: inputs}
}

// Schema is an ordered, name-unique set of column descriptors. The order is
// stable and defines the column layout used by cursors and serialization.
type Schema struct {
	cols   []ColumnDescriptor
	byName map[string]int
}

// NewSchema builds a schema from descriptors. Column names must be unique;
// a collision fails with ErrDuplicateColumn.
func NewSchema(cols ...ColumnDescriptor) (*Schema, error) {
	s := &Schema{
		cols:   make([]ColumnDescriptor, len(cols)),
		byName: make(map[string]int, len(cols)),
	}
	copy(s.cols, cols)
	for i, c := range cols {
		if _, ok := s.byName[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if c.Kind == Dynamic && c.Func == nil {
			return nil, fmt.Errorf("%w: dynamic column %q has no function", ErrSchemaMismatch, c.Name)
		}
		if c.Type == Float64Array && c.Width <= 0 {
			return nil, fmt.Errorf("%w: array column %q needs a positive width", ErrSchemaMismatch, c.Name)
		}
		s.byName[c.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error, for statically known schemas.
func MustSchema(cols ...ColumnDescriptor) *Schema {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// NumColumns returns the number of columns.
func (s *Schema) NumColumns() int { return len(s.cols) }

// Descriptor returns the descriptor at ordinal i.
func (s *Schema) Descriptor(i int) ColumnDescriptor { return s.cols[i] }

// Columns returns the descriptors in declaration order.
func (s *Schema) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(s.cols))
	copy(out, s.cols)
	return out
}

// Ordinal returns the position of the named column.
func (s *Schema) Ordinal(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Stored returns the descriptors of stored (non-dynamic) columns, in order.
func (s *Schema) Stored() []ColumnDescriptor {
	out := make([]ColumnDescriptor, 0, len(s.cols))
	for _, c := range s.cols {
		if c.Kind != Dynamic {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether two schemas have the same column names, kinds and
// types in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if other == nil || len(s.cols) != len(other.cols) {
		return false
	}
	for i, c := range s.cols {
		o := other.cols[i]
		if c.Name != o.Name || c.Kind != o.Kind || c.Type != o.Type || c.Width != o.Width {
			return false
		}
	}
	return true
}
