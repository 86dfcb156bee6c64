package table

import "errors"

var (
	// ErrSchemaMismatch indicates that supplied buffers or appended values
	// disagree with the schema in count, type, or length.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrIndexOutOfRange indicates a row access past the end of a table.
	ErrIndexOutOfRange = errors.New("row index out of range")

	// ErrSealedTable indicates an append to a cursor that already sealed.
	ErrSealedTable = errors.New("table is sealed")

	// ErrUnresolvedDependency indicates a dynamic column whose input column
	// is absent from the bound (possibly joined) schema.
	ErrUnresolvedDependency = errors.New("unresolved dynamic column dependency")

	// ErrIncompatibleJoin indicates joined tables with differing row counts.
	ErrIncompatibleJoin = errors.New("incompatible join")

	// ErrDuplicateColumn indicates a column name collision.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrUnknownColumn indicates a reference to a column name the schema
	// does not contain.
	ErrUnknownColumn = errors.New("unknown column")
)
