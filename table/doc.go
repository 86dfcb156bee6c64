// Package table implements the columnar table model: schemas, immutable
// tables, cursors for producing tables row by row, and zero-copy joins.
//
// A Table stores each column as a contiguous slice of values. Rows are
// addressed by a dense 0-based index that stays stable for the lifetime of
// the table. Tables are never mutated after construction, which makes them
// freely shareable across concurrent readers.
//
// Tables come into existence in one of two ways:
//
//   - Bind attaches already-resident column buffers to a schema (the read
//     path, used when batches arrive from upstream).
//   - A Cursor accumulates rows in schema order and seals into a Table
//     (the produced path).
//
// Dynamic columns are derived values: they bind a pure function over named
// sibling columns and are recomputed on every access, never stored.
package table
