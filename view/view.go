// Package view applies compiled predicates to tables, producing index-masked
// read-only views.
//
// A View is computed upfront: the predicate runs once per row in ascending
// index order and the surviving indices are fixed for the view's lifetime.
// A Partition keeps the predicate and recomputes the selection on demand
// against caller-supplied candidate sets.
package view

import (
	"fmt"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/table"
)

// View is a read-only selection of rows of a base relation. It implements
// table.Relation over the surviving rows while preserving access to the
// original index identity through SourceIndex.
type View struct {
	base table.Relation
	sel  []int // ascending original indices
}

var _ table.Relation = (*View)(nil)

// Filter evaluates pred once per row of rel, in ascending index order, and
// retains row i iff the predicate holds. The relation must conform to the
// schema the predicate was compiled against. The result is immutable: a
// changed predicate or table requires rebuilding the view.
func Filter(rel table.Relation, pred *expr.Predicate) (*View, error) {
	if !pred.Schema().Equal(rel.Schema()) {
		return nil, fmt.Errorf("%w: predicate compiled against a different schema", table.ErrSchemaMismatch)
	}
	var sel []int
	for i := 0; i < rel.Len(); i++ {
		if pred.Eval(rel, i) {
			sel = append(sel, i)
		}
	}
	return &View{base: rel, sel: sel}, nil
}

// FromIndices builds a view over an explicit ascending selection. Used by
// partitions and by the combinatorics generator's candidate handling.
func FromIndices(rel table.Relation, sel []int) (*View, error) {
	for k, i := range sel {
		if i < 0 || i >= rel.Len() {
			return nil, fmt.Errorf("%w: %d of %d", table.ErrIndexOutOfRange, i, rel.Len())
		}
		if k > 0 && sel[k-1] >= i {
			return nil, fmt.Errorf("%w: selection must be strictly ascending", table.ErrIndexOutOfRange)
		}
	}
	out := make([]int, len(sel))
	copy(out, sel)
	return &View{base: rel, sel: out}, nil
}

// Schema returns the base relation's schema; a view never changes columns.
func (v *View) Schema() *table.Schema { return v.base.Schema() }

// Len returns the number of surviving rows.
func (v *View) Len() int { return len(v.sel) }

// Column returns the base column remapped through the selection.
func (v *View) Column(i int) table.Column {
	return maskedColumn{base: v.base.Column(i), sel: v.sel}
}

// SourceIndex returns the original index of the view's i-th surviving row.
func (v *View) SourceIndex(i int) int { return v.sel[i] }

// SourceIndices returns the surviving original indices in ascending order.
func (v *View) SourceIndices() []int {
	out := make([]int, len(v.sel))
	copy(out, v.sel)
	return out
}

// Base returns the relation the view selects from.
func (v *View) Base() table.Relation { return v.base }

// Row returns a bounds-checked accessor for the view's i-th surviving row.
func (v *View) Row(i int) (table.Row, error) { return table.RowOf(v, i) }

// maskedColumn remaps row indices through the view's selection. Reads
// delegate to the owning base column, zero copy.
type maskedColumn struct {
	base table.Column
	sel  []int
}

func (c maskedColumn) Desc() table.ColumnDescriptor { return c.base.Desc() }
func (c maskedColumn) Len() int                     { return len(c.sel) }
func (c maskedColumn) Value(i int) interface{}      { return c.base.Value(c.sel[i]) }
func (c maskedColumn) Float64(i int) float64        { return c.base.Float64(c.sel[i]) }
