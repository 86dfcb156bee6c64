package view

import (
	"fmt"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/table"
)

// Partition holds a declared predicate and recomputes its selection on
// demand against caller-supplied candidate sets, possibly several times per
// invocation. The predicate itself is immutable; only the most recently
// materialized selection is retained.
type Partition struct {
	pred    *expr.Predicate
	current *View
}

// NewPartition wraps a compiled predicate for on-demand application.
func NewPartition(pred *expr.Predicate) *Partition {
	return &Partition{pred: pred}
}

// Apply evaluates the predicate over exactly the given candidate rows of
// rel and materializes the surviving subset as the partition's current
// view. Candidates must be strictly ascending original indices.
func (p *Partition) Apply(rel table.Relation, candidates []int) (*View, error) {
	if !p.pred.Schema().Equal(rel.Schema()) {
		return nil, fmt.Errorf("%w: predicate compiled against a different schema", table.ErrSchemaMismatch)
	}
	var sel []int
	prev := -1
	for _, i := range candidates {
		if i < 0 || i >= rel.Len() {
			return nil, fmt.Errorf("%w: candidate %d of %d", table.ErrIndexOutOfRange, i, rel.Len())
		}
		if i <= prev {
			return nil, fmt.Errorf("%w: candidates must be strictly ascending", table.ErrIndexOutOfRange)
		}
		prev = i
		if p.pred.Eval(rel, i) {
			sel = append(sel, i)
		}
	}
	p.current = &View{base: rel, sel: sel}
	return p.current, nil
}

// ApplyAll is Apply over every row of rel.
func (p *Partition) ApplyAll(rel table.Relation) (*View, error) {
	v, err := Filter(rel, p.pred)
	if err != nil {
		return nil, err
	}
	p.current = v
	return v, nil
}

// Current returns the most recently materialized view, or nil when the
// partition has not been applied yet.
func (p *Partition) Current() *View { return p.current }

// Predicate returns the declared predicate.
func (p *Partition) Predicate() *expr.Predicate { return p.pred }
