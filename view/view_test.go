package view_test

import (
	"errors"
	"testing"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/table"
	"github.com/vegasq/evtab/view"
)

func tracks(t *testing.T) *table.Table {
	t.Helper()
	schema := table.MustSchema(
		table.Col("id", table.Int64),
		table.Col("eta", table.Float64),
	)
	tbl, err := table.Bind(schema, map[string]interface{}{
		"id":  []int64{0, 1, 2},
		"eta": []float64{-1.0, 0.5, -0.2},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	return tbl
}

func compile(t *testing.T, e expr.Expr, schema *table.Schema) *expr.Predicate {
	t.Helper()
	p, err := expr.Compile(e, schema)
	if err != nil {
		t.Fatalf("Compile(%s) error = %v", e, err)
	}
	return p
}

func TestFilter(t *testing.T) {
	tbl := tracks(t)
	pred := compile(t, expr.Lt(expr.Col("eta"), expr.Lit(0)), tbl.Schema())

	v, err := view.Filter(tbl, pred)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if got, want := v.SourceIndices(), []int{0, 2}; len(got) != len(want) ||
		got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("SourceIndices() = %v, want %v", got, want)
	}
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", v.Len())
	}

	// The view keeps the base columns and remaps indices.
	row, err := v.Row(1)
	if err != nil {
		t.Fatalf("Row(1) error = %v", err)
	}
	if id, _ := row.Int64("id"); id != 2 {
		t.Errorf("id of surviving row 1 = %d, want 2", id)
	}
	if eta, _ := row.Float64("eta"); eta != -0.2 {
		t.Errorf("eta of surviving row 1 = %g, want -0.2", eta)
	}
}

func TestFilter_SchemaMismatch(t *testing.T) {
	tbl := tracks(t)
	other := table.MustSchema(table.Col("pt", table.Float64))
	pred := compile(t, expr.Gt(expr.Col("pt"), expr.Lit(0)), other)

	if _, err := view.Filter(tbl, pred); !errors.Is(err, table.ErrSchemaMismatch) {
		t.Errorf("Filter() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestFilter_Empty(t *testing.T) {
	tbl := tracks(t)
	pred := compile(t, expr.Gt(expr.Col("eta"), expr.Lit(10)), tbl.Schema())

	v, err := view.Filter(tbl, pred)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if v.Len() != 0 {
		t.Errorf("Len() = %d, want 0", v.Len())
	}
}

func TestFilter_Conjunction(t *testing.T) {
	tbl := tracks(t)
	a := compile(t, expr.Lt(expr.Col("eta"), expr.Lit(0)), tbl.Schema())
	b := compile(t, expr.Gt(expr.Col("eta"), expr.Lit(-0.5)), tbl.Schema())
	both, err := expr.Conjoin(a, b)
	if err != nil {
		t.Fatalf("Conjoin() error = %v", err)
	}

	va, _ := view.Filter(tbl, a)
	vb, _ := view.Filter(tbl, b)
	vboth, _ := view.Filter(tbl, both)

	// Filtering by the conjunction selects the intersection.
	inA := make(map[int]bool)
	for _, i := range va.SourceIndices() {
		inA[i] = true
	}
	var want []int
	for _, i := range vb.SourceIndices() {
		if inA[i] {
			want = append(want, i)
		}
	}
	got := vboth.SourceIndices()
	if len(got) != len(want) {
		t.Fatalf("conjunction selected %v, intersection is %v", got, want)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("conjunction selected %v, intersection is %v", got, want)
		}
	}
}

func TestFromIndices(t *testing.T) {
	tbl := tracks(t)

	tests := []struct {
		name    string
		sel     []int
		wantErr bool
	}{
		{"valid", []int{0, 2}, false},
		{"empty", nil, false},
		{"out of range", []int{0, 3}, true},
		{"not ascending", []int{2, 0}, true},
		{"repeated", []int{1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := view.FromIndices(tbl, tt.sel)
			if tt.wantErr {
				if !errors.Is(err, table.ErrIndexOutOfRange) {
					t.Errorf("FromIndices(%v) error = %v, want ErrIndexOutOfRange", tt.sel, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromIndices(%v) error = %v", tt.sel, err)
			}
			if v.Len() != len(tt.sel) {
				t.Errorf("Len() = %d, want %d", v.Len(), len(tt.sel))
			}
		})
	}
}

func TestPartition(t *testing.T) {
	tbl := tracks(t)
	p := view.NewPartition(compile(t, expr.Lt(expr.Col("eta"), expr.Lit(0)), tbl.Schema()))

	if p.Current() != nil {
		t.Fatal("Current() before Apply() should be nil")
	}

	v, err := p.Apply(tbl, []int{1, 2})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if v.Len() != 1 || v.SourceIndex(0) != 2 {
		t.Errorf("Apply([1 2]) selected %v, want [2]", v.SourceIndices())
	}
	if p.Current() != v {
		t.Error("Current() does not return the latest view")
	}

	// Re-applying with a different candidate set replaces the selection.
	v2, err := p.Apply(tbl, []int{0, 1})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if v2.Len() != 1 || v2.SourceIndex(0) != 0 {
		t.Errorf("Apply([0 1]) selected %v, want [0]", v2.SourceIndices())
	}

	if _, err := p.Apply(tbl, []int{2, 1}); !errors.Is(err, table.ErrIndexOutOfRange) {
		t.Errorf("Apply() with descending candidates error = %v, want ErrIndexOutOfRange", err)
	}

	all, err := p.ApplyAll(tbl)
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	if got := all.SourceIndices(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("ApplyAll() selected %v, want [0 2]", got)
	}
}
