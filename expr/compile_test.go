package expr_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/table"
)

func testTable(t *testing.T) *table.Table {
	t.Helper()
	schema := table.MustSchema(
		table.Col("id", table.Int64),
		table.Col("eta", table.Float64),
		table.Col("good", table.Bool),
	)
	tbl, err := table.Bind(schema, map[string]interface{}{
		"id":   []int64{0, 1, 2},
		"eta":  []float64{-1.0, 0.5, -0.2},
		"good": []bool{true, true, false},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	return tbl
}

func TestCompile_Eval(t *testing.T) {
	tbl := testTable(t)

	tests := []struct {
		name string
		e    expr.Expr
		want []bool // per row
	}{
		{
			name: "eta below zero",
			e:    expr.Lt(expr.Col("eta"), expr.Lit(0)),
			want: []bool{true, false, true},
		},
		{
			name: "abs of eta",
			e:    expr.Lt(expr.CallFn("abs", expr.Col("eta")), expr.Lit(0.3)),
			want: []bool{false, false, true},
		},
		{
			name: "conjunction with bool column",
			e:    expr.And(expr.Col("good"), expr.Lt(expr.Col("eta"), expr.Lit(0))),
			want: []bool{true, false, false},
		},
		{
			name: "disjunction",
			e:    expr.Or(expr.Not(expr.Col("good")), expr.Gt(expr.Col("eta"), expr.Lit(0))),
			want: []bool{false, true, true},
		},
		{
			name: "arithmetic",
			e:    expr.Ge(expr.Add(expr.Mul(expr.Col("eta"), expr.Lit(2)), expr.Lit(1)), expr.Lit(0)),
			want: []bool{false, true, true},
		},
		{
			name: "constant folds to true",
			e:    expr.Lt(expr.Lit(1), expr.Lit(2)),
			want: []bool{true, true, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := expr.Compile(tt.e, tbl.Schema())
			if err != nil {
				t.Fatalf("Compile(%s) error = %v", tt.e, err)
			}
			for i, want := range tt.want {
				if got := p.Eval(tbl, i); got != want {
					t.Errorf("%s row %d = %v, want %v", tt.e, i, got, want)
				}
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	schema := testTable(t).Schema()

	tests := []struct {
		name    string
		e       expr.Expr
		wantErr error
	}{
		{"unknown column", expr.Lt(expr.Col("pt"), expr.Lit(0)), expr.ErrUnknownColumn},
		{"arithmetic over bool", expr.Add(expr.Col("good"), expr.Lit(1)), expr.ErrTypeMismatch},
		{"comparison over bool", expr.Lt(expr.Col("good"), expr.Lit(1)), expr.ErrTypeMismatch},
		{"logical over numeric", expr.And(expr.Col("eta"), expr.Col("good")), expr.ErrTypeMismatch},
		{"not of numeric", expr.Not(expr.Col("eta")), expr.ErrTypeMismatch},
		{"numeric top level", expr.Add(expr.Col("eta"), expr.Lit(1)), expr.ErrTypeMismatch},
		{"unknown function", expr.Gt(expr.CallFn("sinh", expr.Col("eta")), expr.Lit(0)), expr.ErrTypeMismatch},
		{"wrong arity", expr.Gt(expr.CallFn("atan2", expr.Col("eta")), expr.Lit(0)), expr.ErrTypeMismatch},
		{"param without store", expr.Lt(expr.Col("eta"), expr.Param("cut")), expr.ErrUnknownParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := expr.Compile(tt.e, schema); !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile(%s) error = %v, want %v", tt.e, err, tt.wantErr)
			}
		})
	}
}

func TestCompile_Params(t *testing.T) {
	tbl := testTable(t)
	lookup := func(name string) (float64, bool) {
		if name == "eta.cut" {
			return 0, true
		}
		return 0, false
	}

	p, err := expr.Compile(expr.Lt(expr.Col("eta"), expr.Param("eta.cut")),
		tbl.Schema(), expr.WithParams(lookup))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []bool{true, false, true}
	for i, w := range want {
		if got := p.Eval(tbl, i); got != w {
			t.Errorf("row %d = %v, want %v", i, got, w)
		}
	}

	_, err = expr.Compile(expr.Lt(expr.Col("eta"), expr.Param("missing")),
		tbl.Schema(), expr.WithParams(lookup))
	if !errors.Is(err, expr.ErrUnknownParam) {
		t.Errorf("Compile() with missing param error = %v, want ErrUnknownParam", err)
	}
}

func TestCompileValue(t *testing.T) {
	tbl := testTable(t)

	f, err := expr.CompileValue(expr.CallFn("pow", expr.Col("eta"), expr.Lit(2)), tbl.Schema())
	if err != nil {
		t.Fatalf("CompileValue() error = %v", err)
	}
	want := []float64{1.0, 0.25, 0.04}
	for i, w := range want {
		if got := f.Eval(tbl, i); math.Abs(got-w) > 1e-12 {
			t.Errorf("row %d = %g, want %g", i, got, w)
		}
	}

	if _, err := expr.CompileValue(expr.Col("good"), tbl.Schema()); !errors.Is(err, expr.ErrTypeMismatch) {
		t.Errorf("CompileValue() over bool error = %v, want ErrTypeMismatch", err)
	}
}

func TestConjoin(t *testing.T) {
	tbl := testTable(t)
	a, err := expr.Compile(expr.Lt(expr.Col("eta"), expr.Lit(0)), tbl.Schema())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	b, err := expr.Compile(expr.Col("good"), tbl.Schema())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	both, err := expr.Conjoin(a, b)
	if err != nil {
		t.Fatalf("Conjoin() error = %v", err)
	}
	// Conjunction holds exactly where every input holds.
	for i := 0; i < tbl.Len(); i++ {
		want := a.Eval(tbl, i) && b.Eval(tbl, i)
		if got := both.Eval(tbl, i); got != want {
			t.Errorf("row %d = %v, want %v", i, got, want)
		}
	}
}

func TestExprString(t *testing.T) {
	e := expr.And(
		expr.Lt(expr.CallFn("abs", expr.Col("eta")), expr.Param("eta.cut")),
		expr.Col("good"),
	)
	want := "((abs(eta) < $eta.cut) && good)"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
