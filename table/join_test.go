package table

import (
	"errors"
	"testing"
)

func bindTable(t *testing.T, s *Schema, buffers map[string]interface{}) *Table {
	t.Helper()
	tbl, err := Bind(s, buffers)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	return tbl
}

func TestJoin(t *testing.T) {
	left := bindTable(t, MustSchema(Col("id", Int64), Col("eta", Float64)),
		map[string]interface{}{
			"id":  []int64{0, 1},
			"eta": []float64{-1.0, 0.5},
		})
	right := bindTable(t, MustSchema(Col("phi", Float64)),
		map[string]interface{}{
			"phi": []float64{3.1, -2.7},
		})

	joined, err := Join(left, right)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if joined.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", joined.Len())
	}
	if joined.Schema().NumColumns() != 3 {
		t.Fatalf("NumColumns() = %d, want 3", joined.Schema().NumColumns())
	}

	// Row i of the join is the concatenation of row i of each input.
	for i := 0; i < joined.Len(); i++ {
		row, err := joined.Row(i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		lr, _ := left.Row(i)
		rr, _ := right.Row(i)
		for _, name := range []string{"id", "eta"} {
			got, _ := row.Value(name)
			want, _ := lr.Value(name)
			if got != want {
				t.Errorf("row %d %s = %v, want %v", i, name, got, want)
			}
		}
		got, _ := row.Value("phi")
		want, _ := rr.Value("phi")
		if got != want {
			t.Errorf("row %d phi = %v, want %v", i, got, want)
		}
	}

	// The join shares the inputs' columns rather than copying them.
	leftEta, _ := ColumnByName(left, "eta")
	joinEta, _ := ColumnByName(joined, "eta")
	if leftEta != joinEta {
		t.Error("joined column is not shared with its input")
	}
}

func TestJoin_Errors(t *testing.T) {
	a := bindTable(t, MustSchema(Col("x", Float64)),
		map[string]interface{}{"x": []float64{1, 2}})
	short := bindTable(t, MustSchema(Col("y", Float64)),
		map[string]interface{}{"y": []float64{1}})
	dup := bindTable(t, MustSchema(Col("x", Float64)),
		map[string]interface{}{"x": []float64{3, 4}})

	tests := []struct {
		name    string
		rels    []Relation
		wantErr error
	}{
		{"single input", []Relation{a}, ErrIncompatibleJoin},
		{"unequal sizes", []Relation{a, short}, ErrIncompatibleJoin},
		{"duplicate column", []Relation{a, dup}, ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Join(tt.rels...); !errors.Is(err, tt.wantErr) {
				t.Errorf("Join() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	px := bindTable(t, MustSchema(Col("px", Float64)),
		map[string]interface{}{"px": []float64{3, 0}})
	py := bindTable(t, MustSchema(Col("py", Float64)),
		map[string]interface{}{"py": []float64{4, 2}})

	joined, err := Join(px, py)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	// The derived column may depend on columns from both inputs.
	derived, err := Derive(joined, DynamicCol("sum", func(args []float64) float64 {
		return args[0] + args[1]
	}, "px", "py"))
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	row, err := derived.Row(0)
	if err != nil {
		t.Fatalf("Row(0) error = %v", err)
	}
	if got, _ := row.Float64("sum"); got != 7 {
		t.Errorf("sum[0] = %g, want 7", got)
	}

	_, err = Derive(joined, DynamicCol("bad", func(args []float64) float64 {
		return args[0]
	}, "pz"))
	if !errors.Is(err, ErrUnresolvedDependency) {
		t.Errorf("Derive() with missing input error = %v, want ErrUnresolvedDependency", err)
	}
}
