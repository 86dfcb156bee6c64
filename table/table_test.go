package table

import (
	"errors"
	"math"
	"testing"
)

func trackSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(
		Col("id", Int64),
		Col("eta", Float64),
	)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return s
}

func TestNewSchema_DuplicateColumn(t *testing.T) {
	_, err := NewSchema(Col("pt", Float64), Col("pt", Int64))
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("NewSchema() error = %v, want ErrDuplicateColumn", err)
	}
}

func TestCursor_AppendAndSeal(t *testing.T) {
	s := trackSchema(t)
	c := NewCursor(s)

	want := []struct {
		id  int64
		eta float64
	}{
		{0, -1.0},
		{1, 0.5},
		{2, -0.2},
	}
	for _, row := range want {
		if err := c.Append(row.id, row.eta); err != nil {
			t.Fatalf("Append(%d, %g) error = %v", row.id, row.eta, err)
		}
	}

	tbl, err := c.Seal()
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if tbl.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(want))
	}
	for i, exp := range want {
		row, err := tbl.Row(i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		id, err := row.Int64("id")
		if err != nil {
			t.Fatalf("Int64(id) error = %v", err)
		}
		eta, err := row.Float64("eta")
		if err != nil {
			t.Fatalf("Float64(eta) error = %v", err)
		}
		if id != exp.id || eta != exp.eta {
			t.Errorf("row %d = (%d, %g), want (%d, %g)", i, id, eta, exp.id, exp.eta)
		}
	}
}

func TestCursor_AppendAfterSeal(t *testing.T) {
	c := NewCursor(trackSchema(t))
	if err := c.Append(int64(0), 1.0); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := c.Seal(); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if err := c.Append(int64(1), 2.0); !errors.Is(err, ErrSealedTable) {
		t.Errorf("Append() after seal error = %v, want ErrSealedTable", err)
	}
	if _, err := c.Seal(); !errors.Is(err, ErrSealedTable) {
		t.Errorf("second Seal() error = %v, want ErrSealedTable", err)
	}
}

func TestCursor_AppendValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []interface{}
	}{
		{"too few values", []interface{}{int64(1)}},
		{"too many values", []interface{}{int64(1), 2.0, 3.0}},
		{"wrong type", []interface{}{"x", 2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(trackSchema(t))
			if err := c.Append(tt.values...); !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("Append() error = %v, want ErrSchemaMismatch", err)
			}
		})
	}
}

func TestBind(t *testing.T) {
	s := trackSchema(t)

	tests := []struct {
		name    string
		buffers map[string]interface{}
		wantErr error
	}{
		{
			name: "valid",
			buffers: map[string]interface{}{
				"id":  []int64{0, 1, 2},
				"eta": []float64{-1.0, 0.5, -0.2},
			},
		},
		{
			name: "missing buffer",
			buffers: map[string]interface{}{
				"id": []int64{0, 1, 2},
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "extra buffer",
			buffers: map[string]interface{}{
				"id":  []int64{0},
				"eta": []float64{1},
				"phi": []float64{1},
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "wrong type",
			buffers: map[string]interface{}{
				"id":  []float64{0, 1, 2},
				"eta": []float64{-1.0, 0.5, -0.2},
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "length disagreement",
			buffers: map[string]interface{}{
				"id":  []int64{0, 1, 2},
				"eta": []float64{-1.0, 0.5},
			},
			wantErr: ErrSchemaMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Bind(s, tt.buffers)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Bind() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Bind() error = %v", err)
			}
			if tbl.Len() != 3 {
				t.Errorf("Len() = %d, want 3", tbl.Len())
			}
		})
	}
}

func TestTable_RowBounds(t *testing.T) {
	tbl, err := Bind(trackSchema(t), map[string]interface{}{
		"id":  []int64{0},
		"eta": []float64{1.5},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if _, err := tbl.Row(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Row(1) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := tbl.Row(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Row(-1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDynamicColumn(t *testing.T) {
	s, err := NewSchema(
		Col("px", Float64),
		Col("py", Float64),
		DynamicCol("pt", func(args []float64) float64 {
			return math.Sqrt(args[0]*args[0] + args[1]*args[1])
		}, "px", "py"),
	)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	tbl, err := Bind(s, map[string]interface{}{
		"px": []float64{3, 0},
		"py": []float64{4, 2},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	want := []float64{5, 2}
	for i, exp := range want {
		row, err := tbl.Row(i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		got, err := row.Float64("pt")
		if err != nil {
			t.Fatalf("Float64(pt) error = %v", err)
		}
		if got != exp {
			t.Errorf("pt[%d] = %g, want %g", i, got, exp)
		}
	}
}

func TestDynamicColumn_UnresolvedDependency(t *testing.T) {
	s, err := NewSchema(
		Col("px", Float64),
		DynamicCol("pt", func(args []float64) float64 { return args[0] + args[1] }, "px", "py"),
	)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	_, err = Bind(s, map[string]interface{}{"px": []float64{1}})
	if !errors.Is(err, ErrUnresolvedDependency) {
		t.Errorf("Bind() error = %v, want ErrUnresolvedDependency", err)
	}
}

func TestArrayColumn(t *testing.T) {
	s, err := NewSchema(ArrayCol("cov", 2), Col("id", Int64))
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	tbl, err := Bind(s, map[string]interface{}{
		"cov": []float64{1, 2, 3, 4},
		"id":  []int64{7, 8},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	row, err := tbl.Row(1)
	if err != nil {
		t.Fatalf("Row(1) error = %v", err)
	}
	v, err := row.Value("cov")
	if err != nil {
		t.Fatalf("Value(cov) error = %v", err)
	}
	arr, ok := v.([]float64)
	if !ok || len(arr) != 2 || arr[0] != 3 || arr[1] != 4 {
		t.Errorf("cov[1] = %v, want [3 4]", v)
	}
}

func TestFuncRegistry(t *testing.T) {
	reg := NewFuncRegistry()
	if err := reg.Register("pt", func(args []float64) float64 {
		return math.Hypot(args[0], args[1])
	}, "px", "py"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("pt", nil); err == nil {
		t.Error("Register() duplicate name succeeded, want error")
	}

	desc, err := reg.Column("pt", "pt")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if desc.Kind != Dynamic || len(desc.Inputs) != 2 {
		t.Errorf("Column() = %+v, want dynamic with 2 inputs", desc)
	}
	if _, err := reg.Column("x", "nope"); !errors.Is(err, ErrUnresolvedDependency) {
		t.Errorf("Column() unknown function error = %v, want ErrUnresolvedDependency", err)
	}
}

func TestAsFloat64s(t *testing.T) {
	got := AsFloat64s([]int32{1, 2, 3})
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("AsFloat64s() = %v, want [1 2 3]", got)
	}
}
