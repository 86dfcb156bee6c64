package params_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/params"
	"github.com/vegasq/evtab/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "cuts.ini", `
max_tracks = 100

[eta]
cut = -0.5
window = 2.5
`)
	s, err := params.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	tests := []struct {
		name string
		want float64
	}{
		{"max_tracks", 100},
		{"eta.cut", -0.5},
		{"eta.window", 2.5},
	}
	for _, tt := range tests {
		v, ok := s.Lookup(tt.name)
		if !ok || v != tt.want {
			t.Errorf("Lookup(%q) = %v, %v, want %v, true", tt.name, v, ok, tt.want)
		}
	}

	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup(nope) succeeded, want miss")
	}
	if _, err := s.Float("nope"); !errors.Is(err, params.ErrUnknownParam) {
		t.Errorf("Float(nope) error = %v, want ErrUnknownParam", err)
	}
}

func TestLoad_NonNumeric(t *testing.T) {
	path := writeFile(t, "bad.ini", "name = alice\n")
	if _, err := params.Load(path); err == nil {
		t.Error("Load() with non-numeric value succeeded, want error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := params.Load(filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Error("Load() of missing file succeeded, want error")
	}
}

func TestStore_FeedsCompiler(t *testing.T) {
	s := params.FromMap(map[string]float64{"eta.cut": 0})
	schema := table.MustSchema(table.Col("eta", table.Float64))
	tbl, err := table.Bind(schema, map[string]interface{}{
		"eta": []float64{-1.0, 0.5},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	p, err := expr.Compile(expr.Lt(expr.Col("eta"), expr.Param("eta.cut")),
		schema, expr.WithParams(s.Lookup))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !p.Eval(tbl, 0) || p.Eval(tbl, 1) {
		t.Error("parameter-backed predicate selected the wrong rows")
	}
}
