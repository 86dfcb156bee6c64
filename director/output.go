package director

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/evtab/table"
)

// OutputDirector writes batches of tables to parquet files, one file per
// table kind per segment, under the tree resolved by its Config. After
// RollEvery merged batches the director rolls every kind to a new file.
type OutputDirector struct {
	cfg     Config
	seq     int
	merged  int
	targets map[string]*target
}

// target is the open output state for one table kind.
type target struct {
	kind     string
	tree     string
	descs    []table.ColumnDescriptor
	pqSchema *parquet.Schema
	file     *os.File
	w        *parquet.GenericWriter[map[string]interface{}]
}

// NewOutputDirector returns a director writing under cfg.Dir. Files are
// created lazily when a batch first carries a table kind.
func NewOutputDirector(cfg Config) *OutputDirector {
	return &OutputDirector{cfg: cfg, targets: make(map[string]*target)}
}

// WriteBatch appends every table of one merged batch to its kind's current
// file, then rolls when the configured batch count is reached.
func (d *OutputDirector) WriteBatch(tables map[string]*table.Table) error {
	for kind, t := range tables {
		tgt, err := d.ensureTarget(kind, t)
		if err != nil {
			return err
		}
		if err := writeParquetRows(tgt.w, t, tgt.descs); err != nil {
			return fmt.Errorf("failed to write %s: %w", kind, err)
		}
	}
	d.merged++
	if d.cfg.RollEvery > 0 && d.merged >= d.cfg.RollEvery {
		if err := d.roll(); err != nil {
			return err
		}
	}
	return nil
}

func (d *OutputDirector) ensureTarget(kind string, t *table.Table) (*target, error) {
	if tgt, ok := d.targets[kind]; ok {
		if !sameDescs(tgt.descs, storedSubset(t.Schema(), d.cfg.Columns(kind))) {
			return nil, fmt.Errorf("%w: table kind %q changed schema between batches",
				table.ErrSchemaMismatch, kind)
		}
		return tgt, nil
	}

	descs := storedSubset(t.Schema(), d.cfg.Columns(kind))
	if len(descs) == 0 {
		return nil, fmt.Errorf("%w: table kind %q resolves to no stored columns",
			table.ErrSchemaMismatch, kind)
	}
	pqSchema, err := parquetSchema(kind, descs)
	if err != nil {
		return nil, err
	}
	tgt := &target{kind: kind, tree: d.cfg.Tree(kind), descs: descs, pqSchema: pqSchema}
	if err := tgt.open(d.cfg.Dir, d.seq); err != nil {
		return nil, err
	}
	d.targets[kind] = tgt
	slog.Info("output target resolved", "kind", kind, "tree", tgt.tree, "columns", len(descs))
	return tgt, nil
}

// roll closes every kind's current file and advances the segment sequence.
func (d *OutputDirector) roll() error {
	for _, tgt := range d.targets {
		if err := tgt.close(); err != nil {
			return err
		}
	}
	d.seq++
	d.merged = 0
	for _, tgt := range d.targets {
		if err := tgt.open(d.cfg.Dir, d.seq); err != nil {
			return err
		}
	}
	slog.Info("rolled output files", "segment", d.seq)
	return nil
}

// Close finishes all open files.
func (d *OutputDirector) Close() error {
	var firstErr error
	for _, tgt := range d.targets {
		if err := tgt.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *target) open(dir string, seq int) error {
	treeDir := filepath.Join(dir, t.tree)
	if err := os.MkdirAll(treeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create tree directory: %w", err)
	}
	path := filepath.Join(treeDir, fmt.Sprintf("%s-%04d.parquet", t.kind, seq))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	t.file = f
	t.w = parquet.NewGenericWriter[map[string]interface{}](f, t.pqSchema)
	return nil
}

func (t *target) close() error {
	if t.w == nil {
		return nil
	}
	if err := t.w.Close(); err != nil {
		_ = t.file.Close()
		t.w, t.file = nil, nil
		return fmt.Errorf("failed to finish %s output: %w", t.kind, err)
	}
	err := t.file.Close()
	t.w, t.file = nil, nil
	if err != nil {
		return fmt.Errorf("failed to close %s output: %w", t.kind, err)
	}
	return nil
}

// storedSubset selects stored descriptors by name, keeping schema order;
// nil names selects all.
func storedSubset(schema *table.Schema, names []string) []table.ColumnDescriptor {
	stored := schema.Stored()
	if names == nil {
		return stored
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]table.ColumnDescriptor, 0, len(names))
	for _, desc := range stored {
		if want[desc.Name] {
			out = append(out, desc)
		}
	}
	return out
}

func sameDescs(a, b []table.ColumnDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type || a[i].Width != b[i].Width {
			return false
		}
	}
	return true
}
