package director

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vegasq/evtab/table"
)

// ErrIncompatibleInputFileSet indicates that the resolved candidate-file
// counts disagree across table kinds. This is fatal at startup: batches are
// aligned by file position, so disagreement can never be tolerated per
// batch.
var ErrIncompatibleInputFileSet = errors.New("incompatible input file set")

// Source declares where one table kind's batches come from and the schema
// they bind to.
type Source struct {
	// Pattern is a glob resolving the kind's candidate files.
	Pattern string
	Schema  *table.Schema
}

// Batch is one aligned set of tables read from the i-th candidate file of
// every kind, tagged with a fresh identity.
type Batch struct {
	ID     uuid.UUID
	Tables map[string]*table.Table
}

// InputDirector reads aligned batches for a fixed set of table kinds.
type InputDirector struct {
	files   map[string][]string
	schemas map[string]*table.Schema
	batches int
}

// NewInputDirector resolves every source's candidate files and validates
// that the counts agree across kinds, failing with
// ErrIncompatibleInputFileSet otherwise.
func NewInputDirector(sources map[string]Source) (*InputDirector, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources declared", ErrIncompatibleInputFileSet)
	}
	d := &InputDirector{
		files:   make(map[string][]string, len(sources)),
		schemas: make(map[string]*table.Schema, len(sources)),
		batches: -1,
	}
	for kind, src := range sources {
		matches, err := filepath.Glob(src.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern for %s: %w", kind, err)
		}
		sort.Strings(matches)
		if d.batches == -1 {
			d.batches = len(matches)
		} else if len(matches) != d.batches {
			return nil, fmt.Errorf("%w: kind %q resolves %d files, others resolve %d",
				ErrIncompatibleInputFileSet, kind, len(matches), d.batches)
		}
		d.files[kind] = matches
		d.schemas[kind] = src.Schema
		slog.Info("input source resolved", "kind", kind, "files", len(matches))
	}
	return d, nil
}

// NewInputDirectorFromConfig resolves each kind's pattern from the config's
// tree resolution: <dir>/<tree>/<kind>-*.<ext>, ext depending on format.
func NewInputDirectorFromConfig(cfg Config, schemas map[string]*table.Schema) (*InputDirector, error) {
	sources := make(map[string]Source, len(schemas))
	for kind, schema := range schemas {
		pattern := filepath.Join(cfg.Dir, cfg.Tree(kind), kind+"-*.parquet")
		sources[kind] = Source{Pattern: pattern, Schema: schema}
	}
	return NewInputDirector(sources)
}

// NumBatches returns the agreed candidate-file count.
func (d *InputDirector) NumBatches() int { return d.batches }

// Files returns the resolved candidate files of one kind, in batch order.
func (d *InputDirector) Files(kind string) []string {
	out := make([]string, len(d.files[kind]))
	copy(out, d.files[kind])
	return out
}

// ReadBatch reads the i-th candidate file of every kind, concurrently, and
// returns the aligned batch. Snapshot files (.evtb) and parquet files are
// both accepted.
func (d *InputDirector) ReadBatch(ctx context.Context, i int) (*Batch, error) {
	if i < 0 || i >= d.batches {
		return nil, fmt.Errorf("%w: batch %d of %d", table.ErrIndexOutOfRange, i, d.batches)
	}

	var mu sync.Mutex
	tables := make(map[string]*table.Table, len(d.files))

	g, _ := errgroup.WithContext(ctx)
	for kind, files := range d.files {
		kind, path := kind, files[i]
		schema := d.schemas[kind]
		g.Go(func() error {
			t, err := readTableFile(path, schema)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			mu.Lock()
			tables[kind] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Batch{ID: uuid.New(), Tables: tables}, nil
}

func readTableFile(path string, schema *table.Schema) (*table.Table, error) {
	if strings.HasSuffix(path, ".evtb") {
		return readSnapshotFile(path, schema)
	}
	return ReadParquet(path, schema)
}
