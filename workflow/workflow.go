// Package workflow wires processing units into a per-batch run plan.
//
// Each unit declares the table kinds it requires and the kinds it produces,
// by exact name; there is no signature inspection or reflection. A
// process-wide registry enforces that exactly one unit produces a given
// table kind, and resolves the dependency order once at build time. Wiring
// mistakes are configuration errors reported by Build, never runtime races.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vegasq/evtab/table"
)

var (
	// ErrDuplicateProducer indicates two units producing the same table kind.
	ErrDuplicateProducer = errors.New("duplicate producer for table kind")

	// ErrMissingProducer indicates a required table kind with no producer
	// and no external-feed declaration.
	ErrMissingProducer = errors.New("no producer for required table kind")

	// ErrDependencyCycle indicates units that require each other's outputs.
	ErrDependencyCycle = errors.New("dependency cycle between units")

	// ErrUnknownKind indicates a batch access to a table kind nothing put.
	ErrUnknownKind = errors.New("unknown table kind in batch")
)

// Unit is one processing step invoked once per batch. Units read the tables
// they declared as required and seal the tables they declared as produced.
type Unit interface {
	Name() string
	Requires() []string
	Produces() []string
	Process(b *Batch) error
}

// Batch carries the tables of one time frame between units. Nothing in a
// batch survives the invocation that created it.
type Batch struct {
	ID     uuid.UUID
	tables map[string]table.Relation
}

// NewBatch returns an empty batch with a fresh identity.
func NewBatch() *Batch {
	return &Batch{ID: uuid.New(), tables: make(map[string]table.Relation)}
}

// Put registers a produced table under its kind. Producing a kind twice in
// one batch is a wiring bug the registry should have caught, so it errors.
func (b *Batch) Put(kind string, rel table.Relation) error {
	if _, ok := b.tables[kind]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProducer, kind)
	}
	b.tables[kind] = rel
	return nil
}

// Get returns the table of the given kind.
func (b *Batch) Get(kind string) (table.Relation, error) {
	rel, ok := b.tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return rel, nil
}

// Kinds returns the number of tables the batch carries.
func (b *Batch) Kinds() int { return len(b.tables) }

// Registry collects units and externally fed table kinds, then validates
// the wiring into a Plan.
type Registry struct {
	units     []Unit
	producers map[string]Unit
	external  map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		producers: make(map[string]Unit),
		external:  make(map[string]bool),
	}
}

// Declare marks table kinds as supplied by the external feed rather than by
// a unit.
func (r *Registry) Declare(kinds ...string) {
	for _, k := range kinds {
		r.external[k] = true
	}
}

// Add registers a unit, enforcing the one-producer-per-kind rule.
func (r *Registry) Add(u Unit) error {
	for _, kind := range u.Produces() {
		if prev, ok := r.producers[kind]; ok {
			return fmt.Errorf("%w: %q produced by both %s and %s",
				ErrDuplicateProducer, kind, prev.Name(), u.Name())
		}
		if r.external[kind] {
			return fmt.Errorf("%w: %q is declared as externally fed, also produced by %s",
				ErrDuplicateProducer, kind, u.Name())
		}
		r.producers[kind] = u
	}
	r.units = append(r.units, u)
	return nil
}

// Plan is a validated, dependency-ordered sequence of units.
type Plan struct {
	order []Unit
}

// Build resolves every unit's required kinds by exact name and returns the
// topologically ordered run plan. Missing producers and cycles are
// configuration errors.
func (r *Registry) Build() (*Plan, error) {
	for _, u := range r.units {
		for _, kind := range u.Requires() {
			if !r.external[kind] {
				if _, ok := r.producers[kind]; !ok {
					return nil, fmt.Errorf("%w: %q required by %s", ErrMissingProducer, kind, u.Name())
				}
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Unit]int, len(r.units))
	var order []Unit

	var visit func(u Unit) error
	visit = func(u Unit) error {
		switch state[u] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: via %s", ErrDependencyCycle, u.Name())
		}
		state[u] = visiting
		for _, kind := range u.Requires() {
			if dep, ok := r.producers[kind]; ok && dep != u {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[u] = done
		order = append(order, u)
		return nil
	}
	for _, u := range r.units {
		if err := visit(u); err != nil {
			return nil, err
		}
	}
	return &Plan{order: order}, nil
}

// Units returns the plan's units in run order.
func (p *Plan) Units() []Unit {
	out := make([]Unit, len(p.order))
	copy(out, p.order)
	return out
}

// RunBatch invokes every unit in dependency order over one batch. A unit
// failure is fatal to the batch: no partially processed state is observable
// afterwards.
func (p *Plan) RunBatch(b *Batch) error {
	for _, u := range p.order {
		if err := u.Process(b); err != nil {
			return fmt.Errorf("unit %s failed: %w", u.Name(), err)
		}
	}
	slog.Info("batch processed", "batch", b.ID, "units", len(p.order), "tables", b.Kinds())
	return nil
}
