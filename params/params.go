// Package params resolves named external tunables from a configuration
// file at startup. Declared filters reference a parameter by name and the
// expression compiler substitutes its value as a compile-time literal, so a
// tuned cut costs nothing at evaluation time.
package params

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

// ErrUnknownParam indicates a parameter name the store does not carry.
var ErrUnknownParam = errors.New("unknown parameter")

// Store holds resolved numeric parameters. It is immutable after Load.
type Store struct {
	vals map[string]float64
}

// Load reads an INI file into a store. Keys of the default section resolve
// under their plain name; keys of named sections resolve as "section.key".
// Non-numeric values fail the load: a store never carries a value that
// cannot substitute into an expression.
func Load(path string) (*Store, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameter file: %w", err)
	}
	vals := make(map[string]float64)
	for _, section := range f.Sections() {
		prefix := ""
		if section.Name() != ini.DefaultSection {
			prefix = section.Name() + "."
		}
		for _, key := range section.Keys() {
			v, err := key.Float64()
			if err != nil {
				return nil, fmt.Errorf("parameter %q is not numeric: %w", prefix+key.Name(), err)
			}
			vals[prefix+key.Name()] = v
		}
	}
	return &Store{vals: vals}, nil
}

// FromMap builds a store from already-resolved values, mainly for tests and
// embedding callers.
func FromMap(m map[string]float64) *Store {
	vals := make(map[string]float64, len(m))
	for k, v := range m {
		vals[k] = v
	}
	return &Store{vals: vals}
}

// Lookup returns the named parameter. The signature matches what
// expr.WithParams expects.
func (s *Store) Lookup(name string) (float64, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Float returns the named parameter or ErrUnknownParam.
func (s *Store) Float(name string) (float64, error) {
	v, ok := s.vals[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return v, nil
}

// Len returns the number of parameters the store carries.
func (s *Store) Len() int { return len(s.vals) }
