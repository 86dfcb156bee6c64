// Package comb lazily enumerates index tuples across one or more tables.
//
// A tuple has one row index per slot; slots are bound to specific tables
// and a table may occupy several slots. The full sequence is never
// materialized: an Iterator advances to the lexicographically next valid
// tuple on demand.
//
// Ordering policies constrain slots that share a table identity: Full
// enumerates the independent Cartesian product, Upper restricts to
// non-decreasing index sequences, and StrictlyUpper to strictly increasing
// ones, which yields every unordered combination exactly once.
//
// Block policies additionally group by equality of a named key column:
// candidates for a tuple are restricted to rows whose key equals the key of
// the tuple's first element. A designated skip value excludes rows entirely,
// and a max-matches bound truncates the tuples generated per starting
// element, first encountered first kept.
//
// Tuple ordering compares raw row indices only. It is deterministic given
// the input table order and carries no data-value semantics.
package comb

import (
	"errors"
	"fmt"

	"github.com/vegasq/evtab/expr"
	"github.com/vegasq/evtab/table"
)

// ErrMismatchedTableArity indicates that the number of slots declared by the
// policy disagrees with the number of tables supplied.
var ErrMismatchedTableArity = errors.New("mismatched table arity")

// Order is the index-ordering constraint applied between slots that share a
// table identity.
type Order int

const (
	// Full enumerates the independent Cartesian product of all slots.
	Full Order = iota
	// Upper restricts slots over the same table to non-decreasing indices.
	Upper
	// StrictlyUpper restricts slots over the same table to strictly
	// increasing indices, so each unordered combination appears once.
	StrictlyUpper
)

func (o Order) String() string {
	switch o {
	case Full:
		return "full"
	case Upper:
		return "upper"
	case StrictlyUpper:
		return "strictly-upper"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Policy selects which index tuples belong to the enumerated sequence.
type Policy struct {
	Order Order
	Slots int

	// Key names a grouping column. When set, candidates for a tuple are
	// restricted to rows whose key equals the key of the tuple's first
	// element (a "block" policy).
	Key string

	// Skip excludes every row carrying this key value, entirely. Only
	// meaningful together with Key.
	Skip *float64

	// MaxMatches truncates, per starting element, the number of tuples
	// generated. Zero means unlimited. Only meaningful together with Key.
	MaxMatches int

	// Filter is an optional per-element predicate: a tuple is yielded only
	// if every individual element independently satisfies it. This is a
	// per-element test, not a joint tuple predicate.
	Filter *expr.Predicate
}

// FullPolicy enumerates the Cartesian product over the given slot count.
func FullPolicy(slots int) Policy { return Policy{Order: Full, Slots: slots} }

// UpperPolicy enumerates non-decreasing index tuples over the slot count.
func UpperPolicy(slots int) Policy { return Policy{Order: Upper, Slots: slots} }

// StrictlyUpperPolicy enumerates strictly increasing index tuples over the
// slot count.
func StrictlyUpperPolicy(slots int) Policy { return Policy{Order: StrictlyUpper, Slots: slots} }

// SkipValue is a convenience for Policy.Skip.
func SkipValue(v float64) *float64 { return &v }

// Combinations builds an iterator under the default policy for the given
// tables: StrictlyUpper when every slot is the same table, Full otherwise.
func Combinations(tables ...table.Relation) (*Iterator, error) {
	order := Full
	if len(tables) > 0 {
		same := true
		for _, t := range tables[1:] {
			if t != tables[0] {
				same = false
				break
			}
		}
		if same {
			order = StrictlyUpper
		}
	}
	return New(Policy{Order: order, Slots: len(tables)}, tables...)
}
