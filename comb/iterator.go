package comb

import (
	"fmt"
	"sort"

	"github.com/vegasq/evtab/table"
)

// Iterator is a stateful forward-only cursor over the valid index tuples for
// a fixed set of tables and a policy. It is not restartable: construct a new
// iterator to re-enumerate. The iterator holds only its own cursor as
// mutable state, so independent iterators over the same immutable tables may
// run concurrently.
type Iterator struct {
	p     Policy
	slots []slot
	cur   []int // positions into each slot's candidate list

	started bool
	done    bool

	// max-matches bookkeeping, counted per starting element
	lastFirst  int
	firstCount int
}

// slot binds one tuple position to a table. Slots over the same table
// identity share candidate data, which makes the order constraint a plain
// position comparison and turns block grouping into a sorted-index walk.
type slot struct {
	rel      table.Relation
	cand     []int     // candidate original row indices, ascending
	keys     []float64 // grouping key per candidate, parallel to cand
	byKey    map[float64][]int
	prevSame int // nearest earlier slot over the same table, or -1
}

// candidateData is the per-table-identity part of a slot.
type candidateData struct {
	cand  []int
	keys  []float64
	byKey map[float64][]int
}

// New validates the policy against the supplied tables and returns a lazy
// iterator. The slot count declared by the policy must equal the number of
// tables (ErrMismatchedTableArity). An empty input table yields an
// immediately exhausted iterator, not an error.
func New(p Policy, tables ...table.Relation) (*Iterator, error) {
	if p.Slots < 1 {
		return nil, fmt.Errorf("%w: policy declares %d slots", ErrMismatchedTableArity, p.Slots)
	}
	if p.Slots != len(tables) {
		return nil, fmt.Errorf("%w: policy declares %d slots, got %d tables",
			ErrMismatchedTableArity, p.Slots, len(tables))
	}

	byIdentity := make(map[table.Relation]*candidateData, len(tables))
	slots := make([]slot, len(tables))
	for j, rel := range tables {
		data, ok := byIdentity[rel]
		if !ok {
			var err error
			data, err = buildCandidates(p, rel)
			if err != nil {
				return nil, err
			}
			byIdentity[rel] = data
		}
		prevSame := -1
		for k := j - 1; k >= 0; k-- {
			if tables[k] == rel {
				prevSame = k
				break
			}
		}
		slots[j] = slot{
			rel:      rel,
			cand:     data.cand,
			keys:     data.keys,
			byKey:    data.byKey,
			prevSame: prevSame,
		}
	}

	return &Iterator{
		p:         p,
		slots:     slots,
		cur:       make([]int, len(slots)),
		lastFirst: -1,
	}, nil
}

// buildCandidates computes the candidate rows of one table under the policy:
// rows carrying the skip key are excluded entirely, as are rows failing the
// per-element filter.
func buildCandidates(p Policy, rel table.Relation) (*candidateData, error) {
	var keyCol table.Column
	if p.Key != "" {
		col, ok := table.ColumnByName(rel, p.Key)
		if !ok {
			return nil, fmt.Errorf("%w: key column %q", table.ErrUnknownColumn, p.Key)
		}
		if !col.Desc().Type.Numeric() && col.Desc().Kind != table.Dynamic {
			return nil, fmt.Errorf("%w: key column %q is %s, not numeric",
				table.ErrSchemaMismatch, p.Key, col.Desc().Type)
		}
		keyCol = col
	}
	if p.Filter != nil && !p.Filter.Schema().Equal(rel.Schema()) {
		return nil, fmt.Errorf("%w: element filter compiled against a different schema",
			table.ErrSchemaMismatch)
	}

	data := &candidateData{}
	for i := 0; i < rel.Len(); i++ {
		if p.Filter != nil && !p.Filter.Eval(rel, i) {
			continue
		}
		if keyCol != nil {
			k := keyCol.Float64(i)
			if p.Skip != nil && k == *p.Skip {
				continue
			}
			data.keys = append(data.keys, k)
		}
		data.cand = append(data.cand, i)
	}

	if p.Key != "" {
		data.byKey = make(map[float64][]int)
		for pos, k := range data.keys {
			data.byKey[k] = append(data.byKey[k], pos)
		}
	}
	return data, nil
}

// Next advances to the lexicographically next valid tuple and returns the
// row indices, one per slot. The second result is false once no
// lexicographically greater valid tuple exists.
func (it *Iterator) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}
	var ok bool
	if !it.started {
		it.started = true
		ok = it.first()
	} else {
		ok = it.advanceFrom(len(it.slots) - 1)
	}
	for ok && it.limitReached() {
		ok = it.advanceFrom(0)
	}
	if !ok {
		it.done = true
		return nil, false
	}
	it.countTuple()
	return it.tuple(), true
}

func (it *Iterator) first() bool {
	for j := range it.cur {
		it.cur[j] = 0
	}
	it.cur[0] = -1
	return it.advanceFrom(0)
}

// advanceFrom increments slot j to its next valid position and settles every
// deeper slot at its first valid position, backtracking as needed. Returns
// false when the sequence is exhausted.
func (it *Iterator) advanceFrom(j int) bool {
	k := j
	for {
		if k < 0 {
			return false
		}
		it.cur[k]++
		if !it.seekValid(k) {
			k--
			continue
		}
		m := k + 1
		for m < len(it.slots) {
			it.cur[m] = 0
			if !it.seekValid(m) {
				break
			}
			m++
		}
		if m == len(it.slots) {
			return true
		}
		k = m - 1
	}
}

// seekValid moves slot m's position forward to the first valid spot at or
// after the current one: within bounds, respecting the ordering constraint
// against the nearest earlier slot over the same table, and (for block
// policies) inside the key group of the tuple's first element.
func (it *Iterator) seekValid(m int) bool {
	s := &it.slots[m]
	pos := it.cur[m]
	if pos < 0 {
		pos = 0
	}
	if s.prevSame >= 0 && it.p.Order != Full {
		min := it.cur[s.prevSame]
		if it.p.Order == StrictlyUpper {
			min++
		}
		if pos < min {
			pos = min
		}
	}
	if it.p.Key != "" && m > 0 {
		key := it.slots[0].keys[it.cur[0]]
		group := s.byKey[key]
		i := sort.SearchInts(group, pos)
		if i == len(group) {
			return false
		}
		pos = group[i]
	}
	if pos >= len(s.cand) {
		return false
	}
	it.cur[m] = pos
	return true
}

func (it *Iterator) limitReached() bool {
	if it.p.MaxMatches <= 0 {
		return false
	}
	return it.cur[0] == it.lastFirst && it.firstCount >= it.p.MaxMatches
}

func (it *Iterator) countTuple() {
	if it.p.MaxMatches <= 0 {
		return
	}
	if it.cur[0] != it.lastFirst {
		it.lastFirst = it.cur[0]
		it.firstCount = 0
	}
	it.firstCount++
}

func (it *Iterator) tuple() []int {
	out := make([]int, len(it.slots))
	for m, s := range it.slots {
		out[m] = s.cand[it.cur[m]]
	}
	return out
}

// Collect drains the iterator into a slice. Intended for tests and small
// sequences; production callers should consume Next lazily.
func (it *Iterator) Collect() [][]int {
	var out [][]int
	for {
		t, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}
