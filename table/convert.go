package table

import "golang.org/x/exp/constraints"

// AsFloat64s widens a numeric slice into a fresh []float64 buffer suitable
// for Bind.
func AsFloat64s[T constraints.Integer | constraints.Float](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// AsInt64s widens an integer slice into a fresh []int64 buffer suitable for
// Bind.
func AsInt64s[T constraints.Integer](xs []T) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}
