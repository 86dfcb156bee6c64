package expr

import "math"

// mathFunc is one entry of the fixed function library. The compiler supports
// exactly this set; there is no user extension point.
type mathFunc struct {
	arity int
	f1    func(float64) float64
	f2    func(float64, float64) float64
}

var mathFuncs = map[string]mathFunc{
	"abs":   {arity: 1, f1: math.Abs},
	"sqrt":  {arity: 1, f1: math.Sqrt},
	"pow":   {arity: 2, f2: math.Pow},
	"sin":   {arity: 1, f1: math.Sin},
	"cos":   {arity: 1, f1: math.Cos},
	"tan":   {arity: 1, f1: math.Tan},
	"asin":  {arity: 1, f1: math.Asin},
	"acos":  {arity: 1, f1: math.Acos},
	"atan":  {arity: 1, f1: math.Atan},
	"atan2": {arity: 2, f2: math.Atan2},
	"exp":   {arity: 1, f1: math.Exp},
	"log":   {arity: 1, f1: math.Log},
}

// Functions returns the names of the supported math functions.
func Functions() []string {
	out := make([]string, 0, len(mathFuncs))
	for name := range mathFuncs {
		out = append(out, name)
	}
	return out
}
