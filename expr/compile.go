package expr

import (
	"errors"
	"fmt"

	"github.com/vegasq/evtab/table"
)

var (
	// ErrUnknownColumn indicates a column reference that does not resolve
	// against the compilation schema.
	ErrUnknownColumn = table.ErrUnknownColumn

	// ErrTypeMismatch indicates operands whose types disagree with an
	// operator or function.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownParam indicates a parameter reference with no value in the
	// configured parameter store.
	ErrUnknownParam = errors.New("unknown parameter")
)

// Option configures compilation.
type Option func(*compiler)

// WithParams supplies the lookup used to substitute ParamRef nodes as
// compile-time literals, typically params.Store.Lookup.
func WithParams(lookup func(name string) (float64, bool)) Option {
	return func(c *compiler) { c.params = lookup }
}

type numFn func(rel table.Relation, row int) float64
type boolFn func(rel table.Relation, row int) bool

// Predicate is a compiled boolean function of one row's column values,
// bound to the schema it was compiled against. Evaluation cannot fail:
// every failure mode is checked at compile time.
type Predicate struct {
	schema *table.Schema
	eval   boolFn
	source Expr
}

// Schema returns the schema the predicate was compiled against.
func (p *Predicate) Schema() *table.Schema { return p.schema }

// Eval evaluates the predicate over row i of rel. rel must conform to the
// compilation schema; views enforce this before scanning.
func (p *Predicate) Eval(rel table.Relation, row int) bool { return p.eval(rel, row) }

func (p *Predicate) String() string { return p.source.String() }

// Formula is a compiled numeric function of one row's column values.
type Formula struct {
	schema *table.Schema
	eval   numFn
	source Expr
}

// Schema returns the schema the formula was compiled against.
func (f *Formula) Schema() *table.Schema { return f.schema }

// Eval evaluates the formula over row i of rel.
func (f *Formula) Eval(rel table.Relation, row int) float64 { return f.eval(rel, row) }

func (f *Formula) String() string { return f.source.String() }

// Compile validates a boolean expression against a schema and returns a
// reusable predicate. Column references must resolve (ErrUnknownColumn),
// operand types must agree (ErrTypeMismatch), and parameters must be
// substitutable (ErrUnknownParam). Constant subtrees are folded.
func Compile(e Expr, schema *table.Schema, opts ...Option) (*Predicate, error) {
	c := newCompiler(schema, opts)
	out, err := c.compile(e)
	if err != nil {
		return nil, err
	}
	if !out.isBool {
		return nil, fmt.Errorf("%w: predicate %s is numeric, not boolean", ErrTypeMismatch, e)
	}
	return &Predicate{schema: schema, eval: out.boolEval(), source: e}, nil
}

// CompileValue validates a numeric expression against a schema and returns
// a reusable formula.
func CompileValue(e Expr, schema *table.Schema, opts ...Option) (*Formula, error) {
	c := newCompiler(schema, opts)
	out, err := c.compile(e)
	if err != nil {
		return nil, err
	}
	if out.isBool {
		return nil, fmt.Errorf("%w: formula %s is boolean, not numeric", ErrTypeMismatch, e)
	}
	return &Formula{schema: schema, eval: out.numEval(), source: e}, nil
}

// CompileAll conjoins several declared filters into a single predicate so
// that one scan of the table applies them all.
func CompileAll(schema *table.Schema, exprs []Expr, opts ...Option) (*Predicate, error) {
	return Compile(And(exprs...), schema, opts...)
}

// Conjoin combines already-compiled predicates over the same schema into
// one that holds where all of them hold.
func Conjoin(ps ...*Predicate) (*Predicate, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: nothing to conjoin", ErrTypeMismatch)
	}
	schema := ps[0].schema
	src := make([]Expr, len(ps))
	for i, p := range ps {
		if !p.schema.Equal(schema) {
			return nil, fmt.Errorf("%w: predicates compiled against different schemas", ErrTypeMismatch)
		}
		src[i] = p.source
	}
	evals := make([]boolFn, len(ps))
	for i, p := range ps {
		evals[i] = p.eval
	}
	return &Predicate{
		schema: schema,
		source: And(src...),
		eval: func(rel table.Relation, row int) bool {
			for _, ev := range evals {
				if !ev(rel, row) {
					return false
				}
			}
			return true
		},
	}, nil
}

type compiler struct {
	schema *table.Schema
	params func(string) (float64, bool)
}

func newCompiler(schema *table.Schema, opts []Option) *compiler {
	c := &compiler{schema: schema}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// compiled is one validated subtree: either numeric or boolean, with the
// constant-folded value recorded when the subtree has no column references.
type compiled struct {
	isBool    bool
	num       numFn
	b         boolFn
	constNum  *float64
	constBool *bool
}

func constNum(v float64) compiled {
	return compiled{constNum: &v}
}

func constBool(v bool) compiled {
	return compiled{isBool: true, constBool: &v}
}

func (c compiled) numEval() numFn {
	if c.constNum != nil {
		v := *c.constNum
		return func(table.Relation, int) float64 { return v }
	}
	return c.num
}

func (c compiled) boolEval() boolFn {
	if c.constBool != nil {
		v := *c.constBool
		return func(table.Relation, int) bool { return v }
	}
	return c.b
}

func (c *compiler) compile(e Expr) (compiled, error) {
	switch n := e.(type) {
	case ColumnRef:
		return c.compileColumn(n)
	case Literal:
		switch v := n.Value.(type) {
		case float64:
			return constNum(v), nil
		case bool:
			return constBool(v), nil
		default:
			return compiled{}, fmt.Errorf("%w: literal %v has unsupported type %T", ErrTypeMismatch, n.Value, n.Value)
		}
	case ParamRef:
		if c.params == nil {
			return compiled{}, fmt.Errorf("%w: %q (no parameter store configured)", ErrUnknownParam, n.Name)
		}
		v, ok := c.params(n.Name)
		if !ok {
			return compiled{}, fmt.Errorf("%w: %q", ErrUnknownParam, n.Name)
		}
		return constNum(v), nil
	case Unary:
		return c.compileUnary(n)
	case Binary:
		return c.compileBinary(n)
	case Call:
		return c.compileCall(n)
	default:
		return compiled{}, fmt.Errorf("%w: unsupported node %T", ErrTypeMismatch, e)
	}
}

func (c *compiler) compileColumn(n ColumnRef) (compiled, error) {
	ord, ok := c.schema.Ordinal(n.Name)
	if !ok {
		return compiled{}, fmt.Errorf("%w: %q", ErrUnknownColumn, n.Name)
	}
	desc := c.schema.Descriptor(ord)
	switch {
	case desc.Type.Numeric() || desc.Kind == table.Dynamic:
		return compiled{num: func(rel table.Relation, row int) float64 {
			return rel.Column(ord).Float64(row)
		}}, nil
	case desc.Type == table.Bool:
		return compiled{isBool: true, b: func(rel table.Relation, row int) bool {
			return rel.Column(ord).Value(row).(bool)
		}}, nil
	default:
		return compiled{}, fmt.Errorf("%w: column %q has type %s, unusable in expressions",
			ErrTypeMismatch, n.Name, desc.Type)
	}
}

func (c *compiler) compileUnary(n Unary) (compiled, error) {
	x, err := c.compile(n.X)
	if err != nil {
		return compiled{}, err
	}
	switch n.Op {
	case OpNeg:
		if x.isBool {
			return compiled{}, fmt.Errorf("%w: negating boolean %s", ErrTypeMismatch, n.X)
		}
		if x.constNum != nil {
			return constNum(-*x.constNum), nil
		}
		f := x.num
		return compiled{num: func(rel table.Relation, row int) float64 { return -f(rel, row) }}, nil
	case OpNot:
		if !x.isBool {
			return compiled{}, fmt.Errorf("%w: logical not of numeric %s", ErrTypeMismatch, n.X)
		}
		if x.constBool != nil {
			return constBool(!*x.constBool), nil
		}
		f := x.b
		return compiled{isBool: true, b: func(rel table.Relation, row int) bool { return !f(rel, row) }}, nil
	default:
		return compiled{}, fmt.Errorf("%w: unknown unary operator %d", ErrTypeMismatch, n.Op)
	}
}

func (c *compiler) compileBinary(n Binary) (compiled, error) {
	l, err := c.compile(n.Left)
	if err != nil {
		return compiled{}, err
	}
	r, err := c.compile(n.Right)
	if err != nil {
		return compiled{}, err
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv:
		if l.isBool || r.isBool {
			return compiled{}, fmt.Errorf("%w: arithmetic over boolean in %s", ErrTypeMismatch, n)
		}
		op := arithOps[n.Op]
		if l.constNum != nil && r.constNum != nil {
			return constNum(op(*l.constNum, *r.constNum)), nil
		}
		lf, rf := l.numEval(), r.numEval()
		return compiled{num: func(rel table.Relation, row int) float64 {
			return op(lf(rel, row), rf(rel, row))
		}}, nil

	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		if l.isBool || r.isBool {
			return compiled{}, fmt.Errorf("%w: comparison over boolean in %s", ErrTypeMismatch, n)
		}
		op := cmpOps[n.Op]
		if l.constNum != nil && r.constNum != nil {
			return constBool(op(*l.constNum, *r.constNum)), nil
		}
		lf, rf := l.numEval(), r.numEval()
		return compiled{isBool: true, b: func(rel table.Relation, row int) bool {
			return op(lf(rel, row), rf(rel, row))
		}}, nil

	case OpAnd, OpOr:
		if !l.isBool || !r.isBool {
			return compiled{}, fmt.Errorf("%w: logical operator over numeric in %s", ErrTypeMismatch, n)
		}
		if l.constBool != nil && r.constBool != nil {
			if n.Op == OpAnd {
				return constBool(*l.constBool && *r.constBool), nil
			}
			return constBool(*l.constBool || *r.constBool), nil
		}
		lf, rf := l.boolEval(), r.boolEval()
		if n.Op == OpAnd {
			return compiled{isBool: true, b: func(rel table.Relation, row int) bool {
				return lf(rel, row) && rf(rel, row)
			}}, nil
		}
		return compiled{isBool: true, b: func(rel table.Relation, row int) bool {
			return lf(rel, row) || rf(rel, row)
		}}, nil

	default:
		return compiled{}, fmt.Errorf("%w: unknown binary operator %d", ErrTypeMismatch, n.Op)
	}
}

func (c *compiler) compileCall(n Call) (compiled, error) {
	def, ok := mathFuncs[n.Name]
	if !ok {
		return compiled{}, fmt.Errorf("%w: unknown function %q", ErrTypeMismatch, n.Name)
	}
	if len(n.Args) != def.arity {
		return compiled{}, fmt.Errorf("%w: %s takes %d arguments, got %d",
			ErrTypeMismatch, n.Name, def.arity, len(n.Args))
	}
	args := make([]compiled, len(n.Args))
	allConst := true
	for i, a := range n.Args {
		ca, err := c.compile(a)
		if err != nil {
			return compiled{}, err
		}
		if ca.isBool {
			return compiled{}, fmt.Errorf("%w: %s argument %s is boolean", ErrTypeMismatch, n.Name, a)
		}
		if ca.constNum == nil {
			allConst = false
		}
		args[i] = ca
	}

	if def.arity == 1 {
		if allConst {
			return constNum(def.f1(*args[0].constNum)), nil
		}
		af := args[0].numEval()
		f := def.f1
		return compiled{num: func(rel table.Relation, row int) float64 {
			return f(af(rel, row))
		}}, nil
	}

	if allConst {
		return constNum(def.f2(*args[0].constNum, *args[1].constNum)), nil
	}
	a0, a1 := args[0].numEval(), args[1].numEval()
	f := def.f2
	return compiled{num: func(rel table.Relation, row int) float64 {
		return f(a0(rel, row), a1(rel, row))
	}}, nil
}

var arithOps = map[BinaryOp]func(a, b float64) float64{
	OpAdd: func(a, b float64) float64 { return a + b },
	OpSub: func(a, b float64) float64 { return a - b },
	OpMul: func(a, b float64) float64 { return a * b },
	OpDiv: func(a, b float64) float64 { return a / b },
}

var cmpOps = map[BinaryOp]func(a, b float64) bool{
	OpEq: func(a, b float64) bool { return a == b },
	OpNe: func(a, b float64) bool { return a != b },
	OpLt: func(a, b float64) bool { return a < b },
	OpLe: func(a, b float64) bool { return a <= b },
	OpGt: func(a, b float64) bool { return a > b },
	OpGe: func(a, b float64) bool { return a >= b },
}
