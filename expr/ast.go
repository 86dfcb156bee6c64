package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a node of an expression tree. Trees are immutable once built and
// may be compiled against any number of schemas.
type Expr interface {
	fmt.Stringer
	node()
}

// ColumnRef references a named column of the schema the expression is
// compiled against.
type ColumnRef struct {
	Name string
}

// Literal is a constant value, float64 or bool.
type Literal struct {
	Value interface{}
}

// ParamRef references a named external tunable, substituted as a
// compile-time literal from a parameter store.
type ParamRef struct {
	Name string
}

// UnaryOp is the operator of a Unary node.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // numeric negation
	OpNot                // boolean negation
)

// Unary applies a unary operator to one operand.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// BinaryOp is the operator of a Binary node.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// Binary applies a binary operator to two operands.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Call invokes a function from the fixed math library.
type Call struct {
	Name string
	Args []Expr
}

func (ColumnRef) node() {}
func (Literal) node()   {}
func (ParamRef) node()  {}
func (Unary) node()     {}
func (Binary) node()    {}
func (Call) node()      {}

// Col references the named column.
func Col(name string) Expr { return ColumnRef{Name: name} }

// Lit is a numeric literal.
func Lit(v float64) Expr { return Literal{Value: v} }

// LitBool is a boolean literal.
func LitBool(v bool) Expr { return Literal{Value: v} }

// Param references the named external tunable.
func Param(name string) Expr { return ParamRef{Name: name} }

// Neg negates a numeric operand.
func Neg(x Expr) Expr { return Unary{Op: OpNeg, X: x} }

// Not negates a boolean operand.
func Not(x Expr) Expr { return Unary{Op: OpNot, X: x} }

// Add, Sub, Mul and Div build arithmetic nodes.
func Add(a, b Expr) Expr { return Binary{Op: OpAdd, Left: a, Right: b} }
func Sub(a, b Expr) Expr { return Binary{Op: OpSub, Left: a, Right: b} }
func Mul(a, b Expr) Expr { return Binary{Op: OpMul, Left: a, Right: b} }
func Div(a, b Expr) Expr { return Binary{Op: OpDiv, Left: a, Right: b} }

// Eq, Ne, Lt, Le, Gt and Ge build numeric comparison nodes.
func Eq(a, b Expr) Expr { return Binary{Op: OpEq, Left: a, Right: b} }
func Ne(a, b Expr) Expr { return Binary{Op: OpNe, Left: a, Right: b} }
func Lt(a, b Expr) Expr { return Binary{Op: OpLt, Left: a, Right: b} }
func Le(a, b Expr) Expr { return Binary{Op: OpLe, Left: a, Right: b} }
func Gt(a, b Expr) Expr { return Binary{Op: OpGt, Left: a, Right: b} }
func Ge(a, b Expr) Expr { return Binary{Op: OpGe, Left: a, Right: b} }

// And conjoins boolean operands. With no operands it is the always-true
// expression; with one it is that operand.
func And(xs ...Expr) Expr {
	switch len(xs) {
	case 0:
		return LitBool(true)
	case 1:
		return xs[0]
	}
	out := xs[0]
	for _, x := range xs[1:] {
		out = Binary{Op: OpAnd, Left: out, Right: x}
	}
	return out
}

// Or disjoins two boolean operands.
func Or(a, b Expr) Expr { return Binary{Op: OpOr, Left: a, Right: b} }

// CallFn invokes a named function from the math library.
func CallFn(name string, args ...Expr) Expr { return Call{Name: name, Args: args} }

func (e ColumnRef) String() string { return e.Name }

func (e Literal) String() string {
	switch v := e.Value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e ParamRef) String() string { return "$" + e.Name }

func (e Unary) String() string {
	switch e.Op {
	case OpNeg:
		return "-(" + e.X.String() + ")"
	default:
		return "!(" + e.X.String() + ")"
	}
}

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (e Binary) String() string {
	return "(" + e.Left.String() + " " + binaryOpNames[e.Op] + " " + e.Right.String() + ")"
}

func (e Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}
