// Package expr implements the declarative expression compiler.
//
// An expression is a tree of column references, literals, external
// parameters, arithmetic/comparison/boolean operators, and calls into a
// fixed math function library. Expressions are built once with the
// constructor helpers (Col, Lit, Lt, And, CallFn, ...) and compiled against
// a single schema.
//
// All validation happens at compile time: column references must resolve,
// operand types must agree, and parameters must be substitutable. Constant
// subtrees are folded during compilation. By construction a compiled
// Predicate or Formula cannot fail at evaluation time, which is what allows
// views to scan a table without per-row error handling.
package expr
