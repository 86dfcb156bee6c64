package table

import "fmt"

type funcEntry struct {
	fn     Func
	inputs []string
}

// FuncRegistry maps derived-column function names to a pure function plus
// its declared input column names. Schemas bind dynamic columns by looking
// the function up at composition time, so a quantity can be declared once
// and attached to any schema that carries its inputs.
type FuncRegistry struct {
	funcs map[string]funcEntry
}

// NewFuncRegistry returns an empty registry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{funcs: make(map[string]funcEntry)}
}

// Register adds a named derived-column function. Re-registering a name is a
// configuration error.
func (r *FuncRegistry) Register(name string, fn Func, inputs ...string) error {
	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("derived function %q already registered", name)
	}
	if fn == nil {
		return fmt.Errorf("derived function %q is nil", name)
	}
	r.funcs[name] = funcEntry{fn: fn, inputs: inputs}
	return nil
}

// Column returns a dynamic column descriptor backed by the named registered
// function.
func (r *FuncRegistry) Column(colName, funcName string) (ColumnDescriptor, error) {
	e, ok := r.funcs[funcName]
	if !ok {
		return ColumnDescriptor{}, fmt.Errorf("%w: no derived function %q", ErrUnresolvedDependency, funcName)
	}
	return DynamicCol(colName, e.fn, e.inputs...), nil
}
