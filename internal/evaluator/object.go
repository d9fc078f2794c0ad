// Package evaluator holds the runtime value model shared by both
// execution engines, the environment chain, and the tree-walk evaluator.
package evaluator

import (
	"github.com/tandemjs/tandem/internal/ast"
)

type ObjectType string

const (
	NUMBER_OBJ    ObjectType = "NUMBER"
	STRING_OBJ    ObjectType = "STRING"
	BOOLEAN_OBJ   ObjectType = "BOOLEAN"
	NULL_OBJ      ObjectType = "NULL"
	UNDEFINED_OBJ ObjectType = "UNDEFINED"
	OBJECT_OBJ    ObjectType = "OBJECT"
	ARRAY_OBJ     ObjectType = "ARRAY"
	FUNCTION_OBJ  ObjectType = "FUNCTION"
	BUILTIN_OBJ   ObjectType = "BUILTIN"
	CLASS_OBJ     ObjectType = "CLASS"
	PROMISE_OBJ   ObjectType = "PROMISE"

	// Non-local exit signals. These flow through evaluation like values
	// but are never observable by guest code.
	RETURN_VALUE_OBJ    ObjectType = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    ObjectType = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ ObjectType = "CONTINUE_SIGNAL"
	EXCEPTION_OBJ       ObjectType = "EXCEPTION"
)

// Object is the interface satisfied by every runtime value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Undefined struct{}

func (u *Undefined) Type() ObjectType { return UNDEFINED_OBJ }
func (u *Undefined) Inspect() string  { return "undefined" }

// Shared singletons. Numbers and strings are immutable so identity never
// matters; for the fixed values it saves allocation.
var (
	TRUE      = &Boolean{Value: true}
	FALSE     = &Boolean{Value: false}
	NULL      = &Null{}
	UNDEFINED = &Undefined{}
)

func NativeBool(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

// ObjectValue is a mutable property bag with insertion-ordered keys and a
// non-owning prototype link. Property writes always hit own storage; the
// prototype chain is consulted on reads only.
type ObjectValue struct {
	keys  []string
	props map[string]Object
	Proto *ObjectValue

	// ClassName is set on class instances for display purposes.
	ClassName string
}

func NewObject() *ObjectValue {
	return &ObjectValue{props: make(map[string]Object)}
}

func (o *ObjectValue) Type() ObjectType { return OBJECT_OBJ }
func (o *ObjectValue) Inspect() string  { return inspectObject(o) }

// GetOwn returns an own property, ignoring the prototype chain.
func (o *ObjectValue) GetOwn(key string) (Object, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Get walks the prototype chain. The walk is cycle-guarded: prototype
// links can form loops through guest assignments.
func (o *ObjectValue) Get(key string) (Object, bool) {
	seen := map[*ObjectValue]bool{}
	for cur := o; cur != nil; cur = cur.Proto {
		if seen[cur] {
			break
		}
		seen[cur] = true
		if v, ok := cur.props[key]; ok {
			return v, true
		}
	}
	return UNDEFINED, false
}

// Set creates or updates an own property, preserving insertion order.
func (o *ObjectValue) Set(key string, val Object) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = val
}

// Delete removes an own property.
func (o *ObjectValue) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own property keys in insertion order.
func (o *ObjectValue) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Array is an object specialization holding dense elements; its length
// is always the highest set index + 1.
type Array struct {
	Elements []Object
}

func NewArray(elements []Object) *Array {
	if elements == nil {
		elements = []Object{}
	}
	return &Array{Elements: elements}
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string  { return inspectArray(a) }

// SetIndex writes an element, growing the array with undefined holes so
// the length invariant holds.
func (a *Array) SetIndex(i int, val Object) {
	for len(a.Elements) <= i {
		a.Elements = append(a.Elements, UNDEFINED)
	}
	a.Elements[i] = val
}

// FunctionKind tags how a function body executes. The tag is decided once,
// at compile time, never re-chosen during execution.
type FunctionKind int

const (
	// FnInterpreted bodies are evaluated by the tree-walk engine.
	FnInterpreted FunctionKind = iota
	// FnCompiled bodies run as bytecode through the VM.
	FnCompiled
	// FnBridged bodies were refused by the compiler; the VM redirects the
	// whole invocation to the tree-walk engine.
	FnBridged
)

func (k FunctionKind) String() string {
	switch k {
	case FnCompiled:
		return "compiled"
	case FnBridged:
		return "bridged"
	default:
		return "interpreted"
	}
}

// Function is a closure: parameters, a body in one of three executable
// forms, and shared ownership of its defining environment.
type Function struct {
	Name    string
	Params  []*ast.Param
	Body    *ast.BlockStatement
	Env     *Environment
	Kind    FunctionKind
	IsArrow bool
	IsAsync bool

	// Compiled holds the *bytecode.Function when Kind == FnCompiled. It is
	// declared as interface{} so this package stays independent of the
	// bytecode representation; the VM asserts the concrete type.
	Compiled interface{}

	// HomeClass links methods to the class that defined them, anchoring
	// super lookups at the superclass prototype rather than the receiver.
	HomeClass *Class
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return "function " + name + "() { ... }"
}

// BuiltinFn is the signature of host-implemented functions. The evaluator
// parameter gives builtins access to output, the event loop and calls back
// into guest code.
type BuiltinFn func(e *Evaluator, this Object, args []Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFn

	// Props holds static members such as Promise.resolve. Nil for plain
	// host functions.
	Props *ObjectValue

	// Constructable marks builtins that new may invoke.
	Constructable bool
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "function " + b.Name + "() { [native code] }" }

// Class is a constructor function plus a prototype object and an optional
// superclass link.
type Class struct {
	Name    string
	Ctor    *Function
	Proto   *ObjectValue
	Statics *ObjectValue
	Super   *Class
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class " + c.Name + " { ... }" }

// ReturnValue carries a return through nested evaluation to the function
// boundary.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

// isSignal reports whether obj aborts normal sequential evaluation.
func isSignal(obj Object) bool {
	switch obj.(type) {
	case *ReturnValue, *BreakSignal, *ContinueSignal, *Exception:
		return true
	}
	return false
}

// IsException reports whether obj is an in-flight throw.
func IsException(obj Object) bool {
	_, ok := obj.(*Exception)
	return ok
}
