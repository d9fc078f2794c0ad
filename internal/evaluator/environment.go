package evaluator

// Environment is one lexical scope: a binding table chained to its
// enclosing scope. Closures share the environment they captured, so a
// write through one closure is visible through every other.
type Environment struct {
	store  map[string]Object
	consts map[string]bool
	outer  *Environment

	// thisVal is set on function-call scopes. Arrow functions never set
	// it, so `this` inside an arrow resolves through the chain to the
	// nearest enclosing non-arrow call.
	thisVal Object
	hasThis bool
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]Object), outer: outer}
}

// Get resolves a name through the scope chain.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.store[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define creates a binding in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// DefineConst creates a binding that Assign will refuse to update.
func (e *Environment) DefineConst(name string, val Object) {
	e.store[name] = val
	if e.consts == nil {
		e.consts = make(map[string]bool)
	}
	e.consts[name] = true
}

// Assign updates the nearest existing binding. It reports whether the
// name was found and whether the binding is const.
func (e *Environment) Assign(name string, val Object) (found, isConst bool) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			if env.consts[name] {
				return true, true
			}
			env.store[name] = val
			return true, false
		}
	}
	return false, false
}

// SetThis binds the receiver for this call scope.
func (e *Environment) SetThis(val Object) {
	e.thisVal = val
	e.hasThis = true
}

// This resolves the receiver lexically through the chain.
func (e *Environment) This() Object {
	for env := e; env != nil; env = env.outer {
		if env.hasThis {
			return env.thisVal
		}
	}
	return UNDEFINED
}
