package evaluator

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/token"
)

// homeClassKey is a reserved binding name carrying the defining class of
// the running method. The leading % keeps it out of guest reach.
const homeClassKey = "%home%"

// makeFunction builds a closure over the current environment. The
// compiler may have annotated the literal; if so the closure carries the
// bytecode and runs on the VM when invoked.
func (e *Evaluator) makeFunction(lit *ast.FunctionLiteral, env *Environment) *Function {
	fn := &Function{
		Name:    lit.Name,
		Params:  lit.Params,
		Body:    lit.Body,
		Env:     env,
		IsArrow: lit.IsArrow,
		IsAsync: lit.IsAsync,
	}
	if lit.Compiled != nil {
		fn.Kind = FnCompiled
		fn.Compiled = lit.Compiled
	}
	return fn
}

func (e *Evaluator) evalArgs(args []ast.Expression, env *Environment) ([]Object, Object) {
	out := []Object{}
	for _, arg := range args {
		if spread, ok := arg.(*ast.SpreadElement); ok {
			val := e.Eval(spread.Arg, env)
			if isSignal(val) {
				return nil, val
			}
			arr, ok := val.(*Array)
			if !ok {
				return nil, e.raise(NewTypeError("spread argument is not an array"), spread.Token)
			}
			out = append(out, arr.Elements...)
			continue
		}
		val := e.Eval(arg, env)
		if isSignal(val) {
			return nil, val
		}
		out = append(out, val)
	}
	return out, nil
}

func (e *Evaluator) evalCallExpression(expr *ast.CallExpression, env *Environment) Object {
	// super(...) dispatches the superclass constructor on the current
	// receiver.
	if _, ok := expr.Callee.(*ast.SuperExpression); ok {
		return e.evalSuperCall(expr, env)
	}

	var this Object = UNDEFINED
	var callee Object

	if member, ok := expr.Callee.(*ast.MemberExpression); ok {
		if _, isSuper := member.Object.(*ast.SuperExpression); isSuper {
			method := e.evalSuperMember(member, env)
			if isSignal(method) {
				return method
			}
			this = env.This()
			callee = method
		} else {
			obj := e.Eval(member.Object, env)
			if isSignal(obj) {
				return obj
			}
			var prop Object
			if member.Computed {
				idx := e.Eval(member.Index, env)
				if isSignal(idx) {
					return idx
				}
				prop = e.GetIndex(obj, idx)
			} else {
				prop = e.GetMember(obj, member.Property)
			}
			if ex, ok := prop.(*Exception); ok {
				return e.raise(ex, member.Token)
			}
			this = obj
			callee = prop
		}
	} else {
		callee = e.Eval(expr.Callee, env)
		if isSignal(callee) {
			return callee
		}
	}

	args, errSig := e.evalArgs(expr.Args, env)
	if errSig != nil {
		return errSig
	}
	return e.CallValue(callee, this, args, expr.Token)
}

// CallValue invokes any callable value. Compiled functions are routed to
// the VM through CompiledCallHandler; bridged and interpreted functions
// run on the tree walk.
func (e *Evaluator) CallValue(callee, this Object, args []Object, tok token.Token) Object {
	switch fn := callee.(type) {
	case *Function:
		if fn.Kind == FnCompiled && e.CompiledCallHandler != nil {
			return e.CompiledCallHandler(e, fn, this, args)
		}
		return e.ApplyFunction(fn, this, args, tok)
	case *Builtin:
		return e.callBuiltin(fn, this, args, tok)
	case *Class:
		return e.raise(NewTypeError("class %s must be called with new", fn.Name), tok)
	default:
		return e.raise(NewTypeError("%s is not a function", TypeOf(callee)), tok)
	}
}

func (e *Evaluator) callBuiltin(fn *Builtin, this Object, args []Object, tok token.Token) Object {
	result := fn.Fn(e, this, args)
	if ex, ok := result.(*Exception); ok {
		return e.raise(ex, tok)
	}
	return result
}

// ApplyFunction runs a function body on the tree walk: parameters bound
// in a fresh scope chained to the captured environment, receiver set for
// non-arrows, signals unwrapped at the boundary.
func (e *Evaluator) ApplyFunction(fn *Function, this Object, args []Object, tok token.Token) Object {
	if ex := e.PushCall(fn.Name, e.File, tok.Line, tok.Column); ex != nil {
		return ex
	}
	defer e.PopCall()

	callEnv := NewEnclosedEnvironment(fn.Env)
	if !fn.IsArrow {
		callEnv.SetThis(this)
	}
	if fn.HomeClass != nil {
		callEnv.Define(homeClassKey, fn.HomeClass)
	}
	if result := e.bindParams(fn.Params, args, callEnv); isSignal(result) {
		return result
	}

	if fn.IsAsync {
		return e.runAsyncBody(fn, callEnv)
	}

	result := e.evalBlockStatement(fn.Body, callEnv)
	switch r := result.(type) {
	case *ReturnValue:
		return r.Value
	case *Exception:
		return r
	case *BreakSignal, *ContinueSignal:
		return UNDEFINED
	default:
		return UNDEFINED
	}
}

// runAsyncBody executes an async body and reflects its outcome into a
// promise: a throw becomes a rejection instead of propagating.
func (e *Evaluator) runAsyncBody(fn *Function, callEnv *Environment) Object {
	promise := NewPromise()
	result := e.evalBlockStatement(fn.Body, callEnv)
	switch r := result.(type) {
	case *ReturnValue:
		e.ResolvePromise(promise, r.Value)
	case *Exception:
		e.RejectPromise(promise, r.ThrownValue())
	default:
		e.ResolvePromise(promise, UNDEFINED)
	}
	return promise
}

// bindParams binds declared parameters against actual arguments:
// missing arguments fall back to defaults or undefined, a rest parameter
// collects the tail.
func (e *Evaluator) bindParams(params []*ast.Param, args []Object, env *Environment) Object {
	for i, param := range params {
		if param.Rest {
			rest := []Object{}
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			if result := e.bindPattern(param.Pat, NewArray(rest), env, false); isSignal(result) {
				return result
			}
			break
		}
		var val Object = UNDEFINED
		if i < len(args) {
			val = args[i]
		}
		if val == UNDEFINED && param.Default != nil {
			val = e.Eval(param.Default, env)
			if isSignal(val) {
				return val
			}
		}
		if result := e.bindPattern(param.Pat, val, env, false); isSignal(result) {
			return result
		}
	}
	return UNDEFINED
}

func (e *Evaluator) evalNewExpression(expr *ast.NewExpression, env *Environment) Object {
	calleeVal := e.Eval(expr.Callee, env)
	if isSignal(calleeVal) {
		return calleeVal
	}
	args, errSig := e.evalArgs(expr.Args, env)
	if errSig != nil {
		return errSig
	}
	return e.ConstructValue(calleeVal, args, expr.Token)
}

// ConstructValue implements new over any callee: classes instantiate,
// constructable builtins run as factories.
func (e *Evaluator) ConstructValue(calleeVal Object, args []Object, tok token.Token) Object {
	switch callee := calleeVal.(type) {
	case *Class:
		return e.Construct(callee, args, tok)
	case *Builtin:
		if callee.Constructable {
			return e.callBuiltin(callee, UNDEFINED, args, tok)
		}
	}
	return e.raise(NewTypeError("%s is not a constructor", TypeOf(calleeVal)), tok)
}

// Construct instantiates a class: a fresh object wired to the class
// prototype, then the nearest constructor in the class chain runs with
// the instance as receiver.
func (e *Evaluator) Construct(cls *Class, args []Object, tok token.Token) Object {
	instance := NewObject()
	instance.Proto = cls.Proto
	instance.ClassName = cls.Name

	ctorClass := cls
	for ctorClass != nil && ctorClass.Ctor == nil {
		ctorClass = ctorClass.Super
	}
	if ctorClass != nil {
		result := e.ApplyFunction(ctorClass.Ctor, instance, args, tok)
		if IsException(result) {
			return result
		}
		// An explicit object return replaces the fresh instance; primitive
		// returns are ignored.
		switch r := result.(type) {
		case *ObjectValue:
			return r
		case *Array:
			return r
		}
	}
	return instance
}

func (e *Evaluator) evalSuperCall(expr *ast.CallExpression, env *Environment) Object {
	homeVal, ok := env.Get(homeClassKey)
	if !ok {
		return e.raise(NewTypeError("super is only valid inside class methods"), expr.Token)
	}
	home := homeVal.(*Class)
	if home.Super == nil {
		return e.raise(NewTypeError("class %s has no superclass", home.Name), expr.Token)
	}
	args, errSig := e.evalArgs(expr.Args, env)
	if errSig != nil {
		return errSig
	}
	ctorClass := home.Super
	for ctorClass != nil && ctorClass.Ctor == nil {
		ctorClass = ctorClass.Super
	}
	if ctorClass == nil {
		return UNDEFINED
	}
	result := e.ApplyFunction(ctorClass.Ctor, env.This(), args, expr.Token)
	if IsException(result) {
		return result
	}
	return UNDEFINED
}

// evalSuperMember resolves super.name against the superclass prototype of
// the defining class, not the receiver's own chain, so overridden methods
// stay reachable.
func (e *Evaluator) evalSuperMember(expr *ast.MemberExpression, env *Environment) Object {
	homeVal, ok := env.Get(homeClassKey)
	if !ok {
		return e.raise(NewTypeError("super is only valid inside class methods"), expr.Token)
	}
	home := homeVal.(*Class)
	if home.Super == nil {
		return e.raise(NewTypeError("class %s has no superclass", home.Name), expr.Token)
	}
	if method, found := home.Super.Proto.Get(expr.Property); found {
		return method
	}
	return e.raise(NewTypeError("super.%s is not defined", expr.Property), expr.Token)
}
