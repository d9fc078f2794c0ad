package evaluator

import (
	"strings"

	"github.com/tandemjs/tandem/internal/ast"
)

func (e *Evaluator) evalIdentifier(ident *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(ident.Value); ok {
		return val
	}
	return e.raise(NewReferenceError("%s is not defined", ident.Value), ident.Token)
}

func (e *Evaluator) evalTemplateLiteral(tpl *ast.TemplateLiteral, env *Environment) Object {
	var b strings.Builder
	for i, quasi := range tpl.Quasis {
		b.WriteString(quasi)
		if i < len(tpl.Exprs) {
			val := e.Eval(tpl.Exprs[i], env)
			if isSignal(val) {
				return val
			}
			b.WriteString(ToStringValue(val))
		}
	}
	return &String{Value: b.String()}
}

func (e *Evaluator) evalArrayLiteral(lit *ast.ArrayLiteral, env *Environment) Object {
	elements := []Object{}
	for _, el := range lit.Elements {
		if spread, ok := el.(*ast.SpreadElement); ok {
			val := e.Eval(spread.Arg, env)
			if isSignal(val) {
				return val
			}
			arr, ok := val.(*Array)
			if !ok {
				return e.raise(NewTypeError("spread source is not an array"), spread.Token)
			}
			elements = append(elements, arr.Elements...)
			continue
		}
		val := e.Eval(el, env)
		if isSignal(val) {
			return val
		}
		elements = append(elements, val)
	}
	return NewArray(elements)
}

func (e *Evaluator) evalObjectLiteral(lit *ast.ObjectLiteral, env *Environment) Object {
	obj := NewObject()
	for _, prop := range lit.Properties {
		if prop.Spread != nil {
			val := e.Eval(prop.Spread, env)
			if isSignal(val) {
				return val
			}
			src, ok := val.(*ObjectValue)
			if !ok {
				return e.raise(NewTypeError("spread source is not an object"), lit.Token)
			}
			for _, k := range src.Keys() {
				v, _ := src.GetOwn(k)
				obj.Set(k, v)
			}
			continue
		}
		val := e.Eval(prop.Value, env)
		if isSignal(val) {
			return val
		}
		if fn, ok := val.(*Function); ok && fn.Name == "" {
			fn.Name = prop.Key
		}
		obj.Set(prop.Key, val)
	}
	return obj
}

func (e *Evaluator) evalBinaryExpression(expr *ast.BinaryExpression, env *Environment) Object {
	if expr.Op == "instanceof" {
		left := e.Eval(expr.Left, env)
		if isSignal(left) {
			return left
		}
		right := e.Eval(expr.Right, env)
		if isSignal(right) {
			return right
		}
		result := InstanceOf(left, right)
		if ex, ok := result.(*Exception); ok {
			return e.raise(ex, expr.Token)
		}
		return result
	}

	left := e.Eval(expr.Left, env)
	if isSignal(left) {
		return left
	}
	right := e.Eval(expr.Right, env)
	if isSignal(right) {
		return right
	}
	result := BinaryOp(expr.Op, left, right)
	if ex, ok := result.(*Exception); ok {
		return e.raise(ex, expr.Token)
	}
	return result
}

func (e *Evaluator) evalLogicalExpression(expr *ast.LogicalExpression, env *Environment) Object {
	left := e.Eval(expr.Left, env)
	if isSignal(left) {
		return left
	}
	switch expr.Op {
	case "&&":
		if !Truthy(left) {
			return left
		}
	case "||":
		if Truthy(left) {
			return left
		}
	}
	return e.Eval(expr.Right, env)
}

func (e *Evaluator) evalUnaryExpression(expr *ast.UnaryExpression, env *Environment) Object {
	if expr.Op == "typeof" {
		// typeof on an unresolvable name is "undefined", not an error.
		if ident, ok := expr.Operand.(*ast.Identifier); ok {
			if _, found := env.Get(ident.Value); !found {
				return &String{Value: "undefined"}
			}
		}
	}
	if expr.Op == "delete" {
		return e.evalDeleteExpression(expr, env)
	}
	operand := e.Eval(expr.Operand, env)
	if isSignal(operand) {
		return operand
	}
	result := UnaryOp(expr.Op, operand)
	if ex, ok := result.(*Exception); ok {
		return e.raise(ex, expr.Token)
	}
	return result
}

func (e *Evaluator) evalDeleteExpression(expr *ast.UnaryExpression, env *Environment) Object {
	member, ok := expr.Operand.(*ast.MemberExpression)
	if !ok {
		return TRUE
	}
	target := e.Eval(member.Object, env)
	if isSignal(target) {
		return target
	}
	obj, ok := target.(*ObjectValue)
	if !ok {
		return TRUE
	}
	key := member.Property
	if member.Computed {
		keyVal := e.Eval(member.Index, env)
		if isSignal(keyVal) {
			return keyVal
		}
		key = ToStringValue(keyVal)
	}
	return NativeBool(obj.Delete(key))
}

func (e *Evaluator) evalUpdateExpression(expr *ast.UpdateExpression, env *Environment) Object {
	old := e.Eval(expr.Target, env)
	if isSignal(old) {
		return old
	}
	n, ok := old.(*Number)
	if !ok {
		return e.raise(NewTypeError("%s requires a number operand", expr.Op), expr.Token)
	}
	delta := 1.0
	if expr.Op == "--" {
		delta = -1.0
	}
	updated := &Number{Value: n.Value + delta}
	if result := e.assignTo(expr.Target, updated, env); isSignal(result) {
		return result
	}
	if expr.Prefix {
		return updated
	}
	return n
}

func (e *Evaluator) evalAssignmentExpression(expr *ast.AssignmentExpression, env *Environment) Object {
	value := e.Eval(expr.Value, env)
	if isSignal(value) {
		return value
	}

	if expr.Op != "=" {
		old := e.Eval(expr.Target, env)
		if isSignal(old) {
			return old
		}
		op := strings.TrimSuffix(expr.Op, "=")
		combined := BinaryOp(op, old, value)
		if ex, ok := combined.(*Exception); ok {
			return e.raise(ex, expr.Token)
		}
		value = combined
	}

	if result := e.assignTo(expr.Target, value, env); isSignal(result) {
		return result
	}
	return value
}

// assignTo writes a value through an assignable expression: a name, a
// member access or an index access.
func (e *Evaluator) assignTo(target ast.Expression, value Object, env *Environment) Object {
	switch t := target.(type) {
	case *ast.Identifier:
		found, isConst := env.Assign(t.Value, value)
		if isConst {
			return e.raise(NewTypeError("assignment to constant variable %s", t.Value), t.Token)
		}
		if !found {
			// Undeclared assignment creates a global, as scripts expect.
			e.Globals.Define(t.Value, value)
		}
		return UNDEFINED
	case *ast.MemberExpression:
		obj := e.Eval(t.Object, env)
		if isSignal(obj) {
			return obj
		}
		if t.Computed {
			idx := e.Eval(t.Index, env)
			if isSignal(idx) {
				return idx
			}
			result := e.SetIndex(obj, idx, value)
			if ex, ok := result.(*Exception); ok {
				return e.raise(ex, t.Token)
			}
			return result
		}
		result := e.SetMember(obj, t.Property, value)
		if ex, ok := result.(*Exception); ok {
			return e.raise(ex, t.Token)
		}
		return result
	default:
		return e.raise(NewTypeError("invalid assignment target"), target.GetToken())
	}
}

func (e *Evaluator) evalConditionalExpression(expr *ast.ConditionalExpression, env *Environment) Object {
	cond := e.Eval(expr.Condition, env)
	if isSignal(cond) {
		return cond
	}
	if Truthy(cond) {
		return e.Eval(expr.Then, env)
	}
	return e.Eval(expr.Else, env)
}

func (e *Evaluator) evalMemberExpression(expr *ast.MemberExpression, env *Environment) Object {
	// super.method() resolves against the home class's superclass proto
	// but binds the current receiver.
	if _, ok := expr.Object.(*ast.SuperExpression); ok {
		return e.evalSuperMember(expr, env)
	}

	obj := e.Eval(expr.Object, env)
	if isSignal(obj) {
		return obj
	}
	if expr.Computed {
		idx := e.Eval(expr.Index, env)
		if isSignal(idx) {
			return idx
		}
		result := e.GetIndex(obj, idx)
		if ex, ok := result.(*Exception); ok {
			return e.raise(ex, expr.Token)
		}
		return result
	}
	result := e.GetMember(obj, expr.Property)
	if ex, ok := result.(*Exception); ok {
		return e.raise(ex, expr.Token)
	}
	return result
}

func (e *Evaluator) evalAwaitExpression(expr *ast.AwaitExpression, env *Environment) Object {
	val := e.Eval(expr.Arg, env)
	if isSignal(val) {
		return val
	}
	promise, ok := val.(*Promise)
	if !ok {
		// Awaiting a plain value still yields to queued microtasks.
		e.Loop.DrainMicrotasks()
		return val
	}
	e.Loop.RunUntil(func() bool { return promise.State != PromisePending })
	switch promise.State {
	case PromiseFulfilled:
		return promise.Result
	case PromiseRejected:
		promise.Handled = true
		return e.raise(NewThrow(promise.Result), expr.Token)
	default:
		return e.raise(NewError(KindError, "await: promise never settles"), expr.Token)
	}
}
