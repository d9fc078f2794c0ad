package evaluator

import (
	"github.com/tandemjs/tandem/internal/ast"
)

// bindPattern destructures a value into an environment. Defaults apply
// only when the incoming value is undefined; missing object keys and
// array holes both produce undefined first.
func (e *Evaluator) bindPattern(pat ast.Pattern, value Object, env *Environment, isConst bool) Object {
	switch p := pat.(type) {
	case *ast.IdentifierPattern:
		if isConst {
			env.DefineConst(p.Name, value)
		} else {
			env.Define(p.Name, value)
		}
		return UNDEFINED

	case *ast.ObjectPattern:
		obj, ok := value.(*ObjectValue)
		if !ok {
			return e.raise(NewTypeError("cannot destructure %s as an object", TypeOf(value)), p.Token)
		}
		taken := map[string]bool{}
		for _, prop := range p.Props {
			v, _ := obj.Get(prop.Key)
			taken[prop.Key] = true
			if v == UNDEFINED && prop.Default != nil {
				v = e.Eval(prop.Default, env)
				if isSignal(v) {
					return v
				}
			}
			if result := e.bindPattern(prop.Value, v, env, isConst); isSignal(result) {
				return result
			}
		}
		if p.Rest != nil {
			rest := NewObject()
			for _, k := range obj.Keys() {
				if !taken[k] {
					v, _ := obj.GetOwn(k)
					rest.Set(k, v)
				}
			}
			return e.bindPattern(p.Rest, rest, env, isConst)
		}
		return UNDEFINED

	case *ast.ArrayPattern:
		arr, ok := value.(*Array)
		if !ok {
			return e.raise(NewTypeError("cannot destructure %s as an array", TypeOf(value)), p.Token)
		}
		for i, el := range p.Elements {
			if el.Pat == nil {
				continue // elision
			}
			var v Object = UNDEFINED
			if i < len(arr.Elements) {
				v = arr.Elements[i]
			}
			if v == UNDEFINED && el.Default != nil {
				v = e.Eval(el.Default, env)
				if isSignal(v) {
					return v
				}
			}
			if result := e.bindPattern(el.Pat, v, env, isConst); isSignal(result) {
				return result
			}
		}
		if p.Rest != nil {
			rest := []Object{}
			if len(p.Elements) < len(arr.Elements) {
				rest = append(rest, arr.Elements[len(p.Elements):]...)
			}
			return e.bindPattern(p.Rest, NewArray(rest), env, isConst)
		}
		return UNDEFINED

	default:
		return NewTypeError("unsupported binding pattern")
	}
}
