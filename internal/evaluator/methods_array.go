package evaluator

import (
	"sort"
	"strings"
)

func thisArray(this Object) (*Array, Object) {
	a, ok := this.(*Array)
	if !ok {
		return nil, NewTypeError("receiver is not an array")
	}
	return a, nil
}

func argCallable(args []Object, i int) (Object, Object) {
	if i >= len(args) || !isCallable(args[i]) {
		return nil, NewTypeError("callback is not a function")
	}
	return args[i], nil
}

var arrayMethods map[string]BuiltinFn

func init() {
	arrayMethods = map[string]BuiltinFn{
		"push": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			a.Elements = append(a.Elements, args...)
			return &Number{Value: float64(len(a.Elements))}
		},
		"pop": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			if len(a.Elements) == 0 {
				return UNDEFINED
			}
			last := a.Elements[len(a.Elements)-1]
			a.Elements = a.Elements[:len(a.Elements)-1]
			return last
		},
		"shift": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			if len(a.Elements) == 0 {
				return UNDEFINED
			}
			first := a.Elements[0]
			a.Elements = append([]Object{}, a.Elements[1:]...)
			return first
		},
		"unshift": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			a.Elements = append(append([]Object{}, args...), a.Elements...)
			return &Number{Value: float64(len(a.Elements))}
		},
		"slice": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			length := float64(len(a.Elements))
			lo, hi := sliceRange(argNumber(args, 0, 0), argNumber(args, 1, length), length)
			return NewArray(append([]Object{}, a.Elements[lo:hi]...))
		},
		"splice": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			length := float64(len(a.Elements))
			lo, _ := sliceRange(argNumber(args, 0, 0), length, length)
			count := int(argNumber(args, 1, length-float64(lo)))
			if count < 0 {
				count = 0
			}
			if lo+count > len(a.Elements) {
				count = len(a.Elements) - lo
			}
			removed := append([]Object{}, a.Elements[lo:lo+count]...)
			var inserted []Object
			if len(args) > 2 {
				inserted = args[2:]
			}
			tail := append([]Object{}, a.Elements[lo+count:]...)
			a.Elements = append(append(a.Elements[:lo], inserted...), tail...)
			return NewArray(removed)
		},
		"concat": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			out := append([]Object{}, a.Elements...)
			for _, arg := range args {
				if other, ok := arg.(*Array); ok {
					out = append(out, other.Elements...)
				} else {
					out = append(out, arg)
				}
			}
			return NewArray(out)
		},
		"join": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			sep := ","
			if len(args) > 0 {
				sep = ToStringValue(args[0])
			}
			parts := make([]string, len(a.Elements))
			for i, el := range a.Elements {
				if el == NULL || el == UNDEFINED {
					parts[i] = ""
				} else {
					parts[i] = ToStringValue(el)
				}
			}
			return &String{Value: strings.Join(parts, sep)}
		},
		"indexOf": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			if len(args) == 0 {
				return &Number{Value: -1}
			}
			for i, el := range a.Elements {
				if StrictEquals(el, args[0]) {
					return &Number{Value: float64(i)}
				}
			}
			return &Number{Value: -1}
		},
		"includes": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			if len(args) == 0 {
				return FALSE
			}
			for _, el := range a.Elements {
				if StrictEquals(el, args[0]) {
					return TRUE
				}
			}
			return FALSE
		},
		"reverse": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			for i, j := 0, len(a.Elements)-1; i < j; i, j = i+1, j-1 {
				a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
			}
			return a
		},
		"forEach": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
			}
			return UNDEFINED
		},
		"map": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			out := make([]Object, len(a.Elements))
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				out[i] = r
			}
			return NewArray(out)
		},
		"filter": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			out := []Object{}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				if Truthy(r) {
					out = append(out, el)
				}
			}
			return NewArray(out)
		},
		"find": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				if Truthy(r) {
					return el
				}
			}
			return UNDEFINED
		},
		"findIndex": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				if Truthy(r) {
					return &Number{Value: float64(i)}
				}
			}
			return &Number{Value: -1}
		},
		"some": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				if Truthy(r) {
					return TRUE
				}
			}
			return FALSE
		},
		"every": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			for i, el := range a.Elements {
				r := e.CallValue(cb, UNDEFINED, []Object{el, &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				if !Truthy(r) {
					return FALSE
				}
			}
			return TRUE
		},
		"reduce": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			cb, ex := argCallable(args, 0)
			if ex != nil {
				return ex
			}
			var acc Object
			start := 0
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(a.Elements) == 0 {
					return NewTypeError("reduce of empty array with no initial value")
				}
				acc = a.Elements[0]
				start = 1
			}
			for i := start; i < len(a.Elements); i++ {
				r := e.CallValue(cb, UNDEFINED, []Object{acc, a.Elements[i], &Number{Value: float64(i)}, a}, tokenless())
				if IsException(r) {
					return r
				}
				acc = r
			}
			return acc
		},
		"sort": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			var caught Object
			if len(args) > 0 && isCallable(args[0]) {
				cmp := args[0]
				sort.SliceStable(a.Elements, func(i, j int) bool {
					if caught != nil {
						return false
					}
					r := e.CallValue(cmp, UNDEFINED, []Object{a.Elements[i], a.Elements[j]}, tokenless())
					if IsException(r) {
						caught = r
						return false
					}
					n, ok := r.(*Number)
					return ok && n.Value < 0
				})
			} else {
				// Default sort compares string forms, as the language does.
				sort.SliceStable(a.Elements, func(i, j int) bool {
					return ToStringValue(a.Elements[i]) < ToStringValue(a.Elements[j])
				})
			}
			if caught != nil {
				return caught
			}
			return a
		},
		"flat": func(e *Evaluator, this Object, args []Object) Object {
			a, ex := thisArray(this)
			if ex != nil {
				return ex
			}
			depth := int(argNumber(args, 0, 1))
			return NewArray(flatten(a.Elements, depth))
		},
	}
}

func flatten(elements []Object, depth int) []Object {
	out := []Object{}
	for _, el := range elements {
		if inner, ok := el.(*Array); ok && depth > 0 {
			out = append(out, flatten(inner.Elements, depth-1)...)
		} else {
			out = append(out, el)
		}
	}
	return out
}
