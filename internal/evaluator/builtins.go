package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// installBuiltins populates the global scope with the host runtime:
// console, Math, JSON, Object, timers, Promise, conversions, crypto and
// RegExp.
func installBuiltins(e *Evaluator, env *Environment) {
	env.Define("undefined", UNDEFINED)
	env.Define("NaN", &Number{Value: math.NaN()})
	env.Define("Infinity", &Number{Value: math.Inf(1)})

	env.Define("console", consoleObject())
	env.Define("Math", mathObject())
	env.Define("JSON", jsonObject())
	env.Define("Object", objectNamespace())
	env.Define("Array", arrayNamespace())
	env.Define("crypto", cryptoObject())

	env.Define("parseInt", &Builtin{Name: "parseInt", Fn: builtinParseInt})
	env.Define("parseFloat", &Builtin{Name: "parseFloat", Fn: builtinParseFloat})
	env.Define("isNaN", &Builtin{Name: "isNaN", Fn: builtinIsNaN})
	env.Define("String", &Builtin{Name: "String", Fn: builtinString})
	env.Define("Number", numberNamespace())
	env.Define("Boolean", &Builtin{Name: "Boolean", Fn: builtinBoolean})

	env.Define("setTimeout", &Builtin{Name: "setTimeout", Fn: builtinSetTimeout})
	env.Define("clearTimeout", &Builtin{Name: "clearTimeout", Fn: builtinClearTimeout})

	env.Define("Promise", promiseNamespace())
	env.Define("RegExp", regexpNamespace())
}

func consoleObject() *ObjectValue {
	console := NewObject()
	log := func(e *Evaluator, _ Object, args []Object) Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = ToDisplayString(a)
		}
		fmt.Fprintln(e.Out, strings.Join(parts, " "))
		return UNDEFINED
	}
	console.Set("log", &Builtin{Name: "log", Fn: log})
	console.Set("error", &Builtin{Name: "error", Fn: log})
	console.Set("warn", &Builtin{Name: "warn", Fn: log})
	return console
}

func cryptoObject() *ObjectValue {
	crypto := NewObject()
	crypto.Set("randomUUID", &Builtin{Name: "randomUUID", Fn: func(e *Evaluator, _ Object, _ []Object) Object {
		return &String{Value: uuid.NewString()}
	}})
	return crypto
}

func builtinParseInt(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return &Number{Value: math.NaN()}
	}
	s := strings.TrimSpace(ToStringValue(args[0]))
	base := 10
	if len(args) > 1 {
		if n, ok := args[1].(*Number); ok && n.Value != 0 {
			base = int(n.Value)
		}
	}
	// Consume the longest valid prefix, as the language requires.
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if base == 16 {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}
	end := 0
	for end < len(s) {
		if _, err := strconv.ParseInt(s[:end+1], base, 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return &Number{Value: math.NaN()}
	}
	v, _ := strconv.ParseInt(s[:end], base, 64)
	f := float64(v)
	if neg {
		f = -f
	}
	return &Number{Value: f}
}

func builtinParseFloat(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return &Number{Value: math.NaN()}
	}
	s := strings.TrimSpace(ToStringValue(args[0]))
	end := 0
	for end < len(s) {
		if _, err := strconv.ParseFloat(s[:end+1], 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return &Number{Value: math.NaN()}
	}
	v, _ := strconv.ParseFloat(s[:end], 64)
	return &Number{Value: v}
}

func builtinIsNaN(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return TRUE
	}
	f, ok := coerceNumber(args[0])
	return NativeBool(!ok || math.IsNaN(f))
}

func builtinString(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return &String{Value: ""}
	}
	return &String{Value: ToStringValue(args[0])}
}

func builtinBoolean(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return FALSE
	}
	return NativeBool(Truthy(args[0]))
}

func numberNamespace() *Builtin {
	props := NewObject()
	props.Set("isInteger", &Builtin{Name: "isInteger", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) == 0 {
			return FALSE
		}
		n, ok := args[0].(*Number)
		return NativeBool(ok && !math.IsInf(n.Value, 0) && n.Value == math.Trunc(n.Value))
	}})
	props.Set("isFinite", &Builtin{Name: "isFinite", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) == 0 {
			return FALSE
		}
		n, ok := args[0].(*Number)
		return NativeBool(ok && !math.IsInf(n.Value, 0) && !math.IsNaN(n.Value))
	}})
	props.Set("MAX_SAFE_INTEGER", &Number{Value: 9007199254740991})
	props.Set("MIN_SAFE_INTEGER", &Number{Value: -9007199254740991})
	return &Builtin{
		Name:  "Number",
		Props: props,
		Fn: func(e *Evaluator, _ Object, args []Object) Object {
			if len(args) == 0 {
				return &Number{Value: 0}
			}
			if f, ok := coerceNumber(args[0]); ok {
				return &Number{Value: f}
			}
			return &Number{Value: math.NaN()}
		},
	}
}

func objectNamespace() *Builtin {
	props := NewObject()
	props.Set("keys", &Builtin{Name: "keys", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		obj, ok := firstObject(args)
		if !ok {
			return NewTypeError("Object.keys requires an object")
		}
		keys := obj.Keys()
		out := make([]Object, len(keys))
		for i, k := range keys {
			out[i] = &String{Value: k}
		}
		return NewArray(out)
	}})
	props.Set("values", &Builtin{Name: "values", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		obj, ok := firstObject(args)
		if !ok {
			return NewTypeError("Object.values requires an object")
		}
		out := []Object{}
		for _, k := range obj.Keys() {
			v, _ := obj.GetOwn(k)
			out = append(out, v)
		}
		return NewArray(out)
	}})
	props.Set("entries", &Builtin{Name: "entries", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		obj, ok := firstObject(args)
		if !ok {
			return NewTypeError("Object.entries requires an object")
		}
		out := []Object{}
		for _, k := range obj.Keys() {
			v, _ := obj.GetOwn(k)
			out = append(out, NewArray([]Object{&String{Value: k}, v}))
		}
		return NewArray(out)
	}})
	props.Set("assign", &Builtin{Name: "assign", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		target, ok := firstObject(args)
		if !ok {
			return NewTypeError("Object.assign requires an object target")
		}
		for _, src := range args[1:] {
			if so, ok := src.(*ObjectValue); ok {
				for _, k := range so.Keys() {
					v, _ := so.GetOwn(k)
					target.Set(k, v)
				}
			}
		}
		return target
	}})
	return &Builtin{Name: "Object", Props: props, Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) > 0 {
			return args[0]
		}
		return NewObject()
	}}
}

func firstObject(args []Object) (*ObjectValue, bool) {
	if len(args) == 0 {
		return nil, false
	}
	obj, ok := args[0].(*ObjectValue)
	return obj, ok
}

func arrayNamespace() *Builtin {
	props := NewObject()
	props.Set("isArray", &Builtin{Name: "isArray", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) == 0 {
			return FALSE
		}
		_, ok := args[0].(*Array)
		return NativeBool(ok)
	}})
	props.Set("from", &Builtin{Name: "from", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) == 0 {
			return NewArray(nil)
		}
		switch src := args[0].(type) {
		case *Array:
			return NewArray(append([]Object{}, src.Elements...))
		case *String:
			out := []Object{}
			for _, r := range src.Value {
				out = append(out, &String{Value: string(r)})
			}
			return NewArray(out)
		default:
			return NewTypeError("Array.from source is not iterable")
		}
	}})
	return &Builtin{Name: "Array", Props: props, Fn: func(e *Evaluator, _ Object, args []Object) Object {
		return NewArray(append([]Object{}, args...))
	}}
}

func builtinSetTimeout(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 || !isCallable(args[0]) {
		return NewTypeError("setTimeout requires a callback")
	}
	callback := args[0]
	delay := 0.0
	if len(args) > 1 {
		if n, ok := args[1].(*Number); ok {
			delay = n.Value
		}
	}
	extra := append([]Object{}, args[2:]...)
	id := e.Loop.ScheduleTimer(delay, func() {
		result := e.CallValue(callback, UNDEFINED, extra, tokenless())
		if ex, ok := result.(*Exception); ok {
			fmt.Fprintln(e.Out, "Uncaught "+ex.Inspect())
		}
	})
	return &Number{Value: float64(id)}
}

func builtinClearTimeout(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return UNDEFINED
	}
	if n, ok := args[0].(*Number); ok {
		e.Loop.ClearTimer(int(n.Value))
	}
	return UNDEFINED
}

func promiseNamespace() *Builtin {
	props := NewObject()
	props.Set("resolve", &Builtin{Name: "resolve", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		var val Object = UNDEFINED
		if len(args) > 0 {
			val = args[0]
		}
		if p, ok := val.(*Promise); ok {
			return p
		}
		p := NewPromise()
		e.ResolvePromise(p, val)
		return p
	}})
	props.Set("reject", &Builtin{Name: "reject", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		var reason Object = UNDEFINED
		if len(args) > 0 {
			reason = args[0]
		}
		p := NewPromise()
		e.RejectPromise(p, reason)
		return p
	}})
	props.Set("all", &Builtin{Name: "all", Fn: builtinPromiseAll})
	return &Builtin{
		Name:          "Promise",
		Props:         props,
		Constructable: true,
		Fn:            builtinNewPromise,
	}
}

// builtinNewPromise implements new Promise(executor): the executor runs
// synchronously with host resolve and reject callbacks.
func builtinNewPromise(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 || !isCallable(args[0]) {
		return NewTypeError("Promise constructor requires an executor function")
	}
	p := NewPromise()
	resolve := &Builtin{Name: "resolve", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		var val Object = UNDEFINED
		if len(args) > 0 {
			val = args[0]
		}
		e.ResolvePromise(p, val)
		return UNDEFINED
	}}
	reject := &Builtin{Name: "reject", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		var reason Object = UNDEFINED
		if len(args) > 0 {
			reason = args[0]
		}
		e.RejectPromise(p, reason)
		return UNDEFINED
	}}
	result := e.CallValue(args[0], UNDEFINED, []Object{resolve, reject}, tokenless())
	if ex, ok := result.(*Exception); ok {
		e.RejectPromise(p, ex.ThrownValue())
	}
	return p
}

func builtinPromiseAll(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return NewTypeError("Promise.all requires an array")
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return NewTypeError("Promise.all requires an array")
	}
	result := NewPromise()
	results := make([]Object, len(arr.Elements))
	remaining := len(arr.Elements)
	if remaining == 0 {
		e.ResolvePromise(result, NewArray(nil))
		return result
	}
	for i, el := range arr.Elements {
		i := i
		p, ok := el.(*Promise)
		if !ok {
			results[i] = el
			remaining--
			continue
		}
		onFulfill := &Builtin{Name: "all", Fn: func(e *Evaluator, _ Object, args []Object) Object {
			if len(args) > 0 {
				results[i] = args[0]
			} else {
				results[i] = UNDEFINED
			}
			remaining--
			if remaining == 0 {
				e.ResolvePromise(result, NewArray(results))
			}
			return UNDEFINED
		}}
		onReject := &Builtin{Name: "all", Fn: func(e *Evaluator, _ Object, args []Object) Object {
			var reason Object = UNDEFINED
			if len(args) > 0 {
				reason = args[0]
			}
			e.RejectPromise(result, reason)
			return UNDEFINED
		}}
		e.Then(p, onFulfill, onReject)
	}
	if remaining == 0 {
		e.ResolvePromise(result, NewArray(results))
	}
	return result
}
