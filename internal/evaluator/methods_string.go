package evaluator

import (
	"math"
	"strings"
)

func thisString(this Object) (*String, Object) {
	s, ok := this.(*String)
	if !ok {
		return nil, NewTypeError("receiver is not a string")
	}
	return s, nil
}

func argString(args []Object, i int) string {
	if i >= len(args) {
		return "undefined"
	}
	return ToStringValue(args[i])
}

func argNumber(args []Object, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	if n, ok := args[i].(*Number); ok {
		return n.Value
	}
	return def
}

// sliceRange clamps JS-style start/end arguments against a length,
// resolving negative offsets from the end.
func sliceRange(start, end, length float64) (int, int) {
	norm := func(v float64) int {
		if math.IsNaN(v) {
			return 0
		}
		i := int(v)
		if i < 0 {
			i += int(length)
		}
		if i < 0 {
			i = 0
		}
		if i > int(length) {
			i = int(length)
		}
		return i
	}
	lo, hi := norm(start), norm(end)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

var stringMethods map[string]BuiltinFn

func init() {
	stringMethods = map[string]BuiltinFn{
		"charAt": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			runes := []rune(s.Value)
			i := int(argNumber(args, 0, 0))
			if i < 0 || i >= len(runes) {
				return &String{Value: ""}
			}
			return &String{Value: string(runes[i])}
		},
		"charCodeAt": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			runes := []rune(s.Value)
			i := int(argNumber(args, 0, 0))
			if i < 0 || i >= len(runes) {
				return &Number{Value: math.NaN()}
			}
			return &Number{Value: float64(runes[i])}
		},
		"indexOf": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			idx := strings.Index(s.Value, argString(args, 0))
			if idx < 0 {
				return &Number{Value: -1}
			}
			return &Number{Value: float64(len([]rune(s.Value[:idx])))}
		},
		"lastIndexOf": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			idx := strings.LastIndex(s.Value, argString(args, 0))
			if idx < 0 {
				return &Number{Value: -1}
			}
			return &Number{Value: float64(len([]rune(s.Value[:idx])))}
		},
		"includes": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return NativeBool(strings.Contains(s.Value, argString(args, 0)))
		},
		"startsWith": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return NativeBool(strings.HasPrefix(s.Value, argString(args, 0)))
		},
		"endsWith": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return NativeBool(strings.HasSuffix(s.Value, argString(args, 0)))
		},
		"slice": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			runes := []rune(s.Value)
			length := float64(len(runes))
			lo, hi := sliceRange(argNumber(args, 0, 0), argNumber(args, 1, length), length)
			return &String{Value: string(runes[lo:hi])}
		},
		"substring": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			runes := []rune(s.Value)
			length := float64(len(runes))
			clamp := func(v float64) int {
				if math.IsNaN(v) || v < 0 {
					return 0
				}
				if v > length {
					return int(length)
				}
				return int(v)
			}
			lo := clamp(argNumber(args, 0, 0))
			hi := clamp(argNumber(args, 1, length))
			if lo > hi {
				lo, hi = hi, lo
			}
			return &String{Value: string(runes[lo:hi])}
		},
		"toUpperCase": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return &String{Value: strings.ToUpper(s.Value)}
		},
		"toLowerCase": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return &String{Value: strings.ToLower(s.Value)}
		},
		"trim": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return &String{Value: strings.TrimSpace(s.Value)}
		},
		"split": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			if len(args) == 0 {
				return NewArray([]Object{&String{Value: s.Value}})
			}
			sep := argString(args, 0)
			var parts []string
			if sep == "" {
				for _, r := range s.Value {
					parts = append(parts, string(r))
				}
			} else {
				parts = strings.Split(s.Value, sep)
			}
			out := make([]Object, len(parts))
			for i, p := range parts {
				out[i] = &String{Value: p}
			}
			return NewArray(out)
		},
		"replace": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			if len(args) > 0 {
				if re, ok := args[0].(*RegExpObject); ok {
					return regexpReplace(re, s.Value, argString(args, 1), false)
				}
			}
			return &String{Value: strings.Replace(s.Value, argString(args, 0), argString(args, 1), 1)}
		},
		"replaceAll": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			if len(args) > 0 {
				if re, ok := args[0].(*RegExpObject); ok {
					return regexpReplace(re, s.Value, argString(args, 1), true)
				}
			}
			return &String{Value: strings.ReplaceAll(s.Value, argString(args, 0), argString(args, 1))}
		},
		"repeat": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			n := argNumber(args, 0, 0)
			if n < 0 || math.IsInf(n, 0) {
				return NewRangeError("invalid repeat count")
			}
			return &String{Value: strings.Repeat(s.Value, int(n))}
		},
		"padStart": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return padString(s.Value, args, true)
		},
		"padEnd": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			return padString(s.Value, args, false)
		},
		"concat": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			var b strings.Builder
			b.WriteString(s.Value)
			for _, a := range args {
				b.WriteString(ToStringValue(a))
			}
			return &String{Value: b.String()}
		},
		"match": func(e *Evaluator, this Object, args []Object) Object {
			s, ex := thisString(this)
			if ex != nil {
				return ex
			}
			if len(args) == 0 {
				return NULL
			}
			re, ok := args[0].(*RegExpObject)
			if !ok {
				return NewTypeError("match requires a RegExp")
			}
			return regexpMatch(re, s.Value)
		},
	}
}

func padString(s string, args []Object, atStart bool) Object {
	target := int(argNumber(args, 0, 0))
	fill := " "
	if len(args) > 1 {
		fill = argString(args, 1)
	}
	runes := []rune(s)
	if target <= len(runes) || fill == "" {
		return &String{Value: s}
	}
	need := target - len(runes)
	var pad strings.Builder
	for pad.Len() < need {
		pad.WriteString(fill)
	}
	padStr := string([]rune(pad.String())[:need])
	if atStart {
		return &String{Value: padStr + s}
	}
	return &String{Value: s + padStr}
}
