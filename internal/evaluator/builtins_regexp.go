package evaluator

import (
	"github.com/dlclark/regexp2"
)

// RegExpObject wraps a compiled pattern. regexp2 is used over the
// standard engine for its backreference and lookaround support, which
// guest patterns routinely rely on.
type RegExpObject struct {
	Source string
	Flags  string
	re     *regexp2.Regexp
}

func (r *RegExpObject) Type() ObjectType { return OBJECT_OBJ }
func (r *RegExpObject) Inspect() string  { return "/" + r.Source + "/" + r.Flags }

func regexpNamespace() *Builtin {
	return &Builtin{
		Name:          "RegExp",
		Constructable: true,
		Fn: func(e *Evaluator, _ Object, args []Object) Object {
			if len(args) == 0 {
				return NewTypeError("RegExp requires a pattern")
			}
			source := ToStringValue(args[0])
			flags := ""
			if len(args) > 1 {
				if s, ok := args[1].(*String); ok {
					flags = s.Value
				}
			}
			var opts regexp2.RegexOptions = regexp2.ECMAScript
			for _, f := range flags {
				switch f {
				case 'i':
					opts |= regexp2.IgnoreCase
				case 'm':
					opts |= regexp2.Multiline
				case 's':
					opts |= regexp2.Singleline
				case 'g':
					// Handled per call site, not a compile option.
				default:
					return NewError(KindError, "invalid regular expression flag %q", string(f))
				}
			}
			re, err := regexp2.Compile(source, opts)
			if err != nil {
				return NewError(KindError, "invalid regular expression: %s", err.Error())
			}
			return &RegExpObject{Source: source, Flags: flags, re: re}
		},
	}
}

func (r *RegExpObject) global() bool {
	for _, f := range r.Flags {
		if f == 'g' {
			return true
		}
	}
	return false
}

var regexpMethods = map[string]BuiltinFn{
	"test": func(e *Evaluator, this Object, args []Object) Object {
		r, ok := this.(*RegExpObject)
		if !ok {
			return NewTypeError("test called on a non-RegExp")
		}
		m, err := r.re.MatchString(argString(args, 0))
		if err != nil {
			return NewError(KindError, "regexp error: %s", err.Error())
		}
		return NativeBool(m)
	},
	"exec": func(e *Evaluator, this Object, args []Object) Object {
		r, ok := this.(*RegExpObject)
		if !ok {
			return NewTypeError("exec called on a non-RegExp")
		}
		m, err := r.re.FindStringMatch(argString(args, 0))
		if err != nil {
			return NewError(KindError, "regexp error: %s", err.Error())
		}
		if m == nil {
			return NULL
		}
		return matchToArray(m)
	},
}

func matchToArray(m *regexp2.Match) *Array {
	out := []Object{}
	for _, g := range m.Groups() {
		if len(g.Captures) == 0 {
			out = append(out, UNDEFINED)
		} else {
			out = append(out, &String{Value: g.String()})
		}
	}
	return NewArray(out)
}

// regexpMatch implements string.match: first match groups, or all full
// matches when the g flag is set.
func regexpMatch(r *RegExpObject, s string) Object {
	if !r.global() {
		m, err := r.re.FindStringMatch(s)
		if err != nil || m == nil {
			return NULL
		}
		return matchToArray(m)
	}
	out := []Object{}
	m, err := r.re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, &String{Value: m.String()})
		m, err = r.re.FindNextMatch(m)
	}
	if len(out) == 0 {
		return NULL
	}
	return NewArray(out)
}

// regexpReplace implements string.replace and replaceAll with a RegExp
// pattern and a string replacement.
func regexpReplace(r *RegExpObject, s, replacement string, all bool) Object {
	count := 1
	if all || r.global() {
		count = -1
	}
	out, err := r.re.Replace(s, replacement, 0, count)
	if err != nil {
		return NewError(KindError, "regexp error: %s", err.Error())
	}
	return &String{Value: out}
}
