package evaluator

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

func jsonObject() *ObjectValue {
	j := NewObject()
	j.Set("stringify", &Builtin{Name: "stringify", Fn: builtinJSONStringify})
	j.Set("parse", &Builtin{Name: "parse", Fn: builtinJSONParse})
	return j
}

func builtinJSONStringify(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return UNDEFINED
	}
	indent := ""
	if len(args) > 2 {
		switch ind := args[2].(type) {
		case *Number:
			indent = strings.Repeat(" ", int(ind.Value))
		case *String:
			indent = ind.Value
		}
	}
	var b strings.Builder
	if !writeJSON(&b, args[0], indent, "") {
		return UNDEFINED
	}
	return &String{Value: b.String()}
}

// writeJSON serializes a value; functions and undefined are not
// representable and report false so callers can omit them.
func writeJSON(b *strings.Builder, v Object, indent, prefix string) bool {
	switch val := v.(type) {
	case *Null:
		b.WriteString("null")
	case *Boolean:
		b.WriteString(val.Inspect())
	case *Number:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(FormatNumber(val.Value))
		}
	case *String:
		enc, _ := json.Marshal(val.Value)
		b.Write(enc)
	case *Array:
		writeJSONArray(b, val, indent, prefix)
	case *ObjectValue:
		writeJSONObject(b, val, indent, prefix)
	default:
		return false
	}
	return true
}

func writeJSONArray(b *strings.Builder, a *Array, indent, prefix string) {
	if len(a.Elements) == 0 {
		b.WriteString("[]")
		return
	}
	inner := prefix + indent
	b.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			b.WriteString(",")
		}
		if indent != "" {
			b.WriteString("\n")
			b.WriteString(inner)
		}
		var sub strings.Builder
		if writeJSON(&sub, el, indent, inner) {
			b.WriteString(sub.String())
		} else {
			b.WriteString("null")
		}
	}
	if indent != "" {
		b.WriteString("\n")
		b.WriteString(prefix)
	}
	b.WriteString("]")
}

func writeJSONObject(b *strings.Builder, o *ObjectValue, indent, prefix string) {
	keys := o.Keys()
	inner := prefix + indent
	first := true
	var body strings.Builder
	for _, k := range keys {
		v, _ := o.GetOwn(k)
		var sub strings.Builder
		if !writeJSON(&sub, v, indent, inner) {
			continue
		}
		if !first {
			body.WriteString(",")
		}
		first = false
		if indent != "" {
			body.WriteString("\n")
			body.WriteString(inner)
		}
		enc, _ := json.Marshal(k)
		body.Write(enc)
		b2 := ":"
		if indent != "" {
			b2 = ": "
		}
		body.WriteString(b2)
		body.WriteString(sub.String())
	}
	if first {
		b.WriteString("{}")
		return
	}
	b.WriteString("{")
	b.WriteString(body.String())
	if indent != "" {
		b.WriteString("\n")
		b.WriteString(prefix)
	}
	b.WriteString("}")
}

func builtinJSONParse(e *Evaluator, _ Object, args []Object) Object {
	if len(args) == 0 {
		return NewTypeError("JSON.parse requires a string")
	}
	s, ok := args[0].(*String)
	if !ok {
		return NewTypeError("JSON.parse requires a string")
	}
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(s.Value))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return NewError(KindError, "JSON.parse: %s", err.Error())
	}
	return jsonToObject(raw)
}

func jsonToObject(raw interface{}) Object {
	switch v := raw.(type) {
	case nil:
		return NULL
	case bool:
		return NativeBool(v)
	case json.Number:
		f, _ := v.Float64()
		return &Number{Value: f}
	case string:
		return &String{Value: v}
	case []interface{}:
		out := make([]Object, len(v))
		for i, el := range v {
			out[i] = jsonToObject(el)
		}
		return NewArray(out)
	case map[string]interface{}:
		// Decoded maps lose source order; keys come out sorted for
		// deterministic output.
		obj := NewObject()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, jsonToObject(v[k]))
		}
		return obj
	default:
		return UNDEFINED
	}
}
