package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a number the way guest code observes it: integral
// finite values print without a fractional part, everything else uses the
// shortest round-trip decimal form.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func inspectArray(a *Array) string {
	var b strings.Builder
	b.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(inspectNested(el))
	}
	b.WriteString("]")
	return b.String()
}

func inspectObject(o *ObjectValue) string {
	keys := o.Keys()
	if len(keys) == 0 {
		if o.ClassName != "" {
			return o.ClassName + " {}"
		}
		return "{}"
	}
	var b strings.Builder
	if o.ClassName != "" {
		b.WriteString(o.ClassName)
		b.WriteString(" ")
	}
	b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := o.GetOwn(k)
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(inspectNested(v))
	}
	b.WriteString(" }")
	return b.String()
}

// inspectNested renders a value inside a container. Strings are quoted
// here but bare at top level, matching console output conventions.
func inspectNested(v Object) string {
	if s, ok := v.(*String); ok {
		return "'" + s.Value + "'"
	}
	return v.Inspect()
}

// ToDisplayString is the console.log rendering of a single value.
func ToDisplayString(v Object) string {
	return v.Inspect()
}
