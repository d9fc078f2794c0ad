package evaluator

import (
	"math"
)

// Array bounds: length fits in a uint32, so the largest valid index is
// one below the largest length. Both are exact as float64 values.
const (
	maxArrayLength = 1<<32 - 1
	maxArrayIndex  = maxArrayLength - 1
)

// GetMember reads a named property off any receiver: own and inherited
// properties for objects, host methods for primitives and arrays.
func (e *Evaluator) GetMember(obj Object, name string) Object {
	switch o := obj.(type) {
	case *ObjectValue:
		v, _ := o.Get(name)
		return v
	case *Array:
		if name == "length" {
			return &Number{Value: float64(len(o.Elements))}
		}
		if fn, ok := arrayMethods[name]; ok {
			return &Builtin{Name: name, Fn: fn}
		}
		return UNDEFINED
	case *String:
		if name == "length" {
			return &Number{Value: float64(len([]rune(o.Value)))}
		}
		if fn, ok := stringMethods[name]; ok {
			return &Builtin{Name: name, Fn: fn}
		}
		return UNDEFINED
	case *Number:
		if fn, ok := numberMethods[name]; ok {
			return &Builtin{Name: name, Fn: fn}
		}
		return UNDEFINED
	case *Class:
		if name == "name" {
			return &String{Value: o.Name}
		}
		if v, found := o.Statics.GetOwn(name); found {
			return v
		}
		for super := o.Super; super != nil; super = super.Super {
			if v, found := super.Statics.GetOwn(name); found {
				return v
			}
		}
		return UNDEFINED
	case *Promise:
		if fn, ok := promiseMethods[name]; ok {
			return &Builtin{Name: name, Fn: fn}
		}
		return UNDEFINED
	case *RegExpObject:
		switch name {
		case "source":
			return &String{Value: o.Source}
		case "flags":
			return &String{Value: o.Flags}
		}
		if fn, ok := regexpMethods[name]; ok {
			return &Builtin{Name: name, Fn: fn}
		}
		return UNDEFINED
	case *Function:
		if name == "name" {
			return &String{Value: o.Name}
		}
		return UNDEFINED
	case *Builtin:
		if o.Props != nil {
			if v, found := o.Props.GetOwn(name); found {
				return v
			}
		}
		if name == "name" {
			return &String{Value: o.Name}
		}
		return UNDEFINED
	case *Null, *Undefined:
		return NewTypeError("cannot read property %q of %s", name, obj.Inspect())
	default:
		return UNDEFINED
	}
}

// SetMember writes a named property. Writes always land on the receiver
// itself; inherited properties shadow instead of mutating the prototype.
func (e *Evaluator) SetMember(obj Object, name string, val Object) Object {
	switch o := obj.(type) {
	case *ObjectValue:
		o.Set(name, val)
		return UNDEFINED
	case *Array:
		if name == "length" {
			n, ok := val.(*Number)
			if !ok || n.Value < 0 || n.Value != math.Trunc(n.Value) || n.Value > maxArrayLength {
				return NewRangeError("invalid array length")
			}
			o.resize(int(n.Value))
			return UNDEFINED
		}
		return NewTypeError("cannot set property %q on array", name)
	case *Class:
		o.Statics.Set(name, val)
		return UNDEFINED
	case *Null, *Undefined:
		return NewTypeError("cannot set property %q of %s", name, obj.Inspect())
	default:
		return NewTypeError("cannot set property %q on %s", name, TypeOf(obj))
	}
}

func (a *Array) resize(n int) {
	for len(a.Elements) < n {
		a.Elements = append(a.Elements, UNDEFINED)
	}
	a.Elements = a.Elements[:n]
}

// GetIndex reads a computed member: numeric indexing for arrays and
// strings, key coercion for objects.
func (e *Evaluator) GetIndex(obj, index Object) Object {
	switch o := obj.(type) {
	case *Array:
		if n, ok := index.(*Number); ok {
			i := int(n.Value)
			if n.Value != math.Trunc(n.Value) || i < 0 || i >= len(o.Elements) {
				return UNDEFINED
			}
			return o.Elements[i]
		}
		return e.GetMember(obj, ToStringValue(index))
	case *String:
		if n, ok := index.(*Number); ok {
			runes := []rune(o.Value)
			i := int(n.Value)
			if n.Value != math.Trunc(n.Value) || i < 0 || i >= len(runes) {
				return UNDEFINED
			}
			return &String{Value: string(runes[i])}
		}
		return e.GetMember(obj, ToStringValue(index))
	case *ObjectValue:
		v, _ := o.Get(ToStringValue(index))
		return v
	case *Null, *Undefined:
		return NewTypeError("cannot read property of %s", obj.Inspect())
	default:
		return e.GetMember(obj, ToStringValue(index))
	}
}

// SetIndex writes a computed member.
func (e *Evaluator) SetIndex(obj, index, val Object) Object {
	switch o := obj.(type) {
	case *Array:
		n, ok := index.(*Number)
		if !ok || n.Value != math.Trunc(n.Value) || n.Value < 0 {
			return NewTypeError("invalid array index %s", index.Inspect())
		}
		if n.Value > maxArrayIndex {
			return NewRangeError("array index %s out of range", index.Inspect())
		}
		o.SetIndex(int(n.Value), val)
		return UNDEFINED
	case *ObjectValue:
		o.Set(ToStringValue(index), val)
		return UNDEFINED
	case *Null, *Undefined:
		return NewTypeError("cannot set property of %s", obj.Inspect())
	default:
		return NewTypeError("cannot set indexed property on %s", TypeOf(obj))
	}
}
