package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// Truthy implements guest boolean coercion: false, 0, NaN, "", null and
// undefined are falsy, everything else is truthy.
func Truthy(obj Object) bool {
	switch v := obj.(type) {
	case *Boolean:
		return v.Value
	case *Null, *Undefined:
		return false
	case *Number:
		return v.Value != 0 && !math.IsNaN(v.Value)
	case *String:
		return v.Value != ""
	default:
		return true
	}
}

// TypeOf implements the typeof operator.
func TypeOf(obj Object) string {
	switch obj.(type) {
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Boolean:
		return "boolean"
	case *Undefined:
		return "undefined"
	case *Function, *Builtin, *Class:
		return "function"
	default:
		return "object"
	}
}

// StrictEquals implements ===: same type and value for primitives,
// identity for everything else.
func StrictEquals(a, b Object) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Undefined:
		_, ok := b.(*Undefined)
		return ok
	default:
		return a == b
	}
}

// LooseEquals implements ==: strict equality within a type, null and
// undefined equal each other, number/string and boolean operands coerce
// to number.
func LooseEquals(a, b Object) bool {
	if a.Type() == b.Type() {
		return StrictEquals(a, b)
	}
	an, au := a.Type() == NULL_OBJ, a.Type() == UNDEFINED_OBJ
	bn, bu := b.Type() == NULL_OBJ, b.Type() == UNDEFINED_OBJ
	if (an || au) && (bn || bu) {
		return true
	}
	if an || au || bn || bu {
		return false
	}
	x, okA := coerceNumber(a)
	y, okB := coerceNumber(b)
	if okA && okB {
		return x == y
	}
	return false
}

// coerceNumber converts primitives to a number where the language does.
func coerceNumber(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Number:
		return v.Value, true
	case *Boolean:
		if v.Value {
			return 1, true
		}
		return 0, true
	case *String:
		t := strings.TrimSpace(v.Value)
		if t == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	default:
		return 0, false
	}
}

// ToStringValue coerces a value to its string form for concatenation and
// computed property keys.
func ToStringValue(obj Object) string {
	return obj.Inspect()
}

// BinaryOp evaluates an arithmetic, comparison or equality operator over
// two settled operands. Type mismatches raise a TypeError exception
// object; the caller attaches position and stack.
func BinaryOp(op string, left, right Object) Object {
	switch op {
	case "===":
		return NativeBool(StrictEquals(left, right))
	case "!==":
		return NativeBool(!StrictEquals(left, right))
	case "==":
		return NativeBool(LooseEquals(left, right))
	case "!=":
		return NativeBool(!LooseEquals(left, right))
	}

	if op == "+" {
		if left.Type() == STRING_OBJ || right.Type() == STRING_OBJ {
			return &String{Value: ToStringValue(left) + ToStringValue(right)}
		}
	}

	if ls, ok := left.(*String); ok {
		if rs, ok := right.(*String); ok {
			switch op {
			case "<":
				return NativeBool(ls.Value < rs.Value)
			case "<=":
				return NativeBool(ls.Value <= rs.Value)
			case ">":
				return NativeBool(ls.Value > rs.Value)
			case ">=":
				return NativeBool(ls.Value >= rs.Value)
			}
		}
	}

	ln, lok := left.(*Number)
	rn, rok := right.(*Number)
	if !lok || !rok {
		return NewTypeError("unsupported operand types for %s: %s and %s",
			op, strings.ToLower(string(left.Type())), strings.ToLower(string(right.Type())))
	}

	switch op {
	case "+":
		return &Number{Value: ln.Value + rn.Value}
	case "-":
		return &Number{Value: ln.Value - rn.Value}
	case "*":
		return &Number{Value: ln.Value * rn.Value}
	case "/":
		return &Number{Value: ln.Value / rn.Value}
	case "%":
		return &Number{Value: math.Mod(ln.Value, rn.Value)}
	case "**":
		return &Number{Value: math.Pow(ln.Value, rn.Value)}
	case "<":
		return NativeBool(ln.Value < rn.Value)
	case "<=":
		return NativeBool(ln.Value <= rn.Value)
	case ">":
		return NativeBool(ln.Value > rn.Value)
	case ">=":
		return NativeBool(ln.Value >= rn.Value)
	default:
		return NewTypeError("unknown operator: %s", op)
	}
}

// UnaryOp evaluates a prefix operator over a settled operand.
func UnaryOp(op string, operand Object) Object {
	switch op {
	case "!":
		return NativeBool(!Truthy(operand))
	case "-":
		n, ok := operand.(*Number)
		if !ok {
			return NewTypeError("unary - requires a number, got %s", strings.ToLower(string(operand.Type())))
		}
		return &Number{Value: -n.Value}
	case "+":
		if f, ok := coerceNumber(operand); ok {
			return &Number{Value: f}
		}
		return &Number{Value: math.NaN()}
	case "typeof":
		return &String{Value: TypeOf(operand)}
	default:
		return NewTypeError("unknown operator: %s", op)
	}
}

// InstanceOf walks the prototype chain of left looking for the prototype
// object of the class right.
func InstanceOf(left, right Object) Object {
	cls, ok := right.(*Class)
	if !ok {
		return NewTypeError("right-hand side of instanceof is not a class")
	}
	inst, ok := left.(*ObjectValue)
	if !ok {
		return FALSE
	}
	seen := map[*ObjectValue]bool{}
	for proto := inst.Proto; proto != nil && !seen[proto]; proto = proto.Proto {
		seen[proto] = true
		if proto == cls.Proto {
			return TRUE
		}
	}
	return FALSE
}
