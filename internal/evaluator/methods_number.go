package evaluator

import (
	"strconv"
)

var numberMethods = map[string]BuiltinFn{
	"toFixed": func(e *Evaluator, this Object, args []Object) Object {
		n, ok := this.(*Number)
		if !ok {
			return NewTypeError("receiver is not a number")
		}
		digits := int(argNumber(args, 0, 0))
		if digits < 0 || digits > 100 {
			return NewRangeError("toFixed() digits argument must be between 0 and 100")
		}
		return &String{Value: strconv.FormatFloat(n.Value, 'f', digits, 64)}
	},
	"toString": func(e *Evaluator, this Object, args []Object) Object {
		n, ok := this.(*Number)
		if !ok {
			return NewTypeError("receiver is not a number")
		}
		base := int(argNumber(args, 0, 10))
		if base == 10 {
			return &String{Value: FormatNumber(n.Value)}
		}
		if base < 2 || base > 36 {
			return NewRangeError("toString() radix must be between 2 and 36")
		}
		return &String{Value: strconv.FormatInt(int64(n.Value), base)}
	},
}
