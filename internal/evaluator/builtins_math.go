package evaluator

import (
	"math"
	"math/rand"
)

func mathObject() *ObjectValue {
	m := NewObject()
	m.Set("PI", &Number{Value: math.Pi})
	m.Set("E", &Number{Value: math.E})

	unary := func(name string, fn func(float64) float64) {
		m.Set(name, &Builtin{Name: name, Fn: func(e *Evaluator, _ Object, args []Object) Object {
			if len(args) == 0 {
				return &Number{Value: math.NaN()}
			}
			n, ok := args[0].(*Number)
			if !ok {
				return &Number{Value: math.NaN()}
			}
			return &Number{Value: fn(n.Value)}
		}})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", func(v float64) float64 { return math.Floor(v + 0.5) })
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return v
		}
	})
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)

	m.Set("pow", &Builtin{Name: "pow", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		if len(args) < 2 {
			return &Number{Value: math.NaN()}
		}
		a, aok := args[0].(*Number)
		b, bok := args[1].(*Number)
		if !aok || !bok {
			return &Number{Value: math.NaN()}
		}
		return &Number{Value: math.Pow(a.Value, b.Value)}
	}})
	m.Set("max", &Builtin{Name: "max", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		return mathExtreme(args, math.Inf(-1), math.Max)
	}})
	m.Set("min", &Builtin{Name: "min", Fn: func(e *Evaluator, _ Object, args []Object) Object {
		return mathExtreme(args, math.Inf(1), math.Min)
	}})
	m.Set("random", &Builtin{Name: "random", Fn: func(e *Evaluator, _ Object, _ []Object) Object {
		return &Number{Value: rand.Float64()}
	}})
	return m
}

func mathExtreme(args []Object, start float64, pick func(a, b float64) float64) Object {
	acc := start
	for _, a := range args {
		n, ok := a.(*Number)
		if !ok || math.IsNaN(n.Value) {
			return &Number{Value: math.NaN()}
		}
		acc = pick(acc, n.Value)
	}
	return &Number{Value: acc}
}
