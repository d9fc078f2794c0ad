package vm

import (
	"github.com/tandemjs/tandem/internal/bytecode"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/token"
)

// VM executes compiled chunks. It owns no state of its own beyond the
// evaluator it shares: values, globals, the event loop and the call
// stack all live there, which is what keeps the two engines equivalent.
type VM struct {
	e *evaluator.Evaluator
}

// New wires a VM to an evaluator and registers it as the compiled-call
// handler, so tree-walk code transparently invokes compiled functions
// through the machine.
func New(e *evaluator.Evaluator) *VM {
	vm := &VM{e: e}
	e.CompiledCallHandler = vm.callCompiled
	return vm
}

// callCompiled runs one compiled function invocation. Arguments beyond
// the declared parameters are dropped, missing ones default to
// undefined, exactly as the tree walk binds them.
func (vm *VM) callCompiled(e *evaluator.Evaluator, fn *evaluator.Function, this evaluator.Object, args []evaluator.Object) evaluator.Object {
	code, ok := fn.Compiled.(*bytecode.Function)
	if !ok {
		return e.ApplyFunction(fn, this, args, token.Token{})
	}
	if ex := e.PushCall(fn.Name, code.Chunk.File, 0, 0); ex != nil {
		return ex
	}
	defer e.PopCall()

	stack := make([]evaluator.Object, code.NumParams, code.NumLocals+8)
	for i := 0; i < code.NumParams; i++ {
		if i < len(args) {
			stack[i] = args[i]
		} else {
			stack[i] = evaluator.UNDEFINED
		}
	}
	return vm.run(code.Chunk, stack, fn.Env, this, false)
}

// RunScript executes a script-mode chunk against the given environment
// and returns the value of its last expression statement.
func (vm *VM) RunScript(code *bytecode.Function, env *evaluator.Environment) evaluator.Object {
	return vm.run(code.Chunk, nil, env, evaluator.UNDEFINED, true)
}

var opStrings = map[bytecode.Opcode]string{
	bytecode.OP_ADD:        "+",
	bytecode.OP_SUB:        "-",
	bytecode.OP_MUL:        "*",
	bytecode.OP_DIV:        "/",
	bytecode.OP_MOD:        "%",
	bytecode.OP_POW:        "**",
	bytecode.OP_EQ:         "==",
	bytecode.OP_NEQ:        "!=",
	bytecode.OP_STRICT_EQ:  "===",
	bytecode.OP_STRICT_NEQ: "!==",
	bytecode.OP_LT:         "<",
	bytecode.OP_LTE:        "<=",
	bytecode.OP_GT:         ">",
	bytecode.OP_GTE:        ">=",
}

func (vm *VM) run(chunk *bytecode.Chunk, stack []evaluator.Object, env *evaluator.Environment, this evaluator.Object, script bool) evaluator.Object {
	e := vm.e
	var envStack []*evaluator.Environment
	var result evaluator.Object = evaluator.UNDEFINED
	ip := 0

	push := func(v evaluator.Object) { stack = append(stack, v) }
	pop := func() evaluator.Object {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	peek := func() evaluator.Object { return stack[len(stack)-1] }

	for ip < len(chunk.Code) {
		opIP := ip
		op := bytecode.Opcode(chunk.Code[ip])
		ip++
		line, col := chunk.Lines[opIP], chunk.Columns[opIP]
		tok := token.Token{Line: line, Column: col}

		readU16 := func() int {
			v := int(chunk.ReadU16(ip))
			ip += 2
			return v
		}
		readByte := func() int {
			v := int(chunk.Code[ip])
			ip++
			return v
		}
		fail := func(ex *evaluator.Exception) evaluator.Object {
			return e.RaiseAt(ex, line, col)
		}

		switch op {
		case bytecode.OP_CONSTANT:
			push(chunk.Constants[readU16()])
		case bytecode.OP_NULL:
			push(evaluator.NULL)
		case bytecode.OP_UNDEFINED:
			push(evaluator.UNDEFINED)
		case bytecode.OP_TRUE:
			push(evaluator.TRUE)
		case bytecode.OP_FALSE:
			push(evaluator.FALSE)

		case bytecode.OP_POP:
			pop()
		case bytecode.OP_DUP:
			push(peek())
		case bytecode.OP_DUP2:
			a, b := stack[len(stack)-2], stack[len(stack)-1]
			push(a)
			push(b)

		case bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL, bytecode.OP_DIV,
			bytecode.OP_MOD, bytecode.OP_POW, bytecode.OP_EQ, bytecode.OP_NEQ,
			bytecode.OP_STRICT_EQ, bytecode.OP_STRICT_NEQ, bytecode.OP_LT,
			bytecode.OP_LTE, bytecode.OP_GT, bytecode.OP_GTE:
			right := pop()
			left := pop()
			r := evaluator.BinaryOp(opStrings[op], left, right)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)

		case bytecode.OP_INSTANCEOF:
			right := pop()
			left := pop()
			r := evaluator.InstanceOf(left, right)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)

		case bytecode.OP_NOT:
			push(evaluator.NativeBool(!evaluator.Truthy(pop())))
		case bytecode.OP_NEG:
			r := evaluator.UnaryOp("-", pop())
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)
		case bytecode.OP_TO_NUMBER:
			r := evaluator.UnaryOp("+", pop())
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)
		case bytecode.OP_TO_STRING:
			push(&evaluator.String{Value: evaluator.ToStringValue(pop())})
		case bytecode.OP_TYPEOF:
			push(&evaluator.String{Value: evaluator.TypeOf(pop())})
		case bytecode.OP_TYPEOF_NAME:
			name := constantName(chunk, readU16())
			if v, found := env.Get(name); found {
				push(&evaluator.String{Value: evaluator.TypeOf(v)})
			} else {
				push(&evaluator.String{Value: "undefined"})
			}

		case bytecode.OP_INC, bytecode.OP_DEC:
			n, isNum := peek().(*evaluator.Number)
			if !isNum {
				opName := "++"
				if op == bytecode.OP_DEC {
					opName = "--"
				}
				return fail(evaluator.NewTypeError("%s requires a number operand", opName))
			}
			delta := 1.0
			if op == bytecode.OP_DEC {
				delta = -1.0
			}
			stack[len(stack)-1] = &evaluator.Number{Value: n.Value + delta}

		case bytecode.OP_JUMP:
			ip = readU16()
		case bytecode.OP_JUMP_IF_FALSE:
			target := readU16()
			if !evaluator.Truthy(pop()) {
				ip = target
			}
		case bytecode.OP_JUMP_IF_FALSE_KEEP:
			target := readU16()
			if !evaluator.Truthy(peek()) {
				ip = target
			}
		case bytecode.OP_JUMP_IF_TRUE_KEEP:
			target := readU16()
			if evaluator.Truthy(peek()) {
				ip = target
			}

		case bytecode.OP_GET_LOCAL:
			push(stack[readByte()])
		case bytecode.OP_SET_LOCAL:
			stack[readByte()] = peek()

		case bytecode.OP_GET_NAME:
			name := constantName(chunk, readU16())
			v, found := env.Get(name)
			if !found {
				return fail(evaluator.NewReferenceError("%s is not defined", name))
			}
			push(v)
		case bytecode.OP_SET_NAME:
			name := constantName(chunk, readU16())
			found, isConst := env.Assign(name, peek())
			if isConst {
				return fail(evaluator.NewTypeError("assignment to constant variable %s", name))
			}
			if !found {
				e.Globals.Define(name, peek())
			}
		case bytecode.OP_DECLARE_NAME:
			env.Define(constantName(chunk, readU16()), pop())
		case bytecode.OP_DECLARE_CONST:
			env.DefineConst(constantName(chunk, readU16()), pop())

		case bytecode.OP_PUSH_SCOPE:
			envStack = append(envStack, env)
			env = evaluator.NewEnclosedEnvironment(env)
		case bytecode.OP_POP_SCOPE:
			env = envStack[len(envStack)-1]
			envStack = envStack[:len(envStack)-1]

		case bytecode.OP_GET_MEMBER:
			name := constantName(chunk, readU16())
			r := e.GetMember(pop(), name)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)
		case bytecode.OP_SET_MEMBER:
			name := constantName(chunk, readU16())
			value := pop()
			obj := pop()
			if r := e.SetMember(obj, name, value); evaluator.IsException(r) {
				return fail(r.(*evaluator.Exception))
			}
			push(value)
		case bytecode.OP_GET_INDEX:
			idx := pop()
			obj := pop()
			r := e.GetIndex(obj, idx)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return fail(ex)
			}
			push(r)
		case bytecode.OP_SET_INDEX:
			value := pop()
			idx := pop()
			obj := pop()
			if r := e.SetIndex(obj, idx, value); evaluator.IsException(r) {
				return fail(r.(*evaluator.Exception))
			}
			push(value)

		case bytecode.OP_ARRAY:
			count := readU16()
			elements := make([]evaluator.Object, count)
			copy(elements, stack[len(stack)-count:])
			stack = stack[:len(stack)-count]
			push(evaluator.NewArray(elements))
		case bytecode.OP_OBJECT:
			count := readU16()
			base := len(stack) - count*2
			obj := evaluator.NewObject()
			for i := 0; i < count; i++ {
				key := stack[base+i*2].(*evaluator.String)
				obj.Set(key.Value, stack[base+i*2+1])
			}
			stack = stack[:base]
			push(obj)

		case bytecode.OP_CALL:
			argc := readByte()
			args := popArgs(&stack, argc)
			callee := pop()
			r := e.CallValue(callee, evaluator.UNDEFINED, args, tok)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return ex
			}
			push(r)
		case bytecode.OP_CALL_METHOD:
			argc := readByte()
			args := popArgs(&stack, argc)
			method := pop()
			receiver := pop()
			r := e.CallValue(method, receiver, args, tok)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return ex
			}
			push(r)
		case bytecode.OP_NEW:
			argc := readByte()
			args := popArgs(&stack, argc)
			callee := pop()
			r := e.ConstructValue(callee, args, tok)
			if ex, isEx := r.(*evaluator.Exception); isEx {
				return ex
			}
			push(r)

		case bytecode.OP_THIS:
			push(this)
		case bytecode.OP_THROW:
			return fail(evaluator.NewThrow(pop()))
		case bytecode.OP_STORE_RESULT:
			result = pop()
		case bytecode.OP_RETURN:
			return pop()
		case bytecode.OP_RETURN_UNDEFINED:
			return evaluator.UNDEFINED

		default:
			return fail(evaluator.NewError(evaluator.KindError, "unknown opcode %d", op))
		}
	}

	if script {
		return result
	}
	return evaluator.UNDEFINED
}

func constantName(chunk *bytecode.Chunk, idx int) string {
	return chunk.Constants[idx].(*evaluator.String).Value
}

func popArgs(stack *[]evaluator.Object, argc int) []evaluator.Object {
	s := *stack
	args := make([]evaluator.Object, argc)
	copy(args, s[len(s)-argc:])
	*stack = s[:len(s)-argc]
	return args
}
