package bytecode

// Opcode is a single VM instruction tag. Operands follow inline in the
// code stream; sizes are fixed per opcode.
type Opcode byte

const (
	// Constants and literals.
	OP_CONSTANT  Opcode = iota // u16 constant index
	OP_NULL                    // push null
	OP_UNDEFINED               // push undefined
	OP_TRUE                    // push true
	OP_FALSE                   // push false

	// Stack management.
	OP_POP
	OP_DUP
	OP_DUP2 // duplicate the top two values, preserving order

	// Arithmetic and comparison. Operands come off the stack.
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_POW
	OP_EQ
	OP_NEQ
	OP_STRICT_EQ
	OP_STRICT_NEQ
	OP_LT
	OP_LTE
	OP_GT
	OP_GTE
	OP_INSTANCEOF

	// Unary.
	OP_NOT
	OP_NEG
	OP_TYPEOF
	OP_TYPEOF_NAME // u16 name constant; unresolvable names yield "undefined"
	OP_TO_NUMBER
	OP_TO_STRING
	OP_INC
	OP_DEC

	// Jumps. u16 absolute target.
	OP_JUMP
	OP_JUMP_IF_FALSE      // pops the condition
	OP_JUMP_IF_FALSE_KEEP // leaves the condition for || and && results
	OP_JUMP_IF_TRUE_KEEP

	// Locals. u8 slot.
	OP_GET_LOCAL
	OP_SET_LOCAL

	// Environment names. u16 constant index of the name string.
	OP_GET_NAME
	OP_SET_NAME
	OP_DECLARE_NAME
	OP_DECLARE_CONST

	// Lexical scopes, used by script-mode chunks where declarations go
	// through the environment chain instead of stack slots.
	OP_PUSH_SCOPE
	OP_POP_SCOPE

	// Script-mode result register: the value of the last expression
	// statement, reported by the host.
	OP_STORE_RESULT

	// Properties. Named ops take a u16 name constant; indexed ops use
	// the stack.
	OP_GET_MEMBER
	OP_SET_MEMBER
	OP_GET_INDEX
	OP_SET_INDEX

	// Composite literals. u16 element or property count.
	OP_ARRAY
	OP_OBJECT

	// Calls. u8 argument count.
	OP_CALL        // stack: callee, args...
	OP_CALL_METHOD // stack: receiver, method, args...
	OP_NEW         // stack: class, args...

	OP_THIS
	OP_THROW
	OP_RETURN
	OP_RETURN_UNDEFINED
)

// OpcodeNames maps opcodes to their mnemonic for the disassembler.
var OpcodeNames = map[Opcode]string{
	OP_CONSTANT:           "OP_CONSTANT",
	OP_NULL:               "OP_NULL",
	OP_UNDEFINED:          "OP_UNDEFINED",
	OP_TRUE:               "OP_TRUE",
	OP_FALSE:              "OP_FALSE",
	OP_POP:                "OP_POP",
	OP_DUP:                "OP_DUP",
	OP_DUP2:               "OP_DUP2",
	OP_ADD:                "OP_ADD",
	OP_SUB:                "OP_SUB",
	OP_MUL:                "OP_MUL",
	OP_DIV:                "OP_DIV",
	OP_MOD:                "OP_MOD",
	OP_POW:                "OP_POW",
	OP_EQ:                 "OP_EQ",
	OP_NEQ:                "OP_NEQ",
	OP_STRICT_EQ:          "OP_STRICT_EQ",
	OP_STRICT_NEQ:         "OP_STRICT_NEQ",
	OP_LT:                 "OP_LT",
	OP_LTE:                "OP_LTE",
	OP_GT:                 "OP_GT",
	OP_GTE:                "OP_GTE",
	OP_INSTANCEOF:         "OP_INSTANCEOF",
	OP_NOT:                "OP_NOT",
	OP_NEG:                "OP_NEG",
	OP_TYPEOF:             "OP_TYPEOF",
	OP_TYPEOF_NAME:        "OP_TYPEOF_NAME",
	OP_TO_NUMBER:          "OP_TO_NUMBER",
	OP_TO_STRING:          "OP_TO_STRING",
	OP_INC:                "OP_INC",
	OP_DEC:                "OP_DEC",
	OP_JUMP:               "OP_JUMP",
	OP_JUMP_IF_FALSE:      "OP_JUMP_IF_FALSE",
	OP_JUMP_IF_FALSE_KEEP: "OP_JUMP_IF_FALSE_KEEP",
	OP_JUMP_IF_TRUE_KEEP:  "OP_JUMP_IF_TRUE_KEEP",
	OP_GET_LOCAL:          "OP_GET_LOCAL",
	OP_SET_LOCAL:          "OP_SET_LOCAL",
	OP_GET_NAME:           "OP_GET_NAME",
	OP_SET_NAME:           "OP_SET_NAME",
	OP_DECLARE_NAME:       "OP_DECLARE_NAME",
	OP_DECLARE_CONST:      "OP_DECLARE_CONST",
	OP_PUSH_SCOPE:         "OP_PUSH_SCOPE",
	OP_POP_SCOPE:          "OP_POP_SCOPE",
	OP_STORE_RESULT:       "OP_STORE_RESULT",
	OP_GET_MEMBER:         "OP_GET_MEMBER",
	OP_SET_MEMBER:         "OP_SET_MEMBER",
	OP_GET_INDEX:          "OP_GET_INDEX",
	OP_SET_INDEX:          "OP_SET_INDEX",
	OP_ARRAY:              "OP_ARRAY",
	OP_OBJECT:             "OP_OBJECT",
	OP_CALL:               "OP_CALL",
	OP_CALL_METHOD:        "OP_CALL_METHOD",
	OP_NEW:                "OP_NEW",
	OP_THIS:               "OP_THIS",
	OP_THROW:              "OP_THROW",
	OP_RETURN:             "OP_RETURN",
	OP_RETURN_UNDEFINED:   "OP_RETURN_UNDEFINED",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}
