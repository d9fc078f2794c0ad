package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk as one instruction per line, constant
// operands resolved inline.
func Disassemble(chunk *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(b, "%4d ", chunk.Lines[offset])
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case OP_CONSTANT, OP_GET_NAME, OP_SET_NAME, OP_DECLARE_NAME, OP_DECLARE_CONST,
		OP_GET_MEMBER, OP_SET_MEMBER, OP_TYPEOF_NAME:
		idx := chunk.ReadU16(offset + 1)
		operand := "<bad constant>"
		if int(idx) < len(chunk.Constants) {
			operand = chunk.Constants[idx].Inspect()
		}
		fmt.Fprintf(b, "%-22s %4d '%s'\n", op, idx, operand)
		return offset + 3
	case OP_JUMP, OP_JUMP_IF_FALSE, OP_JUMP_IF_FALSE_KEEP, OP_JUMP_IF_TRUE_KEEP:
		target := chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, "%-22s -> %d\n", op, target)
		return offset + 3
	case OP_ARRAY, OP_OBJECT:
		count := chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, "%-22s %4d\n", op, count)
		return offset + 3
	case OP_GET_LOCAL, OP_SET_LOCAL, OP_CALL, OP_CALL_METHOD, OP_NEW:
		fmt.Fprintf(b, "%-22s %4d\n", op, chunk.Code[offset+1])
		return offset + 2
	default:
		fmt.Fprintf(b, "%s\n", op)
		return offset + 1
	}
}
