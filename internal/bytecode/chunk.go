// Package bytecode defines the compiled form of guest functions: a flat
// instruction stream with a constant pool and per-byte source positions.
package bytecode

import (
	"github.com/tandemjs/tandem/internal/evaluator"
)

// Chunk is one compiled code unit.
type Chunk struct {
	Code      []byte
	Constants []evaluator.Object
	Lines     []int
	Columns   []int
	File      string
}

func NewChunk(file string) *Chunk {
	return &Chunk{File: file}
}

// WriteOp appends an opcode, recording the source position it came from.
func (c *Chunk) WriteOp(op Opcode, line, column int) {
	c.writeByte(byte(op), line, column)
}

// WriteByte appends a one-byte operand.
func (c *Chunk) WriteByte(b byte, line, column int) {
	c.writeByte(b, line, column)
}

// WriteU16 appends a two-byte big-endian operand.
func (c *Chunk) WriteU16(v uint16, line, column int) {
	c.writeByte(byte(v>>8), line, column)
	c.writeByte(byte(v&0xff), line, column)
}

func (c *Chunk) writeByte(b byte, line, column int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, column)
}

// PatchU16 rewrites a previously emitted two-byte operand, used to
// back-fill jump targets.
func (c *Chunk) PatchU16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v & 0xff)
}

// ReadU16 decodes the operand starting at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// AddConstant appends to the pool and returns the index. Duplicate
// primitives are pooled once.
func (c *Chunk) AddConstant(obj evaluator.Object) int {
	for i, existing := range c.Constants {
		switch v := obj.(type) {
		case *evaluator.Number:
			if n, ok := existing.(*evaluator.Number); ok && n.Value == v.Value {
				return i
			}
		case *evaluator.String:
			if s, ok := existing.(*evaluator.String); ok && s.Value == v.Value {
				return i
			}
		}
	}
	c.Constants = append(c.Constants, obj)
	return len(c.Constants) - 1
}

// Function is a compiled guest function: its chunk plus the frame layout
// the VM needs. Parameters occupy the first NumParams local slots.
type Function struct {
	Name      string
	NumParams int
	NumLocals int
	Chunk     *Chunk
}
