package evaluator

import (
	"fmt"
	"strings"
)

// Error kinds raised by the runtime itself. Guest throws carry whatever
// value the program threw; these tag host-raised conditions.
const (
	KindError     = "Error"
	KindTypeError = "TypeError"
	KindRefError  = "ReferenceError"
	KindRangeErr  = "RangeError"
)

// StackFrame is one entry of the guest call stack, captured when an
// exception is raised.
type StackFrame struct {
	FuncName string
	File     string
	Line     int
	Column   int
}

func (f StackFrame) String() string {
	name := f.FuncName
	if name == "" {
		name = "<anonymous>"
	}
	if f.File == "" {
		return fmt.Sprintf("    at %s (line %d)", name, f.Line)
	}
	return fmt.Sprintf("    at %s (%s:%d:%d)", name, f.File, f.Line, f.Column)
}

// Exception is an in-flight throw. It travels through evaluation like a
// signal object until a catch clause or the host boundary absorbs it.
type Exception struct {
	Kind    string
	Value   Object
	Message string
	File    string
	Line    int
	Column  int
	Stack   []StackFrame
}

func (ex *Exception) Type() ObjectType { return EXCEPTION_OBJ }

func (ex *Exception) Inspect() string {
	if ex.Kind == "" {
		return "Uncaught " + ex.Value.Inspect()
	}
	return fmt.Sprintf("%s: %s", ex.Kind, ex.Message)
}

// Trace renders the message plus the captured guest stack.
func (ex *Exception) Trace() string {
	var b strings.Builder
	b.WriteString(ex.Inspect())
	for i := len(ex.Stack) - 1; i >= 0; i-- {
		b.WriteString("\n")
		b.WriteString(ex.Stack[i].String())
	}
	return b.String()
}

// ThrownValue is what a catch clause binds: the guest value for guest
// throws, a message string for host-raised errors.
func (ex *Exception) ThrownValue() Object {
	if ex.Value != nil {
		return ex.Value
	}
	return &String{Value: ex.Kind + ": " + ex.Message}
}

// NewError builds a host error of the given kind. Position and call
// stack are attached when the evaluator raises it.
func NewError(kind, format string, args ...interface{}) *Exception {
	return &Exception{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...interface{}) *Exception {
	return NewError(KindTypeError, format, args...)
}

func NewReferenceError(format string, args ...interface{}) *Exception {
	return NewError(KindRefError, format, args...)
}

func NewRangeError(format string, args ...interface{}) *Exception {
	return NewError(KindRangeErr, format, args...)
}

// NewThrow wraps a guest value thrown by a throw statement.
func NewThrow(val Object) *Exception {
	return &Exception{Value: val}
}
