// Package diagnostics defines positioned, coded errors produced by the
// lexing, parsing and execution stages. Diagnostics accumulate on the
// pipeline context; they are values, not panics.
package diagnostics

import (
	"fmt"

	"github.com/tandemjs/tandem/internal/token"
)

// Code identifies a diagnostic class. L = lexer, P = parser, R = runtime.
type Code string

const (
	ErrL001 Code = "L001" // invalid character
	ErrL002 Code = "L002" // unterminated string
	ErrL003 Code = "L003" // unterminated template literal
	ErrL004 Code = "L004" // malformed number literal

	ErrP001 Code = "P001" // unexpected token
	ErrP002 Code = "P002" // expected token
	ErrP003 Code = "P003" // invalid assignment target
	ErrP004 Code = "P004" // invalid destructuring pattern
	ErrP005 Code = "P005" // invalid import/export form

	ErrR001 Code = "R001" // runtime error
)

// Diagnostic is a single positioned error report.
type Diagnostic struct {
	Code    Code
	Message string
	File    string
	Line    int
	Column  int
}

func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		if d.File != "" {
			return fmt.Sprintf("[%s] %s:%d:%d: %s", d.Code, d.File, d.Line, d.Column, d.Message)
		}
		return fmt.Sprintf("[%s] %d:%d: %s", d.Code, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// NewError creates a diagnostic positioned at the given token.
func NewError(code Code, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// NewErrorAt creates a diagnostic with an explicit position.
func NewErrorAt(code Code, line, column int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}
