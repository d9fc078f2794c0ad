// Package engine is the embedding surface. A Session holds a live
// runtime, so consecutive Run calls share globals, which is what a REPL
// needs. The inspection passes (Tokenize, Parse, Disassemble) are
// stateless and never execute anything.
package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/backend"
	"github.com/tandemjs/tandem/internal/bytecode"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/parser"
	"github.com/tandemjs/tandem/internal/pipeline"
	"github.com/tandemjs/tandem/internal/token"
	"github.com/tandemjs/tandem/internal/vm"
)

// Session runs programs against one persistent runtime.
type Session struct {
	rt *backend.Runtime
	bk backend.Backend
}

// NewSession builds a session writing guest output to out. backendName
// is "vm" or "treewalk"; anything else falls back to the tree walk.
func NewSession(out io.Writer, backendName string) *Session {
	return &Session{
		rt: backend.NewRuntime(out),
		bk: backend.ForName(backendName),
	}
}

// BackendName reports which strategy this session executes on.
func (s *Session) BackendName() string { return s.bk.Name() }

// Run lexes, parses and executes source. The returned string is the
// inspect form of the program's final expression value, empty when the
// program ends in undefined or a non-expression statement. Diagnostics
// are non-nil exactly when the unit failed.
func (s *Session) Run(source, file string) (string, []*diagnostics.Diagnostic) {
	ctx := pipeline.NewPipelineContext(source, file)
	ctx = pipeline.New(
		lexer.LexerProcessor{},
		parser.ParserProcessor{},
		backend.ExecutionProcessor{Backend: s.bk, Runtime: s.rt},
	).Run(ctx)
	if len(ctx.Errors) > 0 {
		return "", ctx.Errors
	}
	if obj, ok := ctx.Result.(evaluator.Object); ok && obj != evaluator.UNDEFINED {
		return obj.Inspect(), nil
	}
	return "", nil
}

// frontend runs the non-executing stages only.
func frontend(source, file string) (*pipeline.PipelineContext, []*diagnostics.Diagnostic) {
	ctx := pipeline.NewPipelineContext(source, file)
	ctx = pipeline.New(lexer.LexerProcessor{}, parser.ParserProcessor{}).Run(ctx)
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors
	}
	return ctx, nil
}

// Tokenize renders the token stream of source, one token per line.
func Tokenize(source, file string) (string, []*diagnostics.Diagnostic) {
	ctx := pipeline.NewPipelineContext(source, file)
	ctx = pipeline.New(lexer.LexerProcessor{}).Run(ctx)
	if len(ctx.Errors) > 0 {
		return "", ctx.Errors
	}
	var b strings.Builder
	for _, tok := range ctx.Tokens {
		if tok.Type == token.EOF {
			break
		}
		fmt.Fprintf(&b, "%3d:%-3d %-10s %s\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
	}
	return b.String(), nil
}

// Parse renders the syntax tree of source as an indented outline.
func Parse(source, file string) (string, []*diagnostics.Diagnostic) {
	ctx, errs := frontend(source, file)
	if errs != nil {
		return "", errs
	}
	return ast.Dump(ctx.AstRoot), nil
}

// Disassemble renders the bytecode the VM backend would run for source:
// the script chunk when the top level compiles, then every compiled
// function body in source order. Bridged bodies are listed by name so
// the reader can see what stayed on the tree walk.
func Disassemble(source, file string) (string, []*diagnostics.Diagnostic) {
	ctx, errs := frontend(source, file)
	if errs != nil {
		return "", errs
	}
	program := ctx.AstRoot
	vm.Annotate(program)

	var b strings.Builder
	if code, err := vm.CompileScript(program); err == nil {
		b.WriteString(bytecode.Disassemble(code.Chunk, code.Name))
	} else {
		b.WriteString("== <script> == (tree walk)\n")
	}
	for _, fn := range vm.CompiledFunctions(program) {
		b.WriteString("\n")
		b.WriteString(bytecode.Disassemble(fn.Chunk, fn.Name))
	}
	return b.String(), nil
}
