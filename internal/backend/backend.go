// Package backend selects and drives an execution strategy over a parsed
// program. Both strategies share one runtime, so a program observes the
// same globals, output and scheduling regardless of which one runs it.
package backend

import (
	"io"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/eventloop"
	"github.com/tandemjs/tandem/internal/modules"
	"github.com/tandemjs/tandem/internal/vm"
)

// Runtime bundles the state shared by every execution: evaluator, event
// loop, module loader and the VM registered as compiled-call handler.
type Runtime struct {
	Eval *evaluator.Evaluator
	Loop *eventloop.Loop
	VM   *vm.VM
}

func NewRuntime(out io.Writer) *Runtime {
	loop := eventloop.New()
	e := evaluator.New(out, loop)
	modules.NewLoader().Install(e)
	return &Runtime{
		Eval: e,
		Loop: loop,
		VM:   vm.New(e),
	}
}

// Backend is one execution strategy.
type Backend interface {
	Name() string
	Execute(program *ast.Program, rt *Runtime) evaluator.Object
}

// finish drains the event loop and reports unhandled rejections, unless
// the synchronous phase already died.
func finish(rt *Runtime, result evaluator.Object) evaluator.Object {
	if evaluator.IsException(result) {
		return result
	}
	rt.Loop.Run()
	rt.Eval.ReportUnhandledRejections()
	return result
}

// TreeWalkBackend interprets the AST directly. No function is ever
// compiled; everything runs on the evaluator.
type TreeWalkBackend struct{}

func (TreeWalkBackend) Name() string { return "treewalk" }

func (TreeWalkBackend) Execute(program *ast.Program, rt *Runtime) evaluator.Object {
	return finish(rt, rt.Eval.EvalProgram(program, rt.Eval.Globals))
}

// VMBackend compiles what it can and bridges the rest. Function bodies
// the compiler accepts run as bytecode; refused bodies and the top level
// (when it uses uncompilable constructs) run on the tree walk, calling
// back into the machine for compiled callees.
type VMBackend struct{}

func (VMBackend) Name() string { return "vm" }

func (VMBackend) Execute(program *ast.Program, rt *Runtime) evaluator.Object {
	vm.Annotate(program)
	if program.File != "" {
		rt.Eval.File = program.File
	}
	if code, err := vm.CompileScript(program); err == nil {
		return finish(rt, rt.VM.RunScript(code, rt.Eval.Globals))
	}
	return finish(rt, rt.Eval.EvalProgram(program, rt.Eval.Globals))
}

// ForName maps a backend name to its implementation; unknown names get
// the tree walk.
func ForName(name string) Backend {
	if name == "vm" {
		return VMBackend{}
	}
	return TreeWalkBackend{}
}
