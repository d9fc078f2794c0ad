package vm

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/bytecode"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/eventloop"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src).Tokenize())
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}
	return program
}

// runVM executes src the way the VM backend does: annotated functions
// run as bytecode, the top level compiles in script mode when it can
// and tree-walks otherwise.
func runVM(t *testing.T, src string) (evaluator.Object, string) {
	t.Helper()
	var out bytes.Buffer
	loop := eventloop.New()
	e := evaluator.New(&out, loop)
	machine := New(e)

	program := parseProgram(t, src)
	Annotate(program)

	var result evaluator.Object
	if code, err := CompileScript(program); err == nil {
		result = machine.RunScript(code, e.Globals)
	} else {
		result = e.EvalProgram(program, e.Globals)
	}
	if !evaluator.IsException(result) {
		loop.Run()
		e.ReportUnhandledRejections()
	}
	return result, out.String()
}

func vmValue(t *testing.T, src, want string) {
	t.Helper()
	result, _ := runVM(t, src)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("%s\nunexpected exception: %s", src, ex.Trace())
	}
	if got := result.Inspect(); got != want {
		t.Errorf("%s\ngot  %s\nwant %s", src, got, want)
	}
}

func TestScriptArithmetic(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"let x = 10; x -= 4; x", "6"},
		{`"a" + "b"`, "ab"},
		{"let n = 0; while (n < 5) { n++; } n", "5"},
		{"let t = 0; for (let i = 1; i <= 4; i++) { t += i; } t", "10"},
		{"typeof missing", "undefined"},
		{"let o = { a: 1 }; o.a + o[\"a\"]", "2"},
		{"[1, 2, 3][1]", "2"},
	}
	for _, tt := range tests {
		vmValue(t, tt.src, tt.want)
	}
}

func TestScriptBlockScoping(t *testing.T) {
	vmValue(t, "let x = 1; { let x = 2; } x", "1")
	vmValue(t, "let x = 1; { x = 5; } x", "5")
}

func TestCompiledFunctionCalls(t *testing.T) {
	vmValue(t, "function add(a, b) { return a + b; } add(2, 3)", "5")
	vmValue(t, "function fib(n) { if (n < 2) { return n; } return fib(n - 1) + fib(n - 2); } fib(10)", "55")
	vmValue(t, `
		function abs(x) {
			if (x < 0) { return -x; }
			return x;
		}
		abs(-7) + abs(7)
	`, "14")
}

func TestCompiledLoops(t *testing.T) {
	vmValue(t, `
		function sumTo(n) {
			let total = 0;
			for (let i = 1; i <= n; i++) {
				if (i % 2 === 0) { continue; }
				total += i;
			}
			return total;
		}
		sumTo(10)
	`, "25")

	vmValue(t, `
		function firstOver(limit) {
			let n = 0;
			while (true) {
				n += 7;
				if (n > limit) { break; }
			}
			return n;
		}
		firstOver(30)
	`, "35")
}

func TestCompiledGlobalAccess(t *testing.T) {
	// Free names in compiled bodies resolve through the environment at
	// call time, exactly like the tree walk.
	vmValue(t, `
		let base = 100;
		function addBase(x) { return x + base; }
		base = 200;
		addBase(1)
	`, "201")
}

func TestAnnotateDecisions(t *testing.T) {
	tests := []struct {
		src      string
		compiled bool
	}{
		{"function plain(a) { return a + 1; }", true},
		{"function hasDefault(a = 1) { return a; }", false},
		{"function hasRest(...xs) { return xs; }", false},
		{"function destructures({ a }) { return a; }", false},
		{"async function later() { return 1; }", false},
		{"function tries() { try { return 1; } catch (e) { return 2; } }", false},
		{"function iterates(xs) { for (const x of xs) { return x; } }", false},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.src)
		Annotate(program)
		fns := CompiledFunctions(program)
		if got := len(fns) > 0; got != tt.compiled {
			t.Errorf("%s: compiled=%v, want %v", tt.src, got, tt.compiled)
		}
	}
}

func TestInnerFunctionsCompileInsideBridgedOuter(t *testing.T) {
	// The outer function uses a default parameter so it bridges, but its
	// inner literal is still eligible.
	program := parseProgram(t, `
		function outer(a = 1) {
			const inner = (x) => x * 2;
			return inner(a);
		}
	`)
	Annotate(program)
	fns := CompiledFunctions(program)
	if len(fns) != 1 {
		t.Fatalf("got %d compiled functions, want the inner arrow only", len(fns))
	}
}

func TestBridgeMixedCalls(t *testing.T) {
	// bridged (rest param) calling compiled calling bridged again.
	vmValue(t, `
		function bridged(...xs) { return compiled(xs[0]); }
		function compiled(x) { return helper(x) + 1; }
		function helper(y = 0) { return y * 10; }
		bridged(4)
	`, "41")
}

func TestCompiledThisAndMethods(t *testing.T) {
	result, out := runVM(t, `
		class Counter {
			constructor() { this.n = 0; }
			bump(by) { this.n += by; return this.n; }
		}
		const c = new Counter();
		c.bump(2);
		console.log(c.bump(3));
	`)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "5\n" {
		t.Errorf("got %q", out)
	}
}

func TestCompiledErrors(t *testing.T) {
	result, _ := runVM(t, "function f() { return g(); } f()")
	ex, ok := result.(*evaluator.Exception)
	if !ok || !strings.Contains(ex.Message, "g is not defined") {
		t.Fatalf("got %v, want reference error", result)
	}

	result, _ = runVM(t, "function f(x) { return x.prop; } f(null)")
	ex, ok = result.(*evaluator.Exception)
	if !ok || ex.Kind != evaluator.KindTypeError {
		t.Fatalf("got %v, want TypeError", result)
	}
}

func TestConstLocalWriteBridges(t *testing.T) {
	// A write to a const local disqualifies the body so the runtime
	// error matches the tree walk.
	program := parseProgram(t, "function f() { const k = 1; k = 2; return k; }")
	Annotate(program)
	if fns := CompiledFunctions(program); len(fns) != 0 {
		t.Fatal("const reassignment should not compile")
	}

	result, _ := runVM(t, "function f() { const k = 1; k = 2; } f()")
	ex, ok := result.(*evaluator.Exception)
	if !ok || ex.Kind != evaluator.KindTypeError {
		t.Fatalf("got %v, want TypeError", result)
	}
}

func TestConditionalDeclarationBridges(t *testing.T) {
	// An unbraced declaration under if/while/for may execute zero times,
	// so its stack slot cannot be fixed at compile time; such bodies
	// bridge. Braced bodies stay compilable: block scoping pops its
	// declarations on every path.
	tests := []struct {
		src      string
		compiled bool
	}{
		{"function f(c) { if (c) var x = 1; var y = 2; return y; }", false},
		{"function f(c) { if (c) { let x = 1; } let y = 2; return y; }", true},
		{"function f(c) { while (c) var x = 1; }", false},
		{"function f(n) { for (let i = 0; i < n; i++) var x = i; }", false},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.src)
		Annotate(program)
		fns := CompiledFunctions(program)
		if got := len(fns) > 0; got != tt.compiled {
			t.Errorf("%s: compiled=%v, want %v", tt.src, got, tt.compiled)
		}
	}

	vmValue(t, "function f(c) { if (c) var x = 1; var y = 2; return y; } f(false)", "2")
	vmValue(t, "function f(c) { if (c) { let x = 1; } let y = 2; return y; } f(true)", "2")
}

func TestOversizedBodiesBridge(t *testing.T) {
	var b strings.Builder
	b.WriteString("function big() {\n")
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "let v%d = %d;\n", i, i)
	}
	b.WriteString("return v0;\n}")

	program := parseProgram(t, b.String())
	Annotate(program)
	if fns := CompiledFunctions(program); len(fns) != 0 {
		t.Fatal("a body needing more local slots than the operand encodes should not compile")
	}
}

func TestScriptFallback(t *testing.T) {
	// Top-level try is not compilable, so the unit tree-walks, but the
	// annotated function still runs on the VM through the bridge.
	result, out := runVM(t, `
		function double(x) { return x * 2; }
		try {
			console.log(double(21));
		} catch (e) {
			console.log("unreachable");
		}
	`)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "42\n" {
		t.Errorf("got %q", out)
	}
}

func TestUpdateAndCompoundForms(t *testing.T) {
	vmValue(t, "let i = 5; i++; ++i; i", "7")
	vmValue(t, "let i = 5; i--", "5")
	vmValue(t, "let i = 5; --i", "4")
	vmValue(t, "let o = { n: 1 }; o.n += 4; o.n *= 2; o.n", "10")
	vmValue(t, "let a = [1, 2]; a[0] += 9; a[0]", "10")
}

func TestLogicalShortCircuit(t *testing.T) {
	vmValue(t, `0 || "fallback"`, "fallback")
	vmValue(t, "1 && 2", "2")
	vmValue(t, "let called = false; const f = () => { called = true; return 1; }; false && f(); called", "false")
}

func TestDisassembleOutput(t *testing.T) {
	program := parseProgram(t, "function add(a, b) { return a + b; }")
	Annotate(program)
	fns := CompiledFunctions(program)
	if len(fns) != 1 {
		t.Fatalf("got %d compiled functions", len(fns))
	}
	text := bytecode.Disassemble(fns[0].Chunk, fns[0].Name)
	for _, want := range []string{"== add ==", "OP_GET_LOCAL", "OP_ADD", "OP_RETURN"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly missing %q:\n%s", want, text)
		}
	}
}
