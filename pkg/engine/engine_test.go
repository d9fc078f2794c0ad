package engine

import (
	"bytes"
	"strings"
	"testing"
)

func runOn(t *testing.T, backendName, src string) (string, string) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(&out, backendName)
	value, errs := s.Run(src, "test.js")
	if len(errs) > 0 {
		t.Fatalf("[%s] %s\n%s", backendName, src, errs[0].Error())
	}
	return value, out.String()
}

// Both backends must be observationally identical: same output, same
// final value, for every program.
func TestBackendParity(t *testing.T) {
	programs := []string{
		`function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); }
		 console.log(fib(15));`,

		`console.log("start");
		 setTimeout(() => console.log("timer"), 0);
		 Promise.resolve().then(() => console.log("micro"));
		 console.log("end");`,

		`class Base { kind() { return "base"; } }
		 class Sub extends Base { kind() { return "sub:" + super.kind(); } }
		 const s = new Sub();
		 console.log(s.kind());
		 s.kind = () => "own";
		 console.log(s.kind());`,

		`function makeCounter() { let n = 0; return () => ++n; }
		 const a = makeCounter();
		 const b = makeCounter();
		 a(); a(); b();
		 console.log(a(), b());`,

		`const { x, ...rest } = { x: 1, y: 2, z: 3 };
		 console.log(x, rest);
		 const [p, , q = 9] = [10, 20];
		 console.log(p, q);`,

		`try { null.prop; } catch (e) { console.log("caught:", e); }
		 console.log([3, 1, 2].sort().join("-"));
		 console.log("a,b,c".split(",").map((s) => s.toUpperCase()));`,

		`console.log(JSON.stringify({ list: [1, "two", null], ok: true }));
		 console.log(JSON.parse("[1, 2, 3]").length);`,

		`let total = 0;
		 for (let i = 0; i < 10; i++) { if (i % 3 === 0) { continue; } total += i; }
		 console.log(total);`,

		`async function work() {
			const v = await Promise.resolve(5);
			return v * 2;
		 }
		 work().then((v) => console.log("done", v));`,
	}

	for _, src := range programs {
		treeVal, treeOut := runOn(t, "treewalk", src)
		vmVal, vmOut := runOn(t, "vm", src)
		if treeOut != vmOut {
			t.Errorf("output diverged for:\n%s\ntreewalk: %q\nvm:       %q", src, treeOut, vmOut)
		}
		if treeVal != vmVal {
			t.Errorf("value diverged for:\n%s\ntreewalk: %q\nvm:       %q", src, treeVal, vmVal)
		}
	}
}

func TestSessionStatePersists(t *testing.T) {
	for _, name := range []string{"treewalk", "vm"} {
		var out bytes.Buffer
		s := NewSession(&out, name)
		if _, errs := s.Run("let counter = 41;", "<repl>"); len(errs) > 0 {
			t.Fatalf("[%s] %s", name, errs[0].Error())
		}
		value, errs := s.Run("counter + 1", "<repl>")
		if len(errs) > 0 {
			t.Fatalf("[%s] %s", name, errs[0].Error())
		}
		if value != "42" {
			t.Errorf("[%s] got %q", name, value)
		}
	}
}

func TestRunReportsRuntimeErrors(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, "vm")
	_, errs := s.Run("missing()", "test.js")
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics", len(errs))
	}
	if errs[0].Code != "R001" {
		t.Errorf("code %s", errs[0].Code)
	}
	if !strings.Contains(errs[0].Message, "missing is not defined") {
		t.Errorf("message %q", errs[0].Message)
	}
}

func TestRunReportsParseErrors(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, "vm")
	_, errs := s.Run("let = ;", "test.js")
	if len(errs) == 0 {
		t.Fatal("expected parse diagnostics")
	}
}

func TestTokenize(t *testing.T) {
	text, errs := Tokenize("let x = 1;", "test.js")
	if len(errs) > 0 {
		t.Fatal(errs[0].Error())
	}
	for _, want := range []string{"LET", "IDENT", "NUMBER"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %s in:\n%s", want, text)
		}
	}
}

func TestParse(t *testing.T) {
	text, errs := Parse("const f = (x) => x + 1;", "test.js")
	if len(errs) > 0 {
		t.Fatal(errs[0].Error())
	}
	for _, want := range []string{"VarStatement const f", "ArrowFunction"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestDisassemble(t *testing.T) {
	text, errs := Disassemble("let a = 1; a + 2", "test.js")
	if len(errs) > 0 {
		t.Fatal(errs[0].Error())
	}
	for _, want := range []string{"== <script> ==", "OP_DECLARE_NAME", "OP_ADD"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	text, _ = Disassemble("function f(a) { return a; } try {} finally {}", "test.js")
	if !strings.Contains(text, "(tree walk)") || !strings.Contains(text, "== f ==") {
		t.Errorf("mixed unit disassembly:\n%s", text)
	}
}

func TestParseRendersCalls(t *testing.T) {
	text, errs := Parse(`console.log("hello");`, "test.js")
	if len(errs) > 0 {
		t.Fatal(errs[0].Error())
	}
	for _, want := range []string{"CallExpression", "MemberExpression .log", `StringLiteral "hello"`} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}
