package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tandemjs/tandem/internal/eventloop"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/parser"
)

// evalSource runs a program on the tree walk and returns the final
// value together with everything it wrote, event loop drained.
func evalSource(t *testing.T, src string) (Object, string) {
	t.Helper()
	var out bytes.Buffer
	loop := eventloop.New()
	e := New(&out, loop)

	toks := lexer.New(src).Tokenize()
	p := parser.New(toks)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}

	result := e.EvalProgram(program, e.Globals)
	if !IsException(result) {
		loop.Run()
		e.ReportUnhandledRejections()
	}
	return result, out.String()
}

func expectValue(t *testing.T, src, want string) {
	t.Helper()
	result, _ := evalSource(t, src)
	if ex, ok := result.(*Exception); ok {
		t.Fatalf("%s\nunexpected exception: %s", src, ex.Trace())
	}
	if got := result.Inspect(); got != want {
		t.Errorf("%s\ngot  %s\nwant %s", src, got, want)
	}
}

func expectOutput(t *testing.T, src, want string) {
	t.Helper()
	result, out := evalSource(t, src)
	if ex, ok := result.(*Exception); ok {
		t.Fatalf("%s\nunexpected exception: %s", src, ex.Trace())
	}
	if out != want {
		t.Errorf("%s\ngot  %q\nwant %q", src, out, want)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 / 4", "2.5"},
		{"7 % 3", "1"},
		{"-5 + 3", "-2"},
		{"0.1 + 0.2", "0.30000000000000004"},
		{"1 / 0", "Infinity"},
		{"-1 / 0", "-Infinity"},
		{"0 / 0", "NaN"},
		{"2 ** 10", "1024"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct{ src, want string }{
		{`"foo" + "bar"`, "foobar"},
		{`"x" + 1`, "x1"},
		{`1 + "x"`, "1x"},
		{"`a${1 + 1}c`", "a2c"},
		{`"abc".length`, "3"},
		{`"日本語".length`, "3"},
		{`"hello"[1]`, "e"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestEquality(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 === 1", "true"},
		{`1 === "1"`, "false"},
		{`1 == "1"`, "true"},
		{"null == undefined", "true"},
		{"null === undefined", "false"},
		{"null == 0", "false"},
		{"NaN === NaN", "false"},
		{"true == 1", "true"},
		{"[] === []", "false"},
		{"let a = [1]; let b = a; a === b", "true"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct{ src, want string }{
		{`0 || "fallback"`, "fallback"},
		{"1 && 2", "2"},
		{`"" && "x"`, ""},
		{"!0", "true"},
		{"!!{}", "true"},
		{"true ? 1 : 2", "1"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestTypeof(t *testing.T) {
	tests := []struct{ src, want string }{
		{"typeof 1", "number"},
		{`typeof "x"`, "string"},
		{"typeof true", "boolean"},
		{"typeof undefined", "undefined"},
		{"typeof null", "object"},
		{"typeof {}", "object"},
		{"typeof []", "object"},
		{"typeof (() => 1)", "function"},
		{"typeof neverDeclared", "undefined"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestVariablesAndScope(t *testing.T) {
	expectValue(t, "let x = 1; x = x + 1; x", "2")
	expectValue(t, "let x = 1; { let x = 2; } x", "1")
	expectValue(t, "const k = 10; k * 2", "20")
	expectValue(t, "var v = 3; v", "3")

	result, _ := evalSource(t, "const k = 1; k = 2;")
	ex, ok := result.(*Exception)
	if !ok || ex.Kind != KindTypeError {
		t.Fatalf("const reassignment: got %v, want TypeError", result)
	}
}

func TestControlFlow(t *testing.T) {
	expectOutput(t, `
		let total = 0;
		for (let i = 0; i < 5; i++) {
			if (i === 3) { continue; }
			total += i;
		}
		console.log(total);
	`, "7\n")

	expectOutput(t, `
		let n = 0;
		while (true) {
			n++;
			if (n === 4) { break; }
		}
		console.log(n);
	`, "4\n")

	expectOutput(t, `
		for (const x of [10, 20, 30]) { console.log(x); }
		for (const ch of "ab") { console.log(ch); }
	`, "10\n20\n30\na\nb\n")
}

func TestLoopScopePerIteration(t *testing.T) {
	expectOutput(t, `
		const fns = [];
		for (let i = 0; i < 3; i++) {
			fns.push(() => i);
		}
		console.log(fns[0](), fns[1](), fns[2]());
	`, "0 1 2\n")
}

func TestFunctionsAndClosures(t *testing.T) {
	expectValue(t, `
		function makeCounter() {
			let n = 0;
			return () => { n++; return n; };
		}
		const c = makeCounter();
		c(); c(); c()
	`, "3")

	expectValue(t, "function add(a, b = 10) { return a + b; } add(1)", "11")
	expectValue(t, "function sum(...xs) { let t = 0; for (const x of xs) { t += x; } return t; } sum(1, 2, 3)", "6")
	expectValue(t, "const f = (x) => x * 2; f(21)", "42")
	expectValue(t, "function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); } fib(10)", "55")
}

func TestArrowThisBinding(t *testing.T) {
	expectOutput(t, `
		const obj = {
			value: 42,
			regular: function () { return this.value; },
			viaArrow: function () {
				const f = () => this.value;
				return f();
			}
		};
		console.log(obj.regular(), obj.viaArrow());
	`, "42 42\n")
}

func TestClasses(t *testing.T) {
	expectOutput(t, `
		class Point {
			constructor(x, y) { this.x = x; this.y = y; }
			dist() { return Math.sqrt(this.x * this.x + this.y * this.y); }
			static origin() { return new Point(0, 0); }
		}
		const p = new Point(3, 4);
		console.log(p.dist());
		console.log(p instanceof Point);
		console.log(Point.origin().x);
		console.log(p);
	`, "5\ntrue\n0\nPoint { x: 3, y: 4 }\n")
}

func TestInheritance(t *testing.T) {
	expectOutput(t, `
		class Animal {
			constructor(name) { this.name = name; }
			speak() { return this.name + " makes a sound"; }
		}
		class Dog extends Animal {
			constructor(name) { super(name); }
			speak() { return super.speak() + " (woof)"; }
		}
		const d = new Dog("Rex");
		console.log(d.speak());
		console.log(d instanceof Dog, d instanceof Animal);
	`, "Rex makes a sound (woof)\ntrue true\n")
}

func TestRegExpBuiltins(t *testing.T) {
	expectValue(t, `new RegExp("ab+c").test("xabbcy")`, "true")
	expectValue(t, `new RegExp("hi", "i").test("say HI")`, "true")
	expectValue(t, `new RegExp("z").test("abc")`, "false")
	expectValue(t, `new RegExp("(\\d+)").exec("order 42")[1]`, "42")
	expectValue(t, `"a-b-c".replace(new RegExp("-", "g"), "+")`, "a+b+c")

	result, _ := evalSource(t, `new RegExp("a", "q")`)
	if !IsException(result) {
		t.Fatalf("got %v, want error for unknown flag", result)
	}
}

func TestConstructorReturnOverride(t *testing.T) {
	// An object returned from a constructor replaces the fresh instance;
	// primitive returns are ignored.
	expectValue(t, `
		class Wrapped {
			constructor() { return { marker: 7 }; }
		}
		new Wrapped().marker
	`, "7")

	expectOutput(t, `
		class Plain {
			constructor() { this.n = 1; return 42; }
		}
		const p = new Plain();
		console.log(p.n, p instanceof Plain);
	`, "1 true\n")
}

func TestArrayIndexBounds(t *testing.T) {
	result, _ := evalSource(t, `const a = [1]; a[1e20] = 2;`)
	ex, ok := result.(*Exception)
	if !ok || ex.Kind != KindRangeErr {
		t.Fatalf("got %v, want RangeError for out-of-range index", result)
	}

	result, _ = evalSource(t, `const a = []; a.length = 1e20;`)
	ex, ok = result.(*Exception)
	if !ok || ex.Kind != KindRangeErr {
		t.Fatalf("got %v, want RangeError for out-of-range length", result)
	}

	expectValue(t, `
		const a = [1];
		let caught = "";
		try { a[Infinity] = 2; } catch (e) { caught = e; }
		caught
	`, "RangeError: array index Infinity out of range")

	expectValue(t, `const a = [1]; a[2] = 9; a.length`, "3")
}

func TestPrototypeShadowing(t *testing.T) {
	expectOutput(t, `
		class Base { kind() { return "base"; } }
		class Sub extends Base { kind() { return "sub"; } }
		const s = new Sub();
		console.log(s.kind());
		s.kind = () => "own";
		console.log(s.kind());
		delete s.kind;
		console.log(s.kind());
	`, "sub\nown\nsub\n")
}

func TestDestructuring(t *testing.T) {
	expectOutput(t, `
		const { a, b = 5, ...rest } = { a: 1, c: 3, d: 4 };
		console.log(a, b, rest);
		const [first, , third = 30, ...tail] = [1, 2, undefined, 4, 5];
		console.log(first, third, tail);
		function greet({ name, loud = false }) {
			return loud ? name.toUpperCase() : name;
		}
		console.log(greet({ name: "ada", loud: true }));
	`, "1 5 { c: 3, d: 4 }\n1 30 [4, 5]\nADA\n")
}

func TestSpread(t *testing.T) {
	expectOutput(t, `
		const xs = [2, 3];
		console.log([1, ...xs, 4]);
		console.log(Math.max(...xs, 10));
		const base = { a: 1, b: 2 };
		console.log({ ...base, b: 9 });
	`, "[1, 2, 3, 4]\n10\n{ a: 1, b: 9 }\n")
}

func TestExceptions(t *testing.T) {
	expectOutput(t, `
		try {
			throw "boom";
		} catch (e) {
			console.log("caught", e);
		} finally {
			console.log("finally");
		}
	`, "caught boom\nfinally\n")

	expectOutput(t, `
		function f() {
			try {
				return "from try";
			} finally {
				console.log("cleanup");
			}
		}
		console.log(f());
	`, "cleanup\nfrom try\n")

	result, _ := evalSource(t, `throw { code: 7 };`)
	ex, ok := result.(*Exception)
	if !ok {
		t.Fatalf("got %v, want exception", result)
	}
	if got := ex.Inspect(); got != "Uncaught { code: 7 }" {
		t.Errorf("got %q", got)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct{ src, kind, contains string }{
		{"missing", KindRefError, "missing is not defined"},
		{"null.x", KindTypeError, "cannot read property"},
		{"undefined.x", KindTypeError, "cannot read property"},
		{"const f = 1; f()", KindTypeError, "is not a function"},
		{"1 - {}", KindTypeError, "unsupported operand types"},
		{"class A {} A()", KindTypeError, "must be called with new"},
		{"new 42()", KindTypeError, "not a constructor"},
	}
	for _, tt := range tests {
		result, _ := evalSource(t, tt.src)
		ex, ok := result.(*Exception)
		if !ok {
			t.Fatalf("%s: got %v, want exception", tt.src, result)
		}
		if ex.Kind != tt.kind {
			t.Errorf("%s: kind %s, want %s", tt.src, ex.Kind, tt.kind)
		}
		if !strings.Contains(ex.Message, tt.contains) {
			t.Errorf("%s: message %q, want containing %q", tt.src, ex.Message, tt.contains)
		}
	}
}

func TestStackOverflow(t *testing.T) {
	result, _ := evalSource(t, "function f() { return f(); } f()")
	ex, ok := result.(*Exception)
	if !ok || !strings.Contains(ex.Message, "call stack") {
		t.Fatalf("got %v, want stack overflow error", result)
	}
}

func TestCatchBindsHostErrors(t *testing.T) {
	expectOutput(t, `
		try { null.prop; } catch (e) { console.log(e); }
	`, "TypeError: cannot read property \"prop\" of null\n")
}

func TestConsole(t *testing.T) {
	expectOutput(t, `console.log(1, "two", [3], { n: 4 }, null, undefined, true);`,
		"1 two [3] { n: 4 } null undefined true\n")
	expectOutput(t, `console.log("nested", [1, "a", [true]]);`,
		"nested [1, 'a', [true]]\n")
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1e21", "1e+21"},
		{"123456789012345680000", "123456789012345680000"},
		{"1.5e-7", "1.5e-07"},
		{"(0.5).toFixed(2)", "0.50"},
		{"(255).toString(16)", "ff"},
		{"(8).toString(2)", "1000"},
	}
	for _, tt := range tests {
		expectValue(t, tt.src, tt.want)
	}
}

func TestPromiseOrdering(t *testing.T) {
	expectOutput(t, `
		console.log("start");
		setTimeout(() => console.log("timer"), 0);
		Promise.resolve().then(() => console.log("micro1")).then(() => console.log("micro2"));
		console.log("end");
	`, "start\nend\nmicro1\nmicro2\ntimer\n")
}

func TestTimerOrdering(t *testing.T) {
	expectOutput(t, `
		setTimeout(() => console.log("late"), 10);
		setTimeout(() => console.log("early"), 1);
		setTimeout(() => console.log("tie2"), 5);
		setTimeout(() => console.log("tie1"), 5);
	`, "early\ntie2\ntie1\nlate\n")
}

func TestClearTimeout(t *testing.T) {
	expectOutput(t, `
		const id = setTimeout(() => console.log("never"), 5);
		clearTimeout(id);
		setTimeout(() => console.log("kept"), 10);
	`, "kept\n")
}

func TestPromiseChaining(t *testing.T) {
	expectOutput(t, `
		Promise.resolve(1)
			.then((v) => v + 1)
			.then((v) => { console.log("value", v); });
	`, "value 2\n")

	expectOutput(t, `
		Promise.reject("bad")
			.catch((e) => { console.log("handled", e); return "ok"; })
			.then((v) => console.log(v));
	`, "handled bad\nok\n")

	expectOutput(t, `
		new Promise((resolve) => { resolve(Promise.resolve("inner")); })
			.then((v) => console.log(v));
	`, "inner\n")
}

func TestPromiseAll(t *testing.T) {
	expectOutput(t, `
		const delayed = (v, ms) => new Promise((resolve) => setTimeout(() => resolve(v), ms));
		Promise.all([delayed("a", 5), delayed("b", 1), Promise.resolve("c")])
			.then((vs) => console.log(vs));
	`, "['a', 'b', 'c']\n")
}

func TestUnhandledRejection(t *testing.T) {
	_, out := evalSource(t, `Promise.reject("oops");`)
	if !strings.Contains(out, "Uncaught (in promise) oops") {
		t.Errorf("got %q, want unhandled rejection report", out)
	}

	_, out = evalSource(t, `Promise.reject("oops").catch(() => {});`)
	if strings.Contains(out, "Uncaught") {
		t.Errorf("handled rejection still reported: %q", out)
	}
}

func TestAsyncAwait(t *testing.T) {
	expectOutput(t, `
		async function work() {
			const v = await Promise.resolve(20);
			return v + 1;
		}
		work().then((v) => console.log("got", v));
	`, "got 21\n")

	expectOutput(t, `
		async function failing() {
			throw "async boom";
		}
		failing().catch((e) => console.log("caught", e));
	`, "caught async boom\n")

	expectOutput(t, `
		async function f() {
			try {
				await Promise.reject("nope");
			} catch (e) {
				console.log("recovered", e);
			}
		}
		f();
	`, "recovered nope\n")
}

func TestAwaitTimer(t *testing.T) {
	expectOutput(t, `
		const sleep = (ms) => new Promise((resolve) => setTimeout(resolve, ms));
		async function main() {
			console.log("before");
			await sleep(5);
			console.log("after");
		}
		main();
	`, "before\nafter\n")
}

func TestFinallyMethod(t *testing.T) {
	expectOutput(t, `
		Promise.resolve("v")
			.finally(() => console.log("cleanup"))
			.then((v) => console.log(v));
	`, "cleanup\nv\n")
}
