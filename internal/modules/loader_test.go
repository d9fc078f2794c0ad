package modules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/eventloop"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runEntry evaluates an entry file with a loader installed, the way the
// CLI runs a script that imports.
func runEntry(t *testing.T, entry string) (evaluator.Object, string) {
	t.Helper()
	source, err := os.ReadFile(entry)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	loop := eventloop.New()
	e := evaluator.New(&out, loop)
	e.File = entry
	NewLoader().Install(e)

	p := parser.New(lexer.New(string(source)).Tokenize())
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}
	result := e.EvalProgram(program, e.Globals)
	if !evaluator.IsException(result) {
		loop.Run()
	}
	return result, out.String()
}

func TestNamedAndDefaultImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.js", `
		export const twice = (x) => x * 2;
		export function shout(s) { return s.toUpperCase(); }
		export default "fallback";
	`)
	entry := writeFile(t, dir, "main.js", `
		import fb from "./lib.js";
		import { twice, shout as yell } from "./lib.js";
		console.log(twice(21));
		console.log(yell("hey"));
		console.log(fb);
	`)

	result, out := runEntry(t, entry)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "42\nHEY\nfallback\n" {
		t.Errorf("got %q", out)
	}
}

func TestNamespaceImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "math.js", `
		export const pi = 3;
		export const tau = 6;
	`)
	entry := writeFile(t, dir, "main.js", `
		import * as m from "./math.js";
		console.log(m.pi + m.tau);
	`)

	result, out := runEntry(t, entry)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "9\n" {
		t.Errorf("got %q", out)
	}
}

func TestModuleEvaluatesOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "counted.js", `
		console.log("evaluating");
		export const k = 1;
	`)
	writeFile(t, dir, "a.js", `
		import { k } from "./counted.js";
		export const fromA = k;
	`)
	entry := writeFile(t, dir, "main.js", `
		import { fromA } from "./a.js";
		import { k } from "./counted.js";
		console.log(fromA + k);
	`)

	result, out := runEntry(t, entry)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "evaluating\n2\n" {
		t.Errorf("got %q, module should evaluate once", out)
	}
}

func TestRelativeResolutionFromImporter(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, filepath.Join("sub", "inner.js"), `export const v = "inner";`)
	writeFile(t, dir, filepath.Join("sub", "mid.js"), `
		import { v } from "./inner.js";
		export const relayed = v;
	`)
	entry := writeFile(t, dir, "main.js", `
		import { relayed } from "./sub/mid.js";
		console.log(relayed);
	`)

	result, out := runEntry(t, entry)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "inner\n" {
		t.Errorf("got %q", out)
	}
}

func TestCircularImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `
		import { fromB } from "./b.js";
		export const fromA = "A";
		export function describe() { return "A sees " + fromB; }
	`)
	writeFile(t, dir, "b.js", `
		import { fromA } from "./a.js";
		export const fromB = "B";
	`)
	entry := writeFile(t, dir, "main.js", `
		import { describe } from "./a.js";
		console.log(describe());
	`)

	result, out := runEntry(t, entry)
	if ex, ok := result.(*evaluator.Exception); ok {
		t.Fatalf("exception: %s", ex.Trace())
	}
	if out != "A sees B\n" {
		t.Errorf("got %q", out)
	}
}

func TestMissingModule(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.js", `import { x } from "./nope.js";`)

	result, _ := runEntry(t, entry)
	ex, ok := result.(*evaluator.Exception)
	if !ok {
		t.Fatalf("got %v, want exception", result)
	}
	if ex.Kind != KindModuleNotFound {
		t.Errorf("kind %s, want %s", ex.Kind, KindModuleNotFound)
	}
}

func TestUnparsableModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.js", `let = ;`)
	entry := writeFile(t, dir, "main.js", `import { x } from "./broken.js";`)

	result, _ := runEntry(t, entry)
	ex, ok := result.(*evaluator.Exception)
	if !ok {
		t.Fatalf("got %v, want exception", result)
	}
	if ex.Kind != KindModuleParse {
		t.Errorf("kind %s, want %s", ex.Kind, KindModuleParse)
	}
}

func TestCircularImportDetection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", `
		import { fromB } from "./b.js";
		export const fromA = "A";
	`)
	writeFile(t, dir, "b.js", `
		import { fromA } from "./a.js";
		export const fromB = "B";
	`)

	var out bytes.Buffer
	loop := eventloop.New()
	e := evaluator.New(&out, loop)
	loader := NewLoader()
	loader.Install(e)

	if _, ex := loader.load(e, filepath.Join(dir, "a.js"), ""); ex != nil {
		t.Fatalf("load failed: %s", ex.Inspect())
	}
	cycles := loader.Circular()
	if len(cycles) != 1 || cycles[0] != filepath.Join(dir, "a.js") {
		t.Errorf("got cycles %v, want the re-import of a.js", cycles)
	}
}

func TestFailedModuleIsRetriable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.js", `throw "module init failed";`)

	var out bytes.Buffer
	loop := eventloop.New()
	e := evaluator.New(&out, loop)
	loader := NewLoader()
	loader.Install(e)

	badPath := filepath.Join(dir, "bad.js")
	if _, ex := loader.load(e, badPath, ""); ex == nil {
		t.Fatal("first load should fail")
	}
	// The failed entry must not stay cached as an empty namespace.
	writeFile(t, dir, "bad.js", `export const ok = 1;`)
	ns, ex := loader.load(e, badPath, "")
	if ex != nil {
		t.Fatalf("reload failed: %s", ex.Inspect())
	}
	obj := ns.(*evaluator.ObjectValue)
	if _, found := obj.GetOwn("ok"); !found {
		t.Error("reloaded module namespace missing export")
	}
}
