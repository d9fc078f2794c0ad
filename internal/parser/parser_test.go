package parser

import (
	"testing"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src).Tokenize())
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Error())
	}
	return program
}

func firstExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	program := parse(t, src)
	if len(program.Statements) == 0 {
		t.Fatalf("no statements for %q", src)
	}
	es, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, not expression", program.Statements[0])
	}
	return es.Expression
}

func TestPrecedence(t *testing.T) {
	expr := firstExpr(t, "1 + 2 * 3;")
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Op != "+" {
		t.Fatalf("got %T", expr)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Op != "*" {
		t.Fatalf("right side is %T, want * expression", bin.Right)
	}

	expr = firstExpr(t, "a || b && c;")
	or, ok := expr.(*ast.LogicalExpression)
	if !ok || or.Op != "||" {
		t.Fatalf("got %T", expr)
	}
	if and, ok := or.Right.(*ast.LogicalExpression); !ok || and.Op != "&&" {
		t.Fatalf("right side is %T, want && expression", or.Right)
	}
}

func TestExponentRightAssociative(t *testing.T) {
	expr := firstExpr(t, "2 ** 3 ** 2;")
	outer, ok := expr.(*ast.BinaryExpression)
	if !ok || outer.Op != "**" {
		t.Fatalf("got %T", expr)
	}
	if _, ok := outer.Right.(*ast.BinaryExpression); !ok {
		t.Fatal("** should group to the right")
	}
}

func TestVarStatements(t *testing.T) {
	program := parse(t, "let a = 1; const b = 2; var c;")
	kinds := []ast.DeclKind{ast.DeclLet, ast.DeclConst, ast.DeclVar}
	names := []string{"a", "b", "c"}
	for i, stmt := range program.Statements {
		vs, ok := stmt.(*ast.VarStatement)
		if !ok {
			t.Fatalf("statement %d is %T", i, stmt)
		}
		if vs.Kind != kinds[i] || vs.Name.Value != names[i] {
			t.Errorf("statement %d: %s %s", i, vs.Kind, vs.Name.Value)
		}
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parse(t, "function add(a, b = 1, ...rest) { return a; }")
	fd, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("got %T", program.Statements[0])
	}
	if fd.Name.Value != "add" {
		t.Errorf("name %s", fd.Name.Value)
	}
	params := fd.Fn.Params
	if len(params) != 3 {
		t.Fatalf("got %d params", len(params))
	}
	if params[1].Default == nil {
		t.Error("second param lost its default")
	}
	if !params[2].Rest {
		t.Error("third param should be rest")
	}
}

func TestArrowFunctions(t *testing.T) {
	expr := firstExpr(t, "x => x * 2;")
	fn, ok := expr.(*ast.FunctionLiteral)
	if !ok || !fn.IsArrow {
		t.Fatalf("got %T", expr)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("got %d params", len(fn.Params))
	}

	expr = firstExpr(t, "async (a, b) => { return a; };")
	fn, ok = expr.(*ast.FunctionLiteral)
	if !ok || !fn.IsArrow || !fn.IsAsync {
		t.Fatalf("got %T, arrow=%v async=%v", expr, fn.IsArrow, fn.IsAsync)
	}
}

func TestClassDeclaration(t *testing.T) {
	program := parse(t, `
		class Dog extends Animal {
			constructor(name) { super(name); }
			bark() { return "woof"; }
			static kind() { return "dog"; }
		}
	`)
	cd, ok := program.Statements[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("got %T", program.Statements[0])
	}
	if cd.Name.Value != "Dog" || cd.SuperClass == nil {
		t.Fatalf("name=%s super=%v", cd.Name.Value, cd.SuperClass)
	}
	if len(cd.Methods) != 3 {
		t.Fatalf("got %d methods", len(cd.Methods))
	}
	if !cd.Methods[2].IsStatic {
		t.Error("kind should be static")
	}
}

func TestDestructuringPatterns(t *testing.T) {
	program := parse(t, "const { a, b: c, d = 1, ...rest } = src;")
	vs := program.Statements[0].(*ast.VarStatement)
	op, ok := vs.Pattern.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("pattern is %T", vs.Pattern)
	}
	if len(op.Props) != 3 || op.Rest == nil {
		t.Fatalf("props=%d rest=%v", len(op.Props), op.Rest)
	}

	program = parse(t, "let [x, , y = 2, ...zs] = arr;")
	vs = program.Statements[0].(*ast.VarStatement)
	apat, ok := vs.Pattern.(*ast.ArrayPattern)
	if !ok {
		t.Fatalf("pattern is %T", vs.Pattern)
	}
	if len(apat.Elements) != 3 || apat.Rest == nil {
		t.Fatalf("elements=%d rest=%v", len(apat.Elements), apat.Rest)
	}
	if apat.Elements[1].Pat != nil {
		t.Error("second element should be a hole")
	}
}

func TestForOf(t *testing.T) {
	program := parse(t, "for (const x of xs) { use(x); }")
	fo, ok := program.Statements[0].(*ast.ForOfStatement)
	if !ok {
		t.Fatalf("got %T", program.Statements[0])
	}
	if fo.Kind != ast.DeclConst {
		t.Errorf("kind %s", fo.Kind)
	}
}

func TestTryCatchFinally(t *testing.T) {
	program := parse(t, "try { f(); } catch (e) { g(e); } finally { h(); }")
	ts, ok := program.Statements[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("got %T", program.Statements[0])
	}
	if ts.CatchBlock == nil || ts.CatchParam == nil || ts.Finally == nil {
		t.Fatal("try statement lost a clause")
	}

	program = parse(t, "try { f(); } catch { g(); }")
	ts = program.Statements[0].(*ast.TryStatement)
	if ts.CatchParam != nil {
		t.Error("bare catch should have no parameter")
	}
}

func TestMemberAndCallChains(t *testing.T) {
	expr := firstExpr(t, `a.b.c(1)[2];`)
	idx, ok := expr.(*ast.MemberExpression)
	if !ok || !idx.Computed {
		t.Fatalf("got %T", expr)
	}
	call, ok := idx.Object.(*ast.CallExpression)
	if !ok {
		t.Fatalf("object is %T", idx.Object)
	}
	if _, ok := call.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("callee is %T", call.Callee)
	}
}

func TestNewExpression(t *testing.T) {
	expr := firstExpr(t, "new Point(1, 2);")
	ne, ok := expr.(*ast.NewExpression)
	if !ok || len(ne.Args) != 2 {
		t.Fatalf("got %T", expr)
	}
}

func TestTemplateLiteral(t *testing.T) {
	expr := firstExpr(t, "`a${x}b${y}c`;")
	tpl, ok := expr.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(tpl.Quasis) != 3 || len(tpl.Exprs) != 2 {
		t.Fatalf("quasis=%d exprs=%d", len(tpl.Quasis), len(tpl.Exprs))
	}
}

func TestImportExportForms(t *testing.T) {
	program := parse(t, `
		import def from "./a.js";
		import * as ns from "./b.js";
		import { x, y as z } from "./c.js";
		export const k = 1;
		export default f;
	`)
	imp := program.Statements[0].(*ast.ImportStatement)
	if imp.Default == nil || imp.Default.Value != "def" {
		t.Errorf("default import: %v", imp.Default)
	}
	imp = program.Statements[1].(*ast.ImportStatement)
	if imp.Namespace == nil || imp.Namespace.Value != "ns" {
		t.Errorf("namespace import: %v", imp.Namespace)
	}
	imp = program.Statements[2].(*ast.ImportStatement)
	if len(imp.Named) != 2 || imp.Named[1].Alias != "z" {
		t.Errorf("named imports: %#v", imp.Named)
	}
	exp := program.Statements[3].(*ast.ExportStatement)
	if exp.Decl == nil {
		t.Error("export const lost its declaration")
	}
	exp = program.Statements[4].(*ast.ExportStatement)
	if exp.Default == nil {
		t.Error("export default lost its expression")
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"let = 5;",
		"1 +;",
		"function (",
		"const { a;",
		"5 = x;",
	}
	for _, src := range bad {
		p := New(lexer.New(src).Tokenize())
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Errorf("%q: expected a parse error", src)
		}
	}
}

func TestRecoveryProducesMultipleErrors(t *testing.T) {
	p := New(lexer.New("let = 1; let = 2;").Tokenize())
	p.ParseProgram()
	if len(p.Errors()) < 2 {
		t.Errorf("got %d errors, want at least 2", len(p.Errors()))
	}
}
