package evaluator

import (
	"io"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/eventloop"
	"github.com/tandemjs/tandem/internal/token"
)

// MaxCallDepth bounds guest recursion before a RangeError is raised.
const MaxCallDepth = 10000

// Evaluator is the tree-walk engine. It also owns the pieces both engines
// share: the global environment, the event loop, the output sink and the
// guest call stack.
type Evaluator struct {
	Out     io.Writer
	Globals *Environment
	Loop    *eventloop.Loop
	File    string

	// CallStack mirrors the guest's active calls for stack traces.
	CallStack []StackFrame

	// LoadModule resolves an import path to a module namespace object.
	// Wired by the modules package to avoid an import cycle.
	LoadModule func(e *Evaluator, path string, fromFile string) (Object, *Exception)

	// CompiledCallHandler runs a VM-compiled function on behalf of
	// tree-walk code. Wired by the vm package; nil means compiled
	// functions fall back to their AST bodies.
	CompiledCallHandler func(e *Evaluator, fn *Function, this Object, args []Object) Object

	// Exports is the namespace object of the module being evaluated.
	// The loader installs it before evaluation begins so circular imports
	// observe the partially-filled namespace.
	Exports *ObjectValue

	// pendingRejections tracks rejected promises with no handler yet.
	pendingRejections []*Promise
}

// New builds an evaluator with a fresh global scope, builtins installed.
func New(out io.Writer, loop *eventloop.Loop) *Evaluator {
	e := &Evaluator{
		Out:     out,
		Globals: NewEnvironment(),
		Loop:    loop,
	}
	installBuiltins(e, e.Globals)
	return e
}

// PushCall records a frame for stack traces; PopCall removes it.
func (e *Evaluator) PushCall(name, file string, line, col int) *Exception {
	if len(e.CallStack) >= MaxCallDepth {
		return e.RaiseAt(NewRangeError("maximum call stack size exceeded"), line, col)
	}
	e.CallStack = append(e.CallStack, StackFrame{FuncName: name, File: file, Line: line, Column: col})
	return nil
}

func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

// tokenless is the position used for host-initiated calls such as
// promise reactions and timer callbacks.
func tokenless() token.Token {
	return token.Token{}
}

// raise attaches position and a stack snapshot to an exception the first
// time it passes through.
func (e *Evaluator) raise(ex *Exception, tok token.Token) *Exception {
	return e.RaiseAt(ex, tok.Line, tok.Column)
}

func (e *Evaluator) RaiseAt(ex *Exception, line, col int) *Exception {
	if ex.Line == 0 {
		ex.Line = line
		ex.Column = col
		ex.File = e.File
		ex.Stack = append([]StackFrame(nil), e.CallStack...)
	}
	return ex
}

// EvalProgram runs a whole unit in the given environment and returns the
// value of its last expression statement.
func (e *Evaluator) EvalProgram(program *ast.Program, env *Environment) Object {
	if program.File != "" {
		e.File = program.File
	}
	var result Object = UNDEFINED
	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		if isSignal(result) {
			if rv, ok := result.(*ReturnValue); ok {
				return rv.Value
			}
			return result
		}
	}
	return result
}

// Eval dispatches a single AST node.
func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch n := node.(type) {

	// Statements
	case *ast.ExpressionStatement:
		return e.Eval(n.Expression, env)
	case *ast.VarStatement:
		return e.evalVarStatement(n, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(n, NewEnclosedEnvironment(env))
	case *ast.IfStatement:
		return e.evalIfStatement(n, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(n, env)
	case *ast.ForStatement:
		return e.evalForStatement(n, env)
	case *ast.ForOfStatement:
		return e.evalForOfStatement(n, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(n, env)
	case *ast.BreakStatement:
		return &BreakSignal{}
	case *ast.ContinueStatement:
		return &ContinueSignal{}
	case *ast.ThrowStatement:
		return e.evalThrowStatement(n, env)
	case *ast.TryStatement:
		return e.evalTryStatement(n, env)
	case *ast.FunctionDeclaration:
		fn := e.makeFunction(n.Fn, env)
		fn.Name = n.Name.Value
		env.Define(n.Name.Value, fn)
		return UNDEFINED
	case *ast.ClassDeclaration:
		return e.evalClassDeclaration(n, env)
	case *ast.ImportStatement:
		return e.evalImportStatement(n, env)
	case *ast.ExportStatement:
		return e.evalExportStatement(n, env)

	// Expressions
	case *ast.NumberLiteral:
		return &Number{Value: n.Value}
	case *ast.StringLiteral:
		return &String{Value: n.Value}
	case *ast.BooleanLiteral:
		return NativeBool(n.Value)
	case *ast.NullLiteral:
		return NULL
	case *ast.UndefinedLiteral:
		return UNDEFINED
	case *ast.TemplateLiteral:
		return e.evalTemplateLiteral(n, env)
	case *ast.Identifier:
		return e.evalIdentifier(n, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(n, env)
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(n, env)
	case *ast.FunctionLiteral:
		return e.makeFunction(n, env)
	case *ast.BinaryExpression:
		return e.evalBinaryExpression(n, env)
	case *ast.LogicalExpression:
		return e.evalLogicalExpression(n, env)
	case *ast.UnaryExpression:
		return e.evalUnaryExpression(n, env)
	case *ast.UpdateExpression:
		return e.evalUpdateExpression(n, env)
	case *ast.AssignmentExpression:
		return e.evalAssignmentExpression(n, env)
	case *ast.ConditionalExpression:
		return e.evalConditionalExpression(n, env)
	case *ast.CallExpression:
		return e.evalCallExpression(n, env)
	case *ast.NewExpression:
		return e.evalNewExpression(n, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(n, env)
	case *ast.ThisExpression:
		return env.This()
	case *ast.SuperExpression:
		return e.raise(NewTypeError("super is only valid inside class methods"), n.Token)
	case *ast.AwaitExpression:
		return e.evalAwaitExpression(n, env)
	case *ast.SpreadElement:
		return e.raise(NewTypeError("unexpected spread element"), n.Token)

	default:
		return UNDEFINED
	}
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = UNDEFINED
	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if isSignal(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) evalVarStatement(stmt *ast.VarStatement, env *Environment) Object {
	var value Object = UNDEFINED
	if stmt.Value != nil {
		value = e.Eval(stmt.Value, env)
		if isSignal(value) {
			return value
		}
	}
	if stmt.Pattern != nil {
		return e.bindPattern(stmt.Pattern, value, env, stmt.Kind == ast.DeclConst)
	}
	if fn, ok := value.(*Function); ok && fn.Name == "" {
		fn.Name = stmt.Name.Value
	}
	if stmt.Kind == ast.DeclConst {
		env.DefineConst(stmt.Name.Value, value)
	} else {
		env.Define(stmt.Name.Value, value)
	}
	return UNDEFINED
}

func (e *Evaluator) evalIfStatement(stmt *ast.IfStatement, env *Environment) Object {
	cond := e.Eval(stmt.Condition, env)
	if isSignal(cond) {
		return cond
	}
	if Truthy(cond) {
		return e.Eval(stmt.Consequence, env)
	}
	if stmt.Alternative != nil {
		return e.Eval(stmt.Alternative, env)
	}
	return UNDEFINED
}

func (e *Evaluator) evalWhileStatement(stmt *ast.WhileStatement, env *Environment) Object {
	for {
		cond := e.Eval(stmt.Condition, env)
		if isSignal(cond) {
			return cond
		}
		if !Truthy(cond) {
			return UNDEFINED
		}
		result := e.Eval(stmt.Body, env)
		switch result.(type) {
		case *BreakSignal:
			return UNDEFINED
		case *ContinueSignal:
			continue
		case *ReturnValue, *Exception:
			return result
		}
	}
}

func (e *Evaluator) evalForStatement(stmt *ast.ForStatement, env *Environment) Object {
	loopEnv := NewEnclosedEnvironment(env)
	if stmt.Init != nil {
		if result := e.Eval(stmt.Init, loopEnv); isSignal(result) {
			return result
		}
	}

	// A let loop variable gets a fresh binding each iteration, so
	// closures made in the body observe that iteration's value.
	var loopVar string
	if vs, ok := stmt.Init.(*ast.VarStatement); ok && vs.Kind == ast.DeclLet && vs.Name != nil {
		loopVar = vs.Name.Value
	}

	for {
		if stmt.Condition != nil {
			cond := e.Eval(stmt.Condition, loopEnv)
			if isSignal(cond) {
				return cond
			}
			if !Truthy(cond) {
				return UNDEFINED
			}
		}
		result := e.Eval(stmt.Body, loopEnv)
		switch result.(type) {
		case *BreakSignal:
			return UNDEFINED
		case *ReturnValue, *Exception:
			return result
		}
		if loopVar != "" {
			next := NewEnclosedEnvironment(env)
			if v, ok := loopEnv.Get(loopVar); ok {
				next.Define(loopVar, v)
			}
			loopEnv = next
		}
		if stmt.Post != nil {
			if post := e.Eval(stmt.Post, loopEnv); isSignal(post) {
				return post
			}
		}
	}
}

func (e *Evaluator) evalForOfStatement(stmt *ast.ForOfStatement, env *Environment) Object {
	iterable := e.Eval(stmt.Iterable, env)
	if isSignal(iterable) {
		return iterable
	}

	var items []Object
	switch it := iterable.(type) {
	case *Array:
		items = append(items, it.Elements...)
	case *String:
		for _, r := range it.Value {
			items = append(items, &String{Value: string(r)})
		}
	default:
		return e.raise(NewTypeError("%s is not iterable", TypeOf(iterable)), stmt.Token)
	}

	for _, item := range items {
		iterEnv := NewEnclosedEnvironment(env)
		if result := e.bindPattern(stmt.Target, item, iterEnv, stmt.Kind == ast.DeclConst); isSignal(result) {
			return result
		}
		result := e.Eval(stmt.Body, iterEnv)
		switch result.(type) {
		case *BreakSignal:
			return UNDEFINED
		case *ReturnValue, *Exception:
			return result
		}
	}
	return UNDEFINED
}

func (e *Evaluator) evalReturnStatement(stmt *ast.ReturnStatement, env *Environment) Object {
	if stmt.Value == nil {
		return &ReturnValue{Value: UNDEFINED}
	}
	value := e.Eval(stmt.Value, env)
	if isSignal(value) {
		return value
	}
	return &ReturnValue{Value: value}
}

func (e *Evaluator) evalThrowStatement(stmt *ast.ThrowStatement, env *Environment) Object {
	value := e.Eval(stmt.Value, env)
	if isSignal(value) {
		return value
	}
	return e.raise(NewThrow(value), stmt.Token)
}

func (e *Evaluator) evalTryStatement(stmt *ast.TryStatement, env *Environment) Object {
	result := e.evalBlockStatement(stmt.Block, NewEnclosedEnvironment(env))

	if ex, ok := result.(*Exception); ok && stmt.CatchBlock != nil {
		catchEnv := NewEnclosedEnvironment(env)
		result = UNDEFINED
		if stmt.CatchParam != nil {
			result = e.bindPattern(stmt.CatchParam, ex.ThrownValue(), catchEnv, false)
		}
		if !isSignal(result) {
			result = e.evalBlockStatement(stmt.CatchBlock, catchEnv)
		}
	}

	if stmt.Finally != nil {
		finResult := e.evalBlockStatement(stmt.Finally, NewEnclosedEnvironment(env))
		// A signal out of finally replaces whatever the try produced.
		if isSignal(finResult) {
			return finResult
		}
	}
	return result
}

func (e *Evaluator) evalClassDeclaration(stmt *ast.ClassDeclaration, env *Environment) Object {
	cls := &Class{
		Name:    stmt.Name.Value,
		Proto:   NewObject(),
		Statics: NewObject(),
	}

	if stmt.SuperClass != nil {
		superVal := e.Eval(stmt.SuperClass, env)
		if isSignal(superVal) {
			return superVal
		}
		super, ok := superVal.(*Class)
		if !ok {
			return e.raise(NewTypeError("class %s extends a non-class value", stmt.Name.Value), stmt.Token)
		}
		cls.Super = super
		cls.Proto.Proto = super.Proto
	}

	for _, m := range stmt.Methods {
		fn := e.makeFunction(m.Fn, env)
		fn.Name = m.Name
		fn.HomeClass = cls
		if m.Name == "constructor" && !m.IsStatic {
			cls.Ctor = fn
			continue
		}
		if m.IsStatic {
			cls.Statics.Set(m.Name, fn)
		} else {
			cls.Proto.Set(m.Name, fn)
		}
	}

	env.Define(stmt.Name.Value, cls)
	return UNDEFINED
}
