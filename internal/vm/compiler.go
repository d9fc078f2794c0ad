// Package vm holds the bytecode backend: a compiler that lowers
// supported functions to chunks, and the stack machine that executes
// them. Functions the compiler refuses are tagged bridged and run whole
// on the tree-walk engine; the decision is made once, at compile time.
package vm

import (
	"errors"
	"fmt"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/bytecode"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/token"
)

// errUnsupported aborts compilation of the current function; the
// function falls back to the tree walk in its entirety.
var errUnsupported = errors.New("construct not supported by the bytecode backend")

// Encoding limits. Local slots are one-byte operands and jump targets
// are two-byte operands; bodies that exceed either bridge to the tree
// walk instead of emitting truncated operands.
const (
	maxLocalSlots = 256
	maxChunkSize  = 0xFFFF
)

type local struct {
	name    string
	depth   int
	isConst bool
}

type loopContext struct {
	start         int   // jump target for continue in while loops
	breakPatches  []int // operand offsets patched to the loop exit
	contPatches   []int // operand offsets patched to the post clause
	patchContinue bool  // for loops patch continue, while loops jump to start
	localCount    int   // function-mode locals live at loop entry
	scopeCount    int   // script-mode scopes open at loop entry
}

// compiler lowers one function body (or the top-level script) to a
// chunk. Function mode places declarations in stack slots; script mode
// routes them through the environment chain so both engines share the
// same global bindings.
type compiler struct {
	chunk      *bytecode.Chunk
	script     bool
	allowThis  bool
	locals     []local
	scopeDepth int
	scopeCount int
	maxLocals  int
	loops      []*loopContext
}

// Annotate walks a program and attaches compiled bodies to every
// function literal the backend supports. Literals it refuses keep a nil
// annotation and execute on the tree walk.
func Annotate(program *ast.Program) {
	file := program.File
	w := &walker{visit: func(lit *ast.FunctionLiteral) {
		if compiled, err := compileFunction(lit, file); err == nil {
			lit.Compiled = compiled
		}
	}}
	for _, stmt := range program.Statements {
		w.stmt(stmt)
	}
}

// CompiledFunctions lists the compiled bodies attached to a program, in
// source order. Annotate must have run first.
func CompiledFunctions(program *ast.Program) []*bytecode.Function {
	var out []*bytecode.Function
	w := &walker{visit: func(lit *ast.FunctionLiteral) {
		if code, ok := lit.Compiled.(*bytecode.Function); ok {
			out = append(out, code)
		}
	}}
	for _, stmt := range program.Statements {
		w.stmt(stmt)
	}
	return out
}

// CompileScript lowers top-level statements in script mode. An error
// means the whole unit should be tree-walked instead.
func CompileScript(program *ast.Program) (*bytecode.Function, error) {
	c := &compiler{
		chunk:  bytecode.NewChunk(program.File),
		script: true,
	}
	for _, stmt := range program.Statements {
		if err := c.stmt(stmt); err != nil {
			return nil, err
		}
	}
	if len(c.chunk.Code) > maxChunkSize {
		return nil, errUnsupported
	}
	return &bytecode.Function{Name: "<script>", Chunk: c.chunk}, nil
}

// compileFunction lowers one function literal. Parameters must be plain
// identifiers; defaults, rest, destructuring, nested functions, await,
// try and class syntax all disqualify the body.
func compileFunction(lit *ast.FunctionLiteral, file string) (*bytecode.Function, error) {
	if lit.IsAsync {
		return nil, errUnsupported
	}
	c := &compiler{
		chunk:     bytecode.NewChunk(file),
		allowThis: !lit.IsArrow,
	}
	for _, p := range lit.Params {
		if p.Rest || p.Default != nil {
			return nil, errUnsupported
		}
		ident, ok := p.Pat.(*ast.IdentifierPattern)
		if !ok {
			return nil, errUnsupported
		}
		c.locals = append(c.locals, local{name: ident.Name, depth: 0})
	}
	if len(c.locals) > maxLocalSlots {
		return nil, errUnsupported
	}
	c.maxLocals = len(c.locals)

	for _, stmt := range lit.Body.Statements {
		if err := c.stmt(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(bytecode.OP_RETURN_UNDEFINED, lit.Token)
	if len(c.chunk.Code) > maxChunkSize {
		return nil, errUnsupported
	}

	name := lit.Name
	if name == "" {
		name = "<anonymous>"
	}
	return &bytecode.Function{
		Name:      name,
		NumParams: len(lit.Params),
		NumLocals: c.maxLocals,
		Chunk:     c.chunk,
	}, nil
}

// walker visits every function literal reachable from a node, even
// inside functions that themselves stay on the tree walk.
type walker struct {
	visit func(*ast.FunctionLiteral)
}

func (w *walker) fn(lit *ast.FunctionLiteral) {
	w.visit(lit)
	for _, stmt := range lit.Body.Statements {
		w.stmt(stmt)
	}
}

func (w *walker) stmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		w.expr(n.Expression)
	case *ast.VarStatement:
		w.expr(n.Value)
	case *ast.BlockStatement:
		for _, inner := range n.Statements {
			w.stmt(inner)
		}
	case *ast.IfStatement:
		w.expr(n.Condition)
		w.stmt(n.Consequence)
		if n.Alternative != nil {
			w.stmt(n.Alternative)
		}
	case *ast.WhileStatement:
		w.expr(n.Condition)
		w.stmt(n.Body)
	case *ast.ForStatement:
		if n.Init != nil {
			w.stmt(n.Init)
		}
		w.expr(n.Condition)
		w.expr(n.Post)
		w.stmt(n.Body)
	case *ast.ForOfStatement:
		w.expr(n.Iterable)
		w.stmt(n.Body)
	case *ast.ReturnStatement:
		w.expr(n.Value)
	case *ast.ThrowStatement:
		w.expr(n.Value)
	case *ast.TryStatement:
		w.stmt(n.Block)
		if n.CatchBlock != nil {
			w.stmt(n.CatchBlock)
		}
		if n.Finally != nil {
			w.stmt(n.Finally)
		}
	case *ast.FunctionDeclaration:
		w.fn(n.Fn)
	case *ast.ClassDeclaration:
		w.expr(n.SuperClass)
		for _, m := range n.Methods {
			w.fn(m.Fn)
		}
	case *ast.ExportStatement:
		if n.Decl != nil {
			w.stmt(n.Decl)
		}
		w.expr(n.Default)
	}
}

func (w *walker) expr(x ast.Expression) {
	switch n := x.(type) {
	case nil:
		return
	case *ast.FunctionLiteral:
		w.fn(n)
	case *ast.TemplateLiteral:
		for _, sub := range n.Exprs {
			w.expr(sub)
		}
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			w.expr(el)
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Properties {
			if p.Spread != nil {
				w.expr(p.Spread)
				continue
			}
			w.expr(p.Value)
		}
	case *ast.BinaryExpression:
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.LogicalExpression:
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.UnaryExpression:
		w.expr(n.Operand)
	case *ast.UpdateExpression:
		w.expr(n.Target)
	case *ast.AssignmentExpression:
		w.expr(n.Target)
		w.expr(n.Value)
	case *ast.ConditionalExpression:
		w.expr(n.Condition)
		w.expr(n.Then)
		w.expr(n.Else)
	case *ast.CallExpression:
		w.expr(n.Callee)
		for _, a := range n.Args {
			w.expr(a)
		}
	case *ast.NewExpression:
		w.expr(n.Callee)
		for _, a := range n.Args {
			w.expr(a)
		}
	case *ast.MemberExpression:
		w.expr(n.Object)
		w.expr(n.Index)
	case *ast.AwaitExpression:
		w.expr(n.Arg)
	case *ast.SpreadElement:
		w.expr(n.Arg)
	}
}

// Emit helpers.

func (c *compiler) emit(op bytecode.Opcode, tok token.Token) {
	c.chunk.WriteOp(op, tok.Line, tok.Column)
}

func (c *compiler) emitByte(b byte, tok token.Token) {
	c.chunk.WriteByte(b, tok.Line, tok.Column)
}

func (c *compiler) emitU16(v int, tok token.Token) {
	c.chunk.WriteU16(uint16(v), tok.Line, tok.Column)
}

func (c *compiler) emitConstant(obj evaluator.Object, tok token.Token) {
	idx := c.chunk.AddConstant(obj)
	c.emit(bytecode.OP_CONSTANT, tok)
	c.emitU16(idx, tok)
}

func (c *compiler) nameConstant(op bytecode.Opcode, name string, tok token.Token) {
	idx := c.chunk.AddConstant(&evaluator.String{Value: name})
	c.emit(op, tok)
	c.emitU16(idx, tok)
}

// emitJump writes a jump with a placeholder target and returns the
// operand offset for patching.
func (c *compiler) emitJump(op bytecode.Opcode, tok token.Token) int {
	c.emit(op, tok)
	offset := len(c.chunk.Code)
	c.emitU16(0xffff, tok)
	return offset
}

func (c *compiler) patchJump(operand int) {
	c.chunk.PatchU16(operand, uint16(len(c.chunk.Code)))
}

func (c *compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *compiler) beginScope() {
	c.scopeDepth++
}

func (c *compiler) endScope(tok token.Token) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emit(bytecode.OP_POP, tok)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// Statements.

func (c *compiler) stmt(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if err := c.expr(n.Expression); err != nil {
			return err
		}
		if c.script {
			c.emit(bytecode.OP_STORE_RESULT, n.Token)
		} else {
			c.emit(bytecode.OP_POP, n.Token)
		}
		return nil

	case *ast.VarStatement:
		return c.varStmt(n)

	case *ast.BlockStatement:
		return c.block(n)

	case *ast.IfStatement:
		if err := c.expr(n.Condition); err != nil {
			return err
		}
		elseJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, n.Token)
		if err := c.branchStmt(n.Consequence); err != nil {
			return err
		}
		if n.Alternative != nil {
			endJump := c.emitJump(bytecode.OP_JUMP, n.Token)
			c.patchJump(elseJump)
			if err := c.branchStmt(n.Alternative); err != nil {
				return err
			}
			c.patchJump(endJump)
		} else {
			c.patchJump(elseJump)
		}
		return nil

	case *ast.WhileStatement:
		return c.whileStmt(n)

	case *ast.ForStatement:
		return c.forStmt(n)

	case *ast.ReturnStatement:
		if n.Value != nil {
			if err := c.expr(n.Value); err != nil {
				return err
			}
			c.emit(bytecode.OP_RETURN, n.Token)
		} else {
			c.emit(bytecode.OP_RETURN_UNDEFINED, n.Token)
		}
		return nil

	case *ast.BreakStatement:
		return c.breakStmt(n.Token)

	case *ast.ContinueStatement:
		return c.continueStmt(n.Token)

	case *ast.ThrowStatement:
		if err := c.expr(n.Value); err != nil {
			return err
		}
		c.emit(bytecode.OP_THROW, n.Token)
		return nil

	default:
		// for-of, try, functions, classes and modules stay on the tree
		// walk.
		return errUnsupported
	}
}

// branchStmt compiles a statement in a position that may not execute.
// In function mode a bare declaration there would claim a stack slot
// without a guaranteed runtime push, desynchronizing every later slot,
// so such bodies are refused. Braced blocks are fine: endScope keeps
// the stack balanced on every path.
func (c *compiler) branchStmt(s ast.Statement) error {
	if !c.script {
		if _, ok := s.(*ast.VarStatement); ok {
			return errUnsupported
		}
	}
	return c.stmt(s)
}

func (c *compiler) varStmt(n *ast.VarStatement) error {
	if n.Pattern != nil {
		return errUnsupported
	}
	if n.Value != nil {
		if err := c.expr(n.Value); err != nil {
			return err
		}
	} else {
		c.emit(bytecode.OP_UNDEFINED, n.Token)
	}
	if c.script {
		op := bytecode.OP_DECLARE_NAME
		if n.Kind == ast.DeclConst {
			op = bytecode.OP_DECLARE_CONST
		}
		c.nameConstant(op, n.Name.Value, n.Token)
		return nil
	}
	// The initializer value becomes the local's stack slot.
	c.locals = append(c.locals, local{
		name:    n.Name.Value,
		depth:   c.scopeDepth,
		isConst: n.Kind == ast.DeclConst,
	})
	if len(c.locals) > maxLocalSlots {
		return errUnsupported
	}
	if len(c.locals) > c.maxLocals {
		c.maxLocals = len(c.locals)
	}
	return nil
}

func (c *compiler) block(n *ast.BlockStatement) error {
	if c.script {
		c.emit(bytecode.OP_PUSH_SCOPE, n.Token)
		c.scopeCount++
		for _, stmt := range n.Statements {
			if err := c.stmt(stmt); err != nil {
				return err
			}
		}
		c.emit(bytecode.OP_POP_SCOPE, n.Token)
		c.scopeCount--
		return nil
	}
	c.beginScope()
	for _, stmt := range n.Statements {
		if err := c.stmt(stmt); err != nil {
			return err
		}
	}
	c.endScope(n.Token)
	return nil
}

func (c *compiler) whileStmt(n *ast.WhileStatement) error {
	loop := &loopContext{
		start:      len(c.chunk.Code),
		localCount: len(c.locals),
		scopeCount: c.scopeCount,
	}
	c.loops = append(c.loops, loop)
	defer func() { c.loops = c.loops[:len(c.loops)-1] }()

	if err := c.expr(n.Condition); err != nil {
		return err
	}
	exitJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, n.Token)
	if err := c.branchStmt(n.Body); err != nil {
		return err
	}
	c.emit(bytecode.OP_JUMP, n.Token)
	c.emitU16(loop.start, n.Token)
	c.patchJump(exitJump)
	for _, patch := range loop.breakPatches {
		c.patchJump(patch)
	}
	return nil
}

func (c *compiler) forStmt(n *ast.ForStatement) error {
	if c.script {
		c.emit(bytecode.OP_PUSH_SCOPE, n.Token)
		c.scopeCount++
	} else {
		c.beginScope()
	}
	if n.Init != nil {
		if err := c.stmt(n.Init); err != nil {
			return err
		}
		// The init result register write is harmless in script mode; the
		// final expression statement overwrites it.
	}

	loop := &loopContext{
		start:         len(c.chunk.Code),
		patchContinue: true,
		localCount:    len(c.locals),
		scopeCount:    c.scopeCount,
	}
	c.loops = append(c.loops, loop)

	exitJump := -1
	if n.Condition != nil {
		if err := c.expr(n.Condition); err != nil {
			c.loops = c.loops[:len(c.loops)-1]
			return err
		}
		exitJump = c.emitJump(bytecode.OP_JUMP_IF_FALSE, n.Token)
	}
	if err := c.branchStmt(n.Body); err != nil {
		c.loops = c.loops[:len(c.loops)-1]
		return err
	}
	for _, patch := range loop.contPatches {
		c.patchJump(patch)
	}
	if n.Post != nil {
		if err := c.expr(n.Post); err != nil {
			c.loops = c.loops[:len(c.loops)-1]
			return err
		}
		c.emit(bytecode.OP_POP, n.Token)
	}
	c.emit(bytecode.OP_JUMP, n.Token)
	c.emitU16(loop.start, n.Token)
	if exitJump >= 0 {
		c.patchJump(exitJump)
	}
	for _, patch := range loop.breakPatches {
		c.patchJump(patch)
	}
	c.loops = c.loops[:len(c.loops)-1]

	if c.script {
		c.emit(bytecode.OP_POP_SCOPE, n.Token)
		c.scopeCount--
	} else {
		c.endScope(n.Token)
	}
	return nil
}

// unwindForJump pops locals or scopes entered since the loop began, so
// break and continue leave the frame consistent.
func (c *compiler) unwindForJump(loop *loopContext, tok token.Token) {
	if c.script {
		for i := c.scopeCount; i > loop.scopeCount; i-- {
			c.emit(bytecode.OP_POP_SCOPE, tok)
		}
		return
	}
	for i := len(c.locals); i > loop.localCount; i-- {
		c.emit(bytecode.OP_POP, tok)
	}
}

func (c *compiler) breakStmt(tok token.Token) error {
	if len(c.loops) == 0 {
		return fmt.Errorf("break outside loop: %w", errUnsupported)
	}
	loop := c.loops[len(c.loops)-1]
	c.unwindForJump(loop, tok)
	loop.breakPatches = append(loop.breakPatches, c.emitJump(bytecode.OP_JUMP, tok))
	return nil
}

func (c *compiler) continueStmt(tok token.Token) error {
	if len(c.loops) == 0 {
		return fmt.Errorf("continue outside loop: %w", errUnsupported)
	}
	loop := c.loops[len(c.loops)-1]
	c.unwindForJump(loop, tok)
	if loop.patchContinue {
		loop.contPatches = append(loop.contPatches, c.emitJump(bytecode.OP_JUMP, tok))
	} else {
		c.emit(bytecode.OP_JUMP, tok)
		c.emitU16(loop.start, tok)
	}
	return nil
}
