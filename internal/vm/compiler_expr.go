package vm

import (
	"strings"

	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/bytecode"
	"github.com/tandemjs/tandem/internal/evaluator"
	"github.com/tandemjs/tandem/internal/token"
)

var binaryOps = map[string]bytecode.Opcode{
	"+":          bytecode.OP_ADD,
	"-":          bytecode.OP_SUB,
	"*":          bytecode.OP_MUL,
	"/":          bytecode.OP_DIV,
	"%":          bytecode.OP_MOD,
	"**":         bytecode.OP_POW,
	"==":         bytecode.OP_EQ,
	"!=":         bytecode.OP_NEQ,
	"===":        bytecode.OP_STRICT_EQ,
	"!==":        bytecode.OP_STRICT_NEQ,
	"<":          bytecode.OP_LT,
	"<=":         bytecode.OP_LTE,
	">":          bytecode.OP_GT,
	">=":         bytecode.OP_GTE,
	"instanceof": bytecode.OP_INSTANCEOF,
}

func (c *compiler) expr(x ast.Expression) error {
	switch n := x.(type) {
	case *ast.NumberLiteral:
		c.emitConstant(&evaluator.Number{Value: n.Value}, n.Token)
	case *ast.StringLiteral:
		c.emitConstant(&evaluator.String{Value: n.Value}, n.Token)
	case *ast.BooleanLiteral:
		if n.Value {
			c.emit(bytecode.OP_TRUE, n.Token)
		} else {
			c.emit(bytecode.OP_FALSE, n.Token)
		}
	case *ast.NullLiteral:
		c.emit(bytecode.OP_NULL, n.Token)
	case *ast.UndefinedLiteral:
		c.emit(bytecode.OP_UNDEFINED, n.Token)
	case *ast.TemplateLiteral:
		return c.templateLiteral(n)
	case *ast.Identifier:
		c.identifierGet(n.Value, n.Token)
	case *ast.ArrayLiteral:
		return c.arrayLiteral(n)
	case *ast.ObjectLiteral:
		return c.objectLiteral(n)
	case *ast.BinaryExpression:
		return c.binary(n)
	case *ast.LogicalExpression:
		return c.logical(n)
	case *ast.UnaryExpression:
		return c.unary(n)
	case *ast.UpdateExpression:
		return c.update(n)
	case *ast.AssignmentExpression:
		return c.assignment(n)
	case *ast.ConditionalExpression:
		return c.conditional(n)
	case *ast.CallExpression:
		return c.call(n)
	case *ast.NewExpression:
		return c.newExpr(n)
	case *ast.MemberExpression:
		return c.member(n)
	case *ast.ThisExpression:
		if !c.allowThis {
			return errUnsupported
		}
		c.emit(bytecode.OP_THIS, n.Token)
	default:
		// Function literals, await, spread and super force the bridge.
		return errUnsupported
	}
	return nil
}

func (c *compiler) identifierGet(name string, tok token.Token) {
	if !c.script {
		if slot := c.resolveLocal(name); slot >= 0 {
			c.emit(bytecode.OP_GET_LOCAL, tok)
			c.emitByte(byte(slot), tok)
			return
		}
	}
	c.nameConstant(bytecode.OP_GET_NAME, name, tok)
}

// identifierSet emits a write that leaves the value on the stack, the
// result of an assignment expression.
func (c *compiler) identifierSet(name string, tok token.Token) error {
	if !c.script {
		if slot := c.resolveLocal(name); slot >= 0 {
			if c.locals[slot].isConst {
				// Bridging keeps the runtime TypeError identical to the
				// tree walk.
				return errUnsupported
			}
			c.emit(bytecode.OP_SET_LOCAL, tok)
			c.emitByte(byte(slot), tok)
			return nil
		}
	}
	c.nameConstant(bytecode.OP_SET_NAME, name, tok)
	return nil
}

func (c *compiler) templateLiteral(n *ast.TemplateLiteral) error {
	c.emitConstant(&evaluator.String{Value: n.Quasis[0]}, n.Token)
	for i, sub := range n.Exprs {
		if err := c.expr(sub); err != nil {
			return err
		}
		c.emit(bytecode.OP_TO_STRING, n.Token)
		c.emit(bytecode.OP_ADD, n.Token)
		if i+1 < len(n.Quasis) && n.Quasis[i+1] != "" {
			c.emitConstant(&evaluator.String{Value: n.Quasis[i+1]}, n.Token)
			c.emit(bytecode.OP_ADD, n.Token)
		}
	}
	return nil
}

func (c *compiler) arrayLiteral(n *ast.ArrayLiteral) error {
	for _, el := range n.Elements {
		if _, ok := el.(*ast.SpreadElement); ok {
			return errUnsupported
		}
		if err := c.expr(el); err != nil {
			return err
		}
	}
	c.emit(bytecode.OP_ARRAY, n.Token)
	c.emitU16(len(n.Elements), n.Token)
	return nil
}

func (c *compiler) objectLiteral(n *ast.ObjectLiteral) error {
	for _, prop := range n.Properties {
		if prop.Spread != nil {
			return errUnsupported
		}
		c.emitConstant(&evaluator.String{Value: prop.Key}, n.Token)
		if err := c.expr(prop.Value); err != nil {
			return err
		}
	}
	c.emit(bytecode.OP_OBJECT, n.Token)
	c.emitU16(len(n.Properties), n.Token)
	return nil
}

func (c *compiler) binary(n *ast.BinaryExpression) error {
	op, ok := binaryOps[n.Op]
	if !ok {
		return errUnsupported
	}
	if err := c.expr(n.Left); err != nil {
		return err
	}
	if err := c.expr(n.Right); err != nil {
		return err
	}
	c.emit(op, n.Token)
	return nil
}

func (c *compiler) logical(n *ast.LogicalExpression) error {
	if err := c.expr(n.Left); err != nil {
		return err
	}
	var jump int
	if n.Op == "&&" {
		jump = c.emitJump(bytecode.OP_JUMP_IF_FALSE_KEEP, n.Token)
	} else {
		jump = c.emitJump(bytecode.OP_JUMP_IF_TRUE_KEEP, n.Token)
	}
	c.emit(bytecode.OP_POP, n.Token)
	if err := c.expr(n.Right); err != nil {
		return err
	}
	c.patchJump(jump)
	return nil
}

func (c *compiler) unary(n *ast.UnaryExpression) error {
	if n.Op == "typeof" {
		if ident, ok := n.Operand.(*ast.Identifier); ok {
			if c.script || c.resolveLocal(ident.Value) < 0 {
				// Unresolvable names yield "undefined" instead of a
				// ReferenceError under typeof.
				c.nameConstant(bytecode.OP_TYPEOF_NAME, ident.Value, n.Token)
				return nil
			}
		}
		if err := c.expr(n.Operand); err != nil {
			return err
		}
		c.emit(bytecode.OP_TYPEOF, n.Token)
		return nil
	}
	if err := c.expr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case "!":
		c.emit(bytecode.OP_NOT, n.Token)
	case "-":
		c.emit(bytecode.OP_NEG, n.Token)
	case "+":
		c.emit(bytecode.OP_TO_NUMBER, n.Token)
	default:
		return errUnsupported
	}
	return nil
}

func (c *compiler) update(n *ast.UpdateExpression) error {
	ident, ok := n.Target.(*ast.Identifier)
	if !ok {
		return errUnsupported
	}
	step := bytecode.OP_INC
	if n.Op == "--" {
		step = bytecode.OP_DEC
	}
	c.identifierGet(ident.Value, n.Token)
	if n.Prefix {
		c.emit(step, n.Token)
		return c.identifierSet(ident.Value, n.Token)
	}
	c.emit(bytecode.OP_DUP, n.Token)
	c.emit(step, n.Token)
	if err := c.identifierSet(ident.Value, n.Token); err != nil {
		return err
	}
	c.emit(bytecode.OP_POP, n.Token)
	return nil
}

func (c *compiler) assignment(n *ast.AssignmentExpression) error {
	compound := n.Op != "="
	var binOp bytecode.Opcode
	if compound {
		op, ok := binaryOps[strings.TrimSuffix(n.Op, "=")]
		if !ok {
			return errUnsupported
		}
		binOp = op
	}

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if compound {
			c.identifierGet(target.Value, n.Token)
			if err := c.expr(n.Value); err != nil {
				return err
			}
			c.emit(binOp, n.Token)
		} else {
			if err := c.expr(n.Value); err != nil {
				return err
			}
		}
		return c.identifierSet(target.Value, n.Token)

	case *ast.MemberExpression:
		if _, isSuper := target.Object.(*ast.SuperExpression); isSuper {
			return errUnsupported
		}
		if err := c.expr(target.Object); err != nil {
			return err
		}
		if target.Computed {
			if err := c.expr(target.Index); err != nil {
				return err
			}
			if compound {
				c.emit(bytecode.OP_DUP2, n.Token)
				c.emit(bytecode.OP_GET_INDEX, n.Token)
				if err := c.expr(n.Value); err != nil {
					return err
				}
				c.emit(binOp, n.Token)
			} else {
				if err := c.expr(n.Value); err != nil {
					return err
				}
			}
			c.emit(bytecode.OP_SET_INDEX, n.Token)
			return nil
		}
		if compound {
			c.emit(bytecode.OP_DUP, n.Token)
			c.nameConstant(bytecode.OP_GET_MEMBER, target.Property, n.Token)
			if err := c.expr(n.Value); err != nil {
				return err
			}
			c.emit(binOp, n.Token)
		} else {
			if err := c.expr(n.Value); err != nil {
				return err
			}
		}
		c.nameConstant(bytecode.OP_SET_MEMBER, target.Property, n.Token)
		return nil

	default:
		return errUnsupported
	}
}

func (c *compiler) conditional(n *ast.ConditionalExpression) error {
	if err := c.expr(n.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, n.Token)
	if err := c.expr(n.Then); err != nil {
		return err
	}
	endJump := c.emitJump(bytecode.OP_JUMP, n.Token)
	c.patchJump(elseJump)
	if err := c.expr(n.Else); err != nil {
		return err
	}
	c.patchJump(endJump)
	return nil
}

func (c *compiler) call(n *ast.CallExpression) error {
	if len(n.Args) > 255 {
		return errUnsupported
	}
	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		if _, isSuper := member.Object.(*ast.SuperExpression); isSuper {
			return errUnsupported
		}
		if err := c.expr(member.Object); err != nil {
			return err
		}
		c.emit(bytecode.OP_DUP, n.Token)
		if member.Computed {
			if err := c.expr(member.Index); err != nil {
				return err
			}
			c.emit(bytecode.OP_GET_INDEX, n.Token)
		} else {
			c.nameConstant(bytecode.OP_GET_MEMBER, member.Property, n.Token)
		}
		if err := c.callArgs(n.Args); err != nil {
			return err
		}
		c.emit(bytecode.OP_CALL_METHOD, n.Token)
		c.emitByte(byte(len(n.Args)), n.Token)
		return nil
	}
	if _, isSuper := n.Callee.(*ast.SuperExpression); isSuper {
		return errUnsupported
	}
	if err := c.expr(n.Callee); err != nil {
		return err
	}
	if err := c.callArgs(n.Args); err != nil {
		return err
	}
	c.emit(bytecode.OP_CALL, n.Token)
	c.emitByte(byte(len(n.Args)), n.Token)
	return nil
}

func (c *compiler) callArgs(args []ast.Expression) error {
	for _, arg := range args {
		if _, ok := arg.(*ast.SpreadElement); ok {
			return errUnsupported
		}
		if err := c.expr(arg); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) newExpr(n *ast.NewExpression) error {
	if len(n.Args) > 255 {
		return errUnsupported
	}
	if err := c.expr(n.Callee); err != nil {
		return err
	}
	if err := c.callArgs(n.Args); err != nil {
		return err
	}
	c.emit(bytecode.OP_NEW, n.Token)
	c.emitByte(byte(len(n.Args)), n.Token)
	return nil
}

func (c *compiler) member(n *ast.MemberExpression) error {
	if _, isSuper := n.Object.(*ast.SuperExpression); isSuper {
		return errUnsupported
	}
	if err := c.expr(n.Object); err != nil {
		return err
	}
	if n.Computed {
		if err := c.expr(n.Index); err != nil {
			return err
		}
		c.emit(bytecode.OP_GET_INDEX, n.Token)
		return nil
	}
	c.nameConstant(bytecode.OP_GET_MEMBER, n.Property, n.Token)
	return nil
}
