package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a tree as an indented outline, one node per line. Used by
// the inspection surface; evaluation never touches it.
func Dump(node Node) string {
	var b strings.Builder
	dumpNode(&b, node, 0)
	return b.String()
}

func line(b *strings.Builder, depth int, format string, args ...interface{}) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}

func dumpNode(b *strings.Builder, node Node, depth int) {
	switch n := node.(type) {
	case nil:
		return
	case *Program:
		line(b, depth, "Program")
		for _, s := range n.Statements {
			dumpNode(b, s, depth+1)
		}
	case *ExpressionStatement:
		line(b, depth, "ExpressionStatement")
		dumpNode(b, n.Expression, depth+1)
	case *VarStatement:
		if n.Pattern != nil {
			line(b, depth, "VarStatement %s <pattern>", n.Kind)
			dumpNode(b, n.Pattern, depth+1)
		} else {
			line(b, depth, "VarStatement %s %s", n.Kind, n.Name.Value)
		}
		if n.Value != nil {
			dumpNode(b, n.Value, depth+1)
		}
	case *BlockStatement:
		line(b, depth, "BlockStatement")
		for _, s := range n.Statements {
			dumpNode(b, s, depth+1)
		}
	case *IfStatement:
		line(b, depth, "IfStatement")
		dumpNode(b, n.Condition, depth+1)
		dumpNode(b, n.Consequence, depth+1)
		if n.Alternative != nil {
			dumpNode(b, n.Alternative, depth+1)
		}
	case *WhileStatement:
		line(b, depth, "WhileStatement")
		dumpNode(b, n.Condition, depth+1)
		dumpNode(b, n.Body, depth+1)
	case *ForStatement:
		line(b, depth, "ForStatement")
		if n.Init != nil {
			dumpNode(b, n.Init, depth+1)
		}
		if n.Condition != nil {
			dumpNode(b, n.Condition, depth+1)
		}
		if n.Post != nil {
			dumpNode(b, n.Post, depth+1)
		}
		dumpNode(b, n.Body, depth+1)
	case *ForOfStatement:
		line(b, depth, "ForOfStatement %s", n.Kind)
		dumpNode(b, n.Target, depth+1)
		dumpNode(b, n.Iterable, depth+1)
		dumpNode(b, n.Body, depth+1)
	case *ReturnStatement:
		line(b, depth, "ReturnStatement")
		if n.Value != nil {
			dumpNode(b, n.Value, depth+1)
		}
	case *BreakStatement:
		line(b, depth, "BreakStatement")
	case *ContinueStatement:
		line(b, depth, "ContinueStatement")
	case *ThrowStatement:
		line(b, depth, "ThrowStatement")
		dumpNode(b, n.Value, depth+1)
	case *TryStatement:
		line(b, depth, "TryStatement")
		dumpNode(b, n.Block, depth+1)
		if n.CatchBlock != nil {
			line(b, depth+1, "Catch")
			if n.CatchParam != nil {
				dumpNode(b, n.CatchParam, depth+2)
			}
			dumpNode(b, n.CatchBlock, depth+2)
		}
		if n.Finally != nil {
			line(b, depth+1, "Finally")
			dumpNode(b, n.Finally, depth+2)
		}
	case *FunctionDeclaration:
		line(b, depth, "FunctionDeclaration %s", n.Name.Value)
		dumpNode(b, n.Fn, depth+1)
	case *ClassDeclaration:
		line(b, depth, "ClassDeclaration %s", n.Name.Value)
		if n.SuperClass != nil {
			line(b, depth+1, "Extends")
			dumpNode(b, n.SuperClass, depth+2)
		}
		for _, m := range n.Methods {
			tag := "Method"
			if m.IsStatic {
				tag = "StaticMethod"
			}
			line(b, depth+1, "%s %s", tag, m.Name)
			dumpNode(b, m.Fn, depth+2)
		}
	case *ImportStatement:
		line(b, depth, "ImportStatement %q", n.Path)
	case *ExportStatement:
		line(b, depth, "ExportStatement")
		if n.Decl != nil {
			dumpNode(b, n.Decl, depth+1)
		}
		if n.Default != nil {
			line(b, depth+1, "Default")
			dumpNode(b, n.Default, depth+2)
		}

	case *Identifier:
		line(b, depth, "Identifier %s", n.Value)
	case *NumberLiteral:
		line(b, depth, "NumberLiteral %s", strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *StringLiteral:
		line(b, depth, "StringLiteral %q", n.Value)
	case *TemplateLiteral:
		line(b, depth, "TemplateLiteral")
		for i, quasi := range n.Quasis {
			line(b, depth+1, "Quasi %q", quasi)
			if i < len(n.Exprs) {
				dumpNode(b, n.Exprs[i], depth+1)
			}
		}
	case *BooleanLiteral:
		line(b, depth, "BooleanLiteral %v", n.Value)
	case *NullLiteral:
		line(b, depth, "NullLiteral")
	case *UndefinedLiteral:
		line(b, depth, "UndefinedLiteral")
	case *ArrayLiteral:
		line(b, depth, "ArrayLiteral")
		for _, el := range n.Elements {
			dumpNode(b, el, depth+1)
		}
	case *ObjectLiteral:
		line(b, depth, "ObjectLiteral")
		for _, p := range n.Properties {
			if p.Spread != nil {
				line(b, depth+1, "Spread")
				dumpNode(b, p.Spread, depth+2)
				continue
			}
			line(b, depth+1, "Property %s", p.Key)
			dumpNode(b, p.Value, depth+2)
		}
	case *FunctionLiteral:
		kind := "FunctionLiteral"
		if n.IsArrow {
			kind = "ArrowFunction"
		}
		if n.IsAsync {
			kind = "Async" + kind
		}
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, paramString(p))
		}
		line(b, depth, "%s (%s)", kind, strings.Join(params, ", "))
		dumpNode(b, n.Body, depth+1)
	case *CallExpression:
		line(b, depth, "CallExpression")
		dumpNode(b, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpNode(b, a, depth+1)
		}
	case *NewExpression:
		line(b, depth, "NewExpression")
		dumpNode(b, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpNode(b, a, depth+1)
		}
	case *MemberExpression:
		if n.Computed {
			line(b, depth, "IndexExpression")
			dumpNode(b, n.Object, depth+1)
			dumpNode(b, n.Index, depth+1)
		} else {
			line(b, depth, "MemberExpression .%s", n.Property)
			dumpNode(b, n.Object, depth+1)
		}
	case *AssignmentExpression:
		line(b, depth, "AssignmentExpression %s", n.Op)
		dumpNode(b, n.Target, depth+1)
		dumpNode(b, n.Value, depth+1)
	case *BinaryExpression:
		line(b, depth, "BinaryExpression %s", n.Op)
		dumpNode(b, n.Left, depth+1)
		dumpNode(b, n.Right, depth+1)
	case *LogicalExpression:
		line(b, depth, "LogicalExpression %s", n.Op)
		dumpNode(b, n.Left, depth+1)
		dumpNode(b, n.Right, depth+1)
	case *UnaryExpression:
		line(b, depth, "UnaryExpression %s", n.Op)
		dumpNode(b, n.Operand, depth+1)
	case *UpdateExpression:
		pos := "postfix"
		if n.Prefix {
			pos = "prefix"
		}
		line(b, depth, "UpdateExpression %s %s", n.Op, pos)
		dumpNode(b, n.Target, depth+1)
	case *ConditionalExpression:
		line(b, depth, "ConditionalExpression")
		dumpNode(b, n.Condition, depth+1)
		dumpNode(b, n.Then, depth+1)
		dumpNode(b, n.Else, depth+1)
	case *SpreadElement:
		line(b, depth, "SpreadElement")
		dumpNode(b, n.Arg, depth+1)
	case *AwaitExpression:
		line(b, depth, "AwaitExpression")
		dumpNode(b, n.Arg, depth+1)
	case *ThisExpression:
		line(b, depth, "ThisExpression")
	case *SuperExpression:
		line(b, depth, "SuperExpression")

	case *IdentifierPattern:
		line(b, depth, "IdentifierPattern %s", n.Name)
	case *ObjectPattern:
		line(b, depth, "ObjectPattern")
		for _, p := range n.Props {
			line(b, depth+1, "Property %s", p.Key)
			dumpNode(b, p.Value, depth+2)
			if p.Default != nil {
				line(b, depth+2, "Default")
				dumpNode(b, p.Default, depth+3)
			}
		}
		if n.Rest != nil {
			line(b, depth+1, "Rest %s", n.Rest.Name)
		}
	case *ArrayPattern:
		line(b, depth, "ArrayPattern")
		for _, el := range n.Elements {
			if el.Pat == nil {
				line(b, depth+1, "Hole")
				continue
			}
			dumpNode(b, el.Pat, depth+1)
			if el.Default != nil {
				line(b, depth+2, "Default")
				dumpNode(b, el.Default, depth+3)
			}
		}
		if n.Rest != nil {
			line(b, depth+1, "Rest")
			dumpNode(b, n.Rest, depth+2)
		}

	default:
		line(b, depth, "%T", n)
	}
}

func paramString(p *Param) string {
	name := "<pattern>"
	if ident, ok := p.Pat.(*IdentifierPattern); ok {
		name = ident.Name
	}
	if p.Rest {
		return "..." + name
	}
	if p.Default != nil {
		return name + " = ..."
	}
	return name
}
