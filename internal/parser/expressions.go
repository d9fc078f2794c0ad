package parser

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/lexer"
	"github.com/tandemjs/tandem/internal/token"
)

func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	if p.peekTokenIs(token.ARROW) {
		// x => expr
		param := &ast.Param{Pat: &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme}}
		tok := p.curToken
		p.nextToken() // =>
		return p.parseArrowBody(tok, []*ast.Param{param}, false)
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(float64)
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

// parseTemplateLiteral re-parses each recorded ${...} source with a fresh
// lexer and parser, reporting nested diagnostics at the interpolation site.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	parts, ok := p.curToken.Literal.(token.TemplateParts)
	if !ok {
		p.addError(diagnostics.ErrP001, p.curToken, "malformed template literal")
		return nil
	}
	tl := &ast.TemplateLiteral{Token: p.curToken, Quasis: parts.Quasis}
	for _, e := range parts.Exprs {
		expr := p.parseSubExpression(e)
		if expr == nil {
			return nil
		}
		tl.Exprs = append(tl.Exprs, expr)
	}
	return tl
}

func (p *Parser) parseSubExpression(e token.TemplateExpr) ast.Expression {
	l := lexer.New(e.Src)
	toks := l.Tokenize()
	for _, d := range l.Errors() {
		d.Line, d.Column = e.Line, e.Column
		d.File = p.file
		p.errors = append(p.errors, d)
	}
	sub := New(toks)
	sub.SetFile(p.file)
	expr := sub.parseExpression(LOWEST)
	for _, d := range sub.Errors() {
		d.Line, d.Column = e.Line, e.Column
		p.errors = append(p.errors, d)
	}
	if len(l.Errors()) > 0 || len(sub.Errors()) > 0 {
		return nil
	}
	if expr == nil {
		p.addError(diagnostics.ErrP001, p.curToken, "empty template interpolation")
	}
	return expr
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		if p.curTokenIs(token.SPREAD) {
			spreadTok := p.curToken
			p.nextToken()
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			arr.Elements = append(arr.Elements, &ast.SpreadElement{Token: spreadTok, Arg: arg})
		} else {
			el := p.parseExpression(LOWEST)
			if el == nil {
				return nil
			}
			arr.Elements = append(arr.Elements, el)
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return arr
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		prop := &ast.ObjectProperty{Token: p.curToken}

		if p.curTokenIs(token.SPREAD) {
			p.nextToken()
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			prop.Spread = arg
		} else {
			key, ok := p.parsePropertyKey()
			if !ok {
				return nil
			}
			prop.Key = key
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				prop.Value = p.parseExpression(LOWEST)
				if prop.Value == nil {
					return nil
				}
			} else {
				// {x} shorthand
				prop.Shorthand = true
				prop.Value = &ast.Identifier{Token: p.curToken, Value: key}
			}
		}
		obj.Properties = append(obj.Properties, prop)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parsePropertyKey() (string, bool) {
	switch p.curToken.Type {
	case token.IDENT, token.STRING:
		return p.curToken.Lexeme, true
	case token.NUMBER:
		return p.curToken.Lexeme, true
	default:
		// Keywords are valid property names in JS.
		if p.curToken.Lexeme != "" && p.curToken.Type != token.ILLEGAL {
			return p.curToken.Lexeme, true
		}
		p.addError(diagnostics.ErrP002, p.curToken, "expected property name, got %q", p.curToken.Lexeme)
		return "", false
	}
}

// parseGroupedOrArrow disambiguates `(expr)` from `(params) => body` by
// scanning ahead for `=>` after the matching close paren.
func (p *Parser) parseGroupedOrArrow() ast.Expression {
	if p.isArrowAhead() {
		return p.parseArrowFromParen(false)
	}
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

// isArrowAhead reports whether the '(' at curToken starts arrow parameters.
func (p *Parser) isArrowAhead() bool {
	depth := 1
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Type == token.ARROW
			}
		case token.EOF:
			return false
		}
	}
	return false
}

// parseArrowFromParen parses "(params) => body" with curToken at '('.
func (p *Parser) parseArrowFromParen(isAsync bool) ast.Expression {
	tok := p.curToken
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	return p.parseArrowBody(tok, params, isAsync)
}

// parseArrowBody parses the body after '=>' (curToken). Expression bodies
// are wrapped in an implicit return block.
func (p *Parser) parseArrowBody(tok token.Token, params []*ast.Param, isAsync bool) ast.Expression {
	fn := &ast.FunctionLiteral{Token: tok, Params: params, IsArrow: true, IsAsync: isAsync}
	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		fn.Body = p.parseBlockStatement()
		return fn
	}
	p.nextToken()
	expr := p.parseExpression(ASSIGNMENT - 1)
	if expr == nil {
		return nil
	}
	fn.Body = &ast.BlockStatement{
		Token:      expr.GetToken(),
		Statements: []ast.Statement{&ast.ReturnStatement{Token: expr.GetToken(), Value: expr}},
	}
	return fn
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	fnTok := p.curToken
	name := ""
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = p.curToken.Lexeme
	}
	fn := p.parseFunctionRest(fnTok, name, false)
	if fn == nil {
		return nil
	}
	return fn
}

// parseAsyncExpression handles `async function ...`, `async (a) => ...`
// and `async x => ...` in expression position.
func (p *Parser) parseAsyncExpression() ast.Expression {
	switch p.peekToken.Type {
	case token.FUNCTION:
		p.nextToken()
		fnTok := p.curToken
		name := ""
		if p.peekTokenIs(token.IDENT) {
			p.nextToken()
			name = p.curToken.Lexeme
		}
		fn := p.parseFunctionRest(fnTok, name, true)
		if fn == nil {
			return nil
		}
		return fn
	case token.LPAREN:
		p.nextToken()
		return p.parseArrowFromParen(true)
	case token.IDENT:
		p.nextToken()
		param := &ast.Param{Pat: &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme}}
		tok := p.curToken
		if !p.expectPeek(token.ARROW) {
			return nil
		}
		return p.parseArrowBody(tok, []*ast.Param{param}, true)
	default:
		p.addError(diagnostics.ErrP001, p.peekToken, "unexpected token %q after 'async'", p.peekToken.Lexeme)
		return nil
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	expr := &ast.UnaryExpression{Token: p.curToken, Op: p.curToken.Lexeme}
	p.nextToken()
	expr.Operand = p.parseExpression(UNARY - 1)
	if expr.Operand == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	expr := &ast.UpdateExpression{Token: p.curToken, Op: p.curToken.Lexeme, Prefix: true}
	p.nextToken()
	expr.Target = p.parseExpression(UNARY - 1)
	if expr.Target == nil {
		return nil
	}
	if !isAssignable(expr.Target) {
		p.addError(diagnostics.ErrP003, expr.Token, "invalid %s target", expr.Op)
		return nil
	}
	return expr
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	if !isAssignable(left) {
		p.addError(diagnostics.ErrP003, p.curToken, "invalid %s target", p.curToken.Lexeme)
		return nil
	}
	return &ast.UpdateExpression{Token: p.curToken, Op: p.curToken.Lexeme, Target: left, Prefix: false}
}

func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{Token: p.curToken}
	p.nextToken()
	callee := p.parseNewCallee()
	if callee == nil {
		return nil
	}
	expr.Callee = callee
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseCallArgs()
		if !ok {
			return nil
		}
		expr.Args = args
	}
	return expr
}

// parseNewCallee parses the constructor reference of a new expression:
// member accesses bind to the callee, but '(' starts the argument list
// rather than a call on the callee.
func (p *Parser) parseNewCallee() ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(diagnostics.ErrP001, p.curToken, "unexpected token %q after 'new'", p.curToken.Lexeme)
		return nil
	}
	left := prefix()
	for left != nil && (p.peekTokenIs(token.DOT) || p.peekTokenIs(token.LBRACKET)) {
		p.nextToken()
		if p.curTokenIs(token.DOT) {
			left = p.parseMemberExpression(left)
		} else {
			left = p.parseIndexExpression(left)
		}
	}
	return left
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parseSuperExpression() ast.Expression {
	return &ast.SuperExpression{Token: p.curToken}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	expr := &ast.AwaitExpression{Token: p.curToken}
	p.nextToken()
	expr.Arg = p.parseExpression(UNARY - 1)
	if expr.Arg == nil {
		return nil
	}
	return expr
}

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	}
	return false
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	if !isAssignable(left) {
		p.addError(diagnostics.ErrP003, p.curToken, "invalid assignment target")
		return nil
	}
	expr := &ast.AssignmentExpression{Token: p.curToken, Op: p.curToken.Lexeme, Target: left}
	p.nextToken()
	expr.Value = p.parseExpression(ASSIGNMENT - 1) // right-associative
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseConditionalExpression(cond ast.Expression) ast.Expression {
	expr := &ast.ConditionalExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	expr.Then = p.parseExpression(LOWEST)
	if expr.Then == nil || !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	expr.Else = p.parseExpression(TERNARY - 1)
	if expr.Else == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expr := &ast.LogicalExpression{Token: p.curToken, Op: p.curToken.Lexeme, Left: left}
	prec := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{Token: p.curToken, Op: p.curToken.Lexeme, Left: left}
	prec := precedences[p.curToken.Type]
	if p.curTokenIs(token.POWER) {
		prec-- // right-associative
	}
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Callee: callee}
	args, ok := p.parseCallArgs()
	if !ok {
		return nil
	}
	expr.Args = args
	return expr
}

// parseCallArgs parses an argument list with curToken at '('. It leaves
// curToken at ')'.
func (p *Parser) parseCallArgs() ([]ast.Expression, bool) {
	var args []ast.Expression
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if p.curTokenIs(token.SPREAD) {
			spreadTok := p.curToken
			p.nextToken()
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil, false
			}
			args = append(args, &ast.SpreadElement{Token: spreadTok, Arg: arg})
		} else {
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil, false
			}
			args = append(args, arg)
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Token: p.curToken, Object: object}
	p.nextToken()
	if p.curToken.Lexeme == "" {
		p.addError(diagnostics.ErrP002, p.curToken, "expected property name after '.'")
		return nil
	}
	expr.Property = p.curToken.Lexeme
	return expr
}

func (p *Parser) parseIndexExpression(object ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Token: p.curToken, Object: object, Computed: true}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if expr.Index == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}
