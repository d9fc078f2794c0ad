package parser

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR, token.LET, token.CONST:
		return p.parseVarStatement()
	case token.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case token.ASYNC:
		if p.peekTokenIs(token.FUNCTION) {
			p.nextToken()
			return p.parseFunctionDeclaration(true)
		}
		return p.parseExpressionStatement()
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK:
		stmt := &ast.BreakStatement{Token: p.curToken}
		p.eatSemicolon()
		return stmt
	case token.CONTINUE:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		p.eatSemicolon()
		return stmt
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.EXPORT:
		return p.parseExportStatement()
	case token.SEMICOLON:
		return &ast.ExpressionStatement{Token: p.curToken}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) eatSemicolon() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	p.eatSemicolon()
	return stmt
}

func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken, Kind: ast.DeclKind(p.curToken.Lexeme)}

	switch p.peekToken.Type {
	case token.IDENT:
		p.nextToken()
		stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.LBRACE, token.LBRACKET:
		p.nextToken()
		pat := p.parseBindingPattern()
		if pat == nil {
			return nil
		}
		stmt.Pattern = pat
	default:
		p.addError(diagnostics.ErrP002, p.peekToken, "expected binding name or pattern after %q", stmt.Token.Lexeme)
		return nil
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	} else if stmt.Kind == ast.DeclConst {
		p.addError(diagnostics.ErrP002, p.peekToken, "missing initializer in const declaration")
		return nil
	} else if stmt.Pattern != nil {
		p.addError(diagnostics.ErrP004, p.peekToken, "missing initializer in destructuring declaration")
		return nil
	}

	p.eatSemicolon()
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(diagnostics.ErrP002, p.curToken, "unexpected end of input, expected '}'")
			return block
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		p.eatSemicolon()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.eatSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.eatSemicolon()
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

// parseForStatement handles both the classic three-clause form and for-of.
func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	// for (let x of xs), for (const [a, b] of pairs)
	if p.peekTokenIs(token.VAR) || p.peekTokenIs(token.LET) || p.peekTokenIs(token.CONST) {
		if p.isForOfAhead() {
			return p.parseForOfStatement(forTok)
		}
	}

	stmt := &ast.ForStatement{Token: forTok}

	// Init clause
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		switch p.curToken.Type {
		case token.VAR, token.LET, token.CONST:
			stmt.Init = p.parseVarStatement() // consumes its semicolon
		default:
			init := &ast.ExpressionStatement{Token: p.curToken}
			init.Expression = p.parseExpression(LOWEST)
			if init.Expression == nil {
				return nil
			}
			stmt.Init = init
			if !p.expectPeek(token.SEMICOLON) {
				return nil
			}
		}
	} else {
		p.nextToken() // the ;
	}

	// Condition clause
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	// Post clause
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		stmt.Post = p.parseExpression(LOWEST)
		if stmt.Post == nil {
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

// isForOfAhead checks whether the parenthesized head is a for-of binding.
func (p *Parser) isForOfAhead() bool {
	depth := 0
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.OF:
			if depth == 0 {
				return true
			}
		case token.SEMICOLON:
			if depth == 0 {
				return false
			}
		case token.LBRACE, token.LBRACKET:
			depth++
		case token.RBRACE, token.RBRACKET:
			depth--
		case token.RPAREN, token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseForOfStatement(forTok token.Token) ast.Statement {
	p.nextToken() // var/let/const
	stmt := &ast.ForOfStatement{Token: forTok, Kind: ast.DeclKind(p.curToken.Lexeme)}

	p.nextToken()
	pat := p.parseBindingPattern()
	if pat == nil {
		return nil
	}
	stmt.Target = pat

	if !p.expectPeek(token.OF) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Block = p.parseBlockStatement()

	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			pat := p.parseBindingPattern()
			if pat == nil {
				return nil
			}
			stmt.CatchParam = pat
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.CatchBlock = p.parseBlockStatement()
	}

	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
	}

	if stmt.CatchBlock == nil && stmt.Finally == nil {
		p.addError(diagnostics.ErrP002, p.curToken, "try statement needs catch or finally")
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration(isAsync bool) ast.Statement {
	fnTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	fn := p.parseFunctionRest(fnTok, name.Value, isAsync)
	if fn == nil {
		return nil
	}
	return &ast.FunctionDeclaration{Token: fnTok, Name: name, Fn: fn}
}

// parseFunctionRest parses "(params) { body }" for a function whose header
// has already been consumed up to the parameter list.
func (p *Parser) parseFunctionRest(tok token.Token, name string, isAsync bool) *ast.FunctionLiteral {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.FunctionLiteral{Token: tok, Name: name, Params: params, Body: body, IsAsync: isAsync}
}

// parseParams parses a parameter list with curToken at '('. It leaves
// curToken at ')'.
func (p *Parser) parseParams() ([]*ast.Param, bool) {
	var params []*ast.Param
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		param := &ast.Param{}
		if p.curTokenIs(token.SPREAD) {
			param.Rest = true
			p.nextToken()
		}
		pat := p.parseBindingPattern()
		if pat == nil {
			return nil, false
		}
		param.Pat = pat
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(LOWEST)
			if param.Default == nil {
				return nil, false
			}
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	stmt := &ast.ClassDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		p.nextToken()
		stmt.SuperClass = p.parseExpression(CALL - 1)
		if stmt.SuperClass == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.EOF) {
			p.addError(diagnostics.ErrP002, p.peekToken, "unexpected end of input in class body")
			return nil
		}
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		method := p.parseMethodDefinition()
		if method == nil {
			return nil
		}
		stmt.Methods = append(stmt.Methods, method)
	}
	p.nextToken() // the }
	return stmt
}

func (p *Parser) parseMethodDefinition() *ast.MethodDefinition {
	p.nextToken()
	method := &ast.MethodDefinition{Token: p.curToken}

	if p.curTokenIs(token.IDENT) && p.curToken.Lexeme == "static" && !p.peekTokenIs(token.LPAREN) {
		method.IsStatic = true
		p.nextToken()
	}
	isAsync := false
	if p.curTokenIs(token.ASYNC) && !p.peekTokenIs(token.LPAREN) {
		isAsync = true
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.addError(diagnostics.ErrP002, p.curToken, "expected method name, got %q", p.curToken.Lexeme)
		return nil
	}
	method.Name = p.curToken.Lexeme
	fn := p.parseFunctionRest(p.curToken, method.Name, isAsync)
	if fn == nil {
		return nil
	}
	method.Fn = fn
	return method
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}

	// import "path" runs the module for its side effects only
	if p.peekTokenIs(token.STRING) {
		p.nextToken()
		stmt.Path = p.curToken.Lexeme
		p.eatSemicolon()
		return stmt
	}

	// Default import
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		stmt.Default = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}

	// Namespace import: * as ns
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		if !p.expectPeek(token.AS) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Namespace = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}

	// Named imports: { a, b as c }
	if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		for !p.peekTokenIs(token.RBRACE) {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			spec := ast.ImportSpec{Name: p.curToken.Lexeme, Alias: p.curToken.Lexeme}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.IDENT) {
					return nil
				}
				spec.Alias = p.curToken.Lexeme
			}
			stmt.Named = append(stmt.Named, spec)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
	}

	if stmt.Default == nil && stmt.Namespace == nil && stmt.Named == nil {
		p.addError(diagnostics.ErrP005, p.curToken, "import needs a default, namespace or named binding")
		return nil
	}

	if !p.expectPeek(token.FROM) {
		return nil
	}
	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path = p.curToken.Lexeme
	p.eatSemicolon()
	return stmt
}

func (p *Parser) parseExportStatement() ast.Statement {
	stmt := &ast.ExportStatement{Token: p.curToken}

	if p.peekTokenIs(token.DEFAULT) {
		p.nextToken()
		p.nextToken()
		stmt.Default = p.parseExpression(LOWEST)
		if stmt.Default == nil {
			return nil
		}
		p.eatSemicolon()
		return stmt
	}

	switch p.peekToken.Type {
	case token.VAR, token.LET, token.CONST, token.FUNCTION, token.CLASS, token.ASYNC:
		p.nextToken()
		stmt.Decl = p.parseStatement()
		if stmt.Decl == nil {
			return nil
		}
		return stmt
	}
	p.addError(diagnostics.ErrP005, p.peekToken, "export must be followed by a declaration or 'default'")
	return nil
}
