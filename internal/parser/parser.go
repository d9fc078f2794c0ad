// Package parser builds the AST from a token stream in one pass, using
// recursive descent with Pratt-style operator precedence.
package parser

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/token"
)

// Operator precedence, low to high.
const (
	LOWEST = iota
	ASSIGNMENT
	TERNARY
	LOGIC_OR
	LOGIC_AND
	EQUALITY
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	POSTFIX
	CALL
)

var precedences = map[token.Type]int{
	token.ASSIGN:          ASSIGNMENT,
	token.PLUS_ASSIGN:     ASSIGNMENT,
	token.MINUS_ASSIGN:    ASSIGNMENT,
	token.ASTERISK_ASSIGN: ASSIGNMENT,
	token.SLASH_ASSIGN:    ASSIGNMENT,
	token.QUESTION:        TERNARY,
	token.OR:              LOGIC_OR,
	token.AND:             LOGIC_AND,
	token.EQ:              EQUALITY,
	token.NOT_EQ:          EQUALITY,
	token.SEQ:             EQUALITY,
	token.SNOT_EQ:         EQUALITY,
	token.LT:              RELATIONAL,
	token.GT:              RELATIONAL,
	token.LT_EQ:           RELATIONAL,
	token.GT_EQ:           RELATIONAL,
	token.INSTANCEOF:      RELATIONAL,
	token.IN:              RELATIONAL,
	token.PLUS:            ADDITIVE,
	token.MINUS:           ADDITIVE,
	token.ASTERISK:        MULTIPLICATIVE,
	token.SLASH:           MULTIPLICATIVE,
	token.PERCENT:         MULTIPLICATIVE,
	token.POWER:           EXPONENT,
	token.INCREMENT:       POSTFIX,
	token.DECREMENT:       POSTFIX,
	token.LPAREN:          CALL,
	token.DOT:             CALL,
	token.LBRACKET:        CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	file   string
	errors []*diagnostics.Diagnostic

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a parser over a token stream ending in EOF.
func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.curToken = p.tokenAt(0)
	p.peekToken = p.tokenAt(1)

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:     p.parseIdentifierOrArrow,
		token.NUMBER:    p.parseNumberLiteral,
		token.STRING:    p.parseStringLiteral,
		token.TEMPLATE:  p.parseTemplateLiteral,
		token.TRUE:      p.parseBooleanLiteral,
		token.FALSE:     p.parseBooleanLiteral,
		token.NULL:      p.parseNullLiteral,
		token.UNDEFINED: p.parseUndefinedLiteral,
		token.LBRACKET:  p.parseArrayLiteral,
		token.LBRACE:    p.parseObjectLiteral,
		token.LPAREN:    p.parseGroupedOrArrow,
		token.FUNCTION:  p.parseFunctionExpression,
		token.ASYNC:     p.parseAsyncExpression,
		token.BANG:      p.parseUnaryExpression,
		token.MINUS:     p.parseUnaryExpression,
		token.PLUS:      p.parseUnaryExpression,
		token.TYPEOF:    p.parseUnaryExpression,
		token.DELETE:    p.parseUnaryExpression,
		token.INCREMENT: p.parsePrefixUpdate,
		token.DECREMENT: p.parsePrefixUpdate,
		token.NEW:       p.parseNewExpression,
		token.THIS:      p.parseThisExpression,
		token.SUPER:     p.parseSuperExpression,
		token.AWAIT:     p.parseAwaitExpression,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.ASSIGN:          p.parseAssignmentExpression,
		token.PLUS_ASSIGN:     p.parseAssignmentExpression,
		token.MINUS_ASSIGN:    p.parseAssignmentExpression,
		token.ASTERISK_ASSIGN: p.parseAssignmentExpression,
		token.SLASH_ASSIGN:    p.parseAssignmentExpression,
		token.QUESTION:        p.parseConditionalExpression,
		token.OR:              p.parseLogicalExpression,
		token.AND:             p.parseLogicalExpression,
		token.EQ:              p.parseBinaryExpression,
		token.NOT_EQ:          p.parseBinaryExpression,
		token.SEQ:             p.parseBinaryExpression,
		token.SNOT_EQ:         p.parseBinaryExpression,
		token.LT:              p.parseBinaryExpression,
		token.GT:              p.parseBinaryExpression,
		token.LT_EQ:           p.parseBinaryExpression,
		token.GT_EQ:           p.parseBinaryExpression,
		token.INSTANCEOF:      p.parseBinaryExpression,
		token.IN:              p.parseBinaryExpression,
		token.PLUS:            p.parseBinaryExpression,
		token.MINUS:           p.parseBinaryExpression,
		token.ASTERISK:        p.parseBinaryExpression,
		token.SLASH:           p.parseBinaryExpression,
		token.PERCENT:         p.parseBinaryExpression,
		token.POWER:           p.parseBinaryExpression,
		token.INCREMENT:       p.parsePostfixUpdate,
		token.DECREMENT:       p.parsePostfixUpdate,
		token.LPAREN:          p.parseCallExpression,
		token.DOT:             p.parseMemberExpression,
		token.LBRACKET:        p.parseIndexExpression,
	}

	return p
}

// SetFile records the source path used in diagnostics.
func (p *Parser) SetFile(file string) { p.file = file }

// Errors returns the diagnostics collected while parsing.
func (p *Parser) Errors() []*diagnostics.Diagnostic { return p.errors }

func (p *Parser) tokenAt(i int) token.Token {
	if i >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1]
		}
		return token.Token{Type: token.EOF}
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.peekToken
	p.peekToken = p.tokenAt(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(diagnostics.ErrP002, p.peekToken, "expected %q, got %q", string(t), p.peekToken.Lexeme)
	return false
}

func (p *Parser) addError(code diagnostics.Code, tok token.Token, format string, args ...interface{}) {
	d := diagnostics.NewError(code, tok, format, args...)
	d.File = p.file
	p.errors = append(p.errors, d)
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the whole unit, recovering at statement boundaries
// so one bad statement does not hide later diagnostics.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.file}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	return program
}

// synchronize skips to the next likely statement boundary after an error.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case token.VAR, token.LET, token.CONST, token.FUNCTION, token.CLASS,
			token.IF, token.WHILE, token.FOR, token.RETURN, token.TRY,
			token.THROW, token.IMPORT, token.EXPORT:
			return
		}
		p.nextToken()
	}
}

// parseExpression is the Pratt core: a prefix parse followed by infix
// parses while the next operator binds tighter than minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(diagnostics.ErrP001, p.curToken, "unexpected token %q", p.curToken.Lexeme)
		return nil
	}
	left := prefix()

	for left != nil && !p.peekTokenIs(token.SEMICOLON) && minPrec < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}
