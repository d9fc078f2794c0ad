package parser

import (
	"github.com/tandemjs/tandem/internal/ast"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/token"
)

// parseBindingPattern parses a binding target with curToken at its first
// token: an identifier, an object pattern or an array pattern.
func (p *Parser) parseBindingPattern() ast.Pattern {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme}
	case token.LBRACE:
		return p.parseObjectPattern()
	case token.LBRACKET:
		return p.parseArrayPattern()
	default:
		p.addError(diagnostics.ErrP004, p.curToken, "expected binding pattern, got %q", p.curToken.Lexeme)
		return nil
	}
}

// parseObjectPattern parses `{name, age: years = 0, ...rest}`.
func (p *Parser) parseObjectPattern() ast.Pattern {
	pat := &ast.ObjectPattern{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		if p.curTokenIs(token.SPREAD) {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			pat.Rest = &ast.IdentifierPattern{Token: p.curToken, Name: p.curToken.Lexeme}
			if !p.peekTokenIs(token.RBRACE) {
				p.addError(diagnostics.ErrP004, p.peekToken, "rest element must be last in object pattern")
				return nil
			}
			break
		}

		prop := &ast.ObjectPatternProp{Token: p.curToken}
		key, ok := p.parsePropertyKey()
		if !ok {
			return nil
		}
		prop.Key = key

		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			value := p.parseBindingPattern()
			if value == nil {
				return nil
			}
			prop.Value = value
		} else {
			prop.Value = &ast.IdentifierPattern{Token: p.curToken, Name: key}
		}

		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			prop.Default = p.parseExpression(LOWEST)
			if prop.Default == nil {
				return nil
			}
		}

		pat.Props = append(pat.Props, prop)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return pat
}

// parseArrayPattern parses `[a, , b = 1, ...rest]`.
func (p *Parser) parseArrayPattern() ast.Pattern {
	pat := &ast.ArrayPattern{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACKET) {
		if p.peekTokenIs(token.COMMA) {
			// Elision: hole keeps its position.
			pat.Elements = append(pat.Elements, &ast.ArrayPatternElement{})
			p.nextToken()
			continue
		}
		p.nextToken()

		if p.curTokenIs(token.SPREAD) {
			p.nextToken()
			rest := p.parseBindingPattern()
			if rest == nil {
				return nil
			}
			pat.Rest = rest
			if !p.peekTokenIs(token.RBRACKET) {
				p.addError(diagnostics.ErrP004, p.peekToken, "rest element must be last in array pattern")
				return nil
			}
			break
		}

		el := &ast.ArrayPatternElement{}
		sub := p.parseBindingPattern()
		if sub == nil {
			return nil
		}
		el.Pat = sub

		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			el.Default = p.parseExpression(LOWEST)
			if el.Default == nil {
				return nil
			}
		}
		pat.Elements = append(pat.Elements, el)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return pat
}
