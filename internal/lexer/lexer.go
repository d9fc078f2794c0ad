// Package lexer turns source text into a token stream.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           rune // current char under examination
	line         int
	column       int

	errors []*diagnostics.Diagnostic
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns the diagnostics collected while scanning.
func (l *Lexer) Errors() []*diagnostics.Diagnostic {
	return l.errors
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar() // *
				l.readChar() // /
			}
		default:
			return
		}
	}
}

// NextToken scans and returns the next token. After EOF it keeps
// returning EOF, so the sequence is finite and restartable.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				return l.emit(token.SEQ, "===", line, col)
			}
			return l.emit(token.EQ, "==", line, col)
		}
		if l.peekChar() == '>' {
			l.readChar()
			return l.emit(token.ARROW, "=>", line, col)
		}
		return l.emit(token.ASSIGN, "=", line, col)
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			return l.emit(token.INCREMENT, "++", line, col)
		}
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.PLUS_ASSIGN, "+=", line, col)
		}
		return l.emit(token.PLUS, "+", line, col)
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			return l.emit(token.DECREMENT, "--", line, col)
		}
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.MINUS_ASSIGN, "-=", line, col)
		}
		return l.emit(token.MINUS, "-", line, col)
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			return l.emit(token.POWER, "**", line, col)
		}
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.ASTERISK_ASSIGN, "*=", line, col)
		}
		return l.emit(token.ASTERISK, "*", line, col)
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.SLASH_ASSIGN, "/=", line, col)
		}
		return l.emit(token.SLASH, "/", line, col)
	case '%':
		return l.emit(token.PERCENT, "%", line, col)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				return l.emit(token.SNOT_EQ, "!==", line, col)
			}
			return l.emit(token.NOT_EQ, "!=", line, col)
		}
		return l.emit(token.BANG, "!", line, col)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.LT_EQ, "<=", line, col)
		}
		return l.emit(token.LT, "<", line, col)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.GT_EQ, ">=", line, col)
		}
		return l.emit(token.GT, ">", line, col)
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			return l.emit(token.AND, "&&", line, col)
		}
		return l.illegal(line, col)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			return l.emit(token.OR, "||", line, col)
		}
		return l.illegal(line, col)
	case '?':
		return l.emit(token.QUESTION, "?", line, col)
	case ',':
		return l.emit(token.COMMA, ",", line, col)
	case ';':
		return l.emit(token.SEMICOLON, ";", line, col)
	case ':':
		return l.emit(token.COLON, ":", line, col)
	case '(':
		return l.emit(token.LPAREN, "(", line, col)
	case ')':
		return l.emit(token.RPAREN, ")", line, col)
	case '{':
		return l.emit(token.LBRACE, "{", line, col)
	case '}':
		return l.emit(token.RBRACE, "}", line, col)
	case '[':
		return l.emit(token.LBRACKET, "[", line, col)
	case ']':
		return l.emit(token.RBRACKET, "]", line, col)
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '.' {
				l.readChar()
				return l.emit(token.SPREAD, "...", line, col)
			}
			l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL001, line, col, "unexpected '..'"))
			return l.emit(token.ILLEGAL, "..", line, col)
		}
		return l.emit(token.DOT, ".", line, col)
	case '"', '\'':
		return l.readString(line, col)
	case '`':
		return l.readTemplate(line, col)
	}

	if isIdentStart(l.ch) {
		return l.readIdentifier(line, col)
	}
	if unicode.IsDigit(l.ch) {
		return l.readNumber(line, col)
	}
	return l.illegal(line, col)
}

func (l *Lexer) emit(t token.Type, lexeme string, line, col int) token.Token {
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Line: line, Column: col}
}

func (l *Lexer) illegal(line, col int) token.Token {
	lexeme := string(l.ch)
	l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL001, line, col, "invalid character %q", lexeme))
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Line: line, Column: col}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

func (l *Lexer) readIdentifier(line, col int) token.Token {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if unicode.IsDigit(peek) || peek == '+' || peek == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		}
	}
	lexeme := l.input[start:l.position]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL004, line, col, "malformed number literal %q", lexeme))
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Line: line, Column: col}
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: value, Line: line, Column: col}
}

func (l *Lexer) readString(line, col int) token.Token {
	quote := l.ch
	l.readChar()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL002, line, col, "unterminated string literal"))
			return token.Token{Type: token.ILLEGAL, Lexeme: sb.String(), Line: line, Column: col}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(decodeEscape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	s := sb.String()
	return token.Token{Type: token.STRING, Lexeme: s, Literal: s, Line: line, Column: col}
}

func decodeEscape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case 'b':
		return '\b'
	default:
		return ch
	}
}

// readTemplate scans a whole template literal, recording quasis and the raw
// source of each ${...} interpolation. The parser re-parses the recorded
// expression sources; nested braces, strings and nested templates inside an
// interpolation are tracked so the closing brace is found correctly.
func (l *Lexer) readTemplate(line, col int) token.Token {
	l.readChar() // consume `
	parts := token.TemplateParts{}
	var sb strings.Builder

	for l.ch != '`' {
		if l.ch == 0 {
			l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL003, line, col, "unterminated template literal"))
			return token.Token{Type: token.ILLEGAL, Lexeme: sb.String(), Line: line, Column: col}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(decodeEscape(l.ch))
			l.readChar()
			continue
		}
		if l.ch == '$' && l.peekChar() == '{' {
			parts.Quasis = append(parts.Quasis, sb.String())
			sb.Reset()
			l.readChar() // $
			l.readChar() // {
			exprLine, exprCol := l.line, l.column
			src, ok := l.readInterpolation()
			if !ok {
				l.errors = append(l.errors, diagnostics.NewErrorAt(diagnostics.ErrL003, line, col, "unterminated template interpolation"))
				return token.Token{Type: token.ILLEGAL, Lexeme: src, Line: line, Column: col}
			}
			parts.Exprs = append(parts.Exprs, token.TemplateExpr{Src: src, Line: exprLine, Column: exprCol})
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing backtick
	parts.Quasis = append(parts.Quasis, sb.String())
	return token.Token{Type: token.TEMPLATE, Lexeme: "`...`", Literal: parts, Line: line, Column: col}
}

func (l *Lexer) readInterpolation() (string, bool) {
	var sb strings.Builder
	depth := 1
	for {
		switch l.ch {
		case 0:
			return sb.String(), false
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.readChar()
				return sb.String(), true
			}
		case '"', '\'':
			quote := l.ch
			sb.WriteRune(l.ch)
			l.readChar()
			for l.ch != quote && l.ch != 0 {
				if l.ch == '\\' {
					sb.WriteRune(l.ch)
					l.readChar()
				}
				if l.ch == 0 {
					return sb.String(), false
				}
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch == 0 {
				return sb.String(), false
			}
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

// Tokenize scans the entire input and returns all tokens up to and
// including EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}
