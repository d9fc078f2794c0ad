package lexer

import (
	"testing"

	"github.com/tandemjs/tandem/internal/token"
)

func TestOperatorsAndPunctuation(t *testing.T) {
	input := "= == === ! != !== => ++ -- += ** ... ?"
	want := []token.Type{
		token.ASSIGN, token.EQ, token.SEQ,
		token.BANG, token.NOT_EQ, token.SNOT_EQ,
		token.ARROW, token.INCREMENT, token.DECREMENT,
		token.PLUS_ASSIGN, token.POWER, token.SPREAD, token.QUESTION,
		token.EOF,
	}
	toks := New(input).Tokenize()
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "let const function class extends async await forth"
	want := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.LET, "let"},
		{token.CONST, "const"},
		{token.FUNCTION, "function"},
		{token.CLASS, "class"},
		{token.EXTENDS, "extends"},
		{token.ASYNC, "async"},
		{token.AWAIT, "await"},
		{token.IDENT, "forth"},
	}
	toks := New(input).Tokenize()
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Lexeme != w.lexeme {
			t.Errorf("token %d: got %s %q, want %s %q", i, toks[i].Type, toks[i].Lexeme, w.typ, w.lexeme)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.14", 3.14},
		{"1e3", 1000},
		{"2.5e-2", 0.025},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("%s: got type %s", tt.input, tok.Type)
		}
		if got := tok.Literal.(float64); got != tt.value {
			t.Errorf("%s: got %v, want %v", tt.input, got, tt.value)
		}
	}
}

func TestStringsAndEscapes(t *testing.T) {
	tok := New(`"a\nb"`).NextToken()
	if tok.Type != token.STRING || tok.Literal.(string) != "a\nb" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal)
	}
	tok = New(`'single'`).NextToken()
	if tok.Type != token.STRING || tok.Literal.(string) != "single" {
		t.Fatalf("got %s %q", tok.Type, tok.Literal)
	}
}

func TestTemplateLiteral(t *testing.T) {
	tok := New("`sum: ${a + b}!`").NextToken()
	if tok.Type != token.TEMPLATE {
		t.Fatalf("got type %s", tok.Type)
	}
	parts := tok.Literal.(token.TemplateParts)
	if len(parts.Quasis) != 2 || parts.Quasis[0] != "sum: " || parts.Quasis[1] != "!" {
		t.Errorf("quasis: %#v", parts.Quasis)
	}
	if len(parts.Exprs) != 1 || parts.Exprs[0].Src != "a + b" {
		t.Errorf("exprs: %#v", parts.Exprs)
	}
}

func TestCommentsSkipped(t *testing.T) {
	input := "1 // line comment\n/* block\ncomment */ 2"
	toks := New(input).Tokenize()
	if len(toks) != 3 || toks[0].Type != token.NUMBER || toks[1].Type != token.NUMBER {
		t.Fatalf("got %d tokens: %v %v", len(toks), toks[0].Type, toks[1].Type)
	}
}

func TestPositions(t *testing.T) {
	toks := New("let x\n  y").Tokenize()
	checks := []struct{ i, line, col int }{
		{0, 1, 1},
		{1, 1, 5},
		{2, 2, 3},
	}
	for _, c := range checks {
		if toks[c.i].Line != c.line || toks[c.i].Column != c.col {
			t.Errorf("token %d: at %d:%d, want %d:%d", c.i, toks[c.i].Line, toks[c.i].Column, c.line, c.col)
		}
	}
}

func TestScanErrors(t *testing.T) {
	l := New(`"unterminated`)
	l.Tokenize()
	if len(l.Errors()) == 0 {
		t.Error("unterminated string produced no diagnostic")
	}

	l = New("a @ b")
	l.Tokenize()
	if len(l.Errors()) == 0 {
		t.Error("invalid character produced no diagnostic")
	}

	l = New("`no end")
	l.Tokenize()
	if len(l.Errors()) == 0 {
		t.Error("unterminated template produced no diagnostic")
	}
}
