// Package ast defines the syntax tree produced by the parser and consumed
// by both execution engines.
package ast

import (
	"github.com/tandemjs/tandem/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a binding target: an identifier or a destructuring shape.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root node of every AST the parser produces.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}

// ExpressionStatement wraps an expression appearing in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// DeclKind distinguishes var, let and const declarations.
type DeclKind string

const (
	DeclVar   DeclKind = "var"
	DeclLet   DeclKind = "let"
	DeclConst DeclKind = "const"
)

// VarStatement declares one binding: `let x = 1`, `const {a} = obj`.
// Either Name or Pattern is set, never both.
type VarStatement struct {
	Token   token.Token // var/let/const token
	Kind    DeclKind
	Name    *Identifier
	Pattern Pattern
	Value   Expression // nil for bare `let x;`
}

func (vs *VarStatement) statementNode()        {}
func (vs *VarStatement) TokenLiteral() string  { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token { return vs.Token }

// BlockStatement is a `{ ... }` statement list with its own scope.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil when there is no else branch
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }

// ForStatement is the classic three-clause for loop. Init is either a
// VarStatement or an ExpressionStatement; any clause may be nil.
type ForStatement struct {
	Token     token.Token
	Init      Statement
	Condition Expression
	Post      Expression
	Body      Statement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }

// ForOfStatement iterates arrays and strings: `for (const x of xs) ...`.
type ForOfStatement struct {
	Token    token.Token
	Kind     DeclKind
	Target   Pattern
	Iterable Expression
	Body     Statement
}

func (fo *ForOfStatement) statementNode()        {}
func (fo *ForOfStatement) TokenLiteral() string  { return fo.Token.Lexeme }
func (fo *ForOfStatement) GetToken() token.Token { return fo.Token }

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for bare `return`
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }

type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()        {}
func (ts *ThrowStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *ThrowStatement) GetToken() token.Token { return ts.Token }

// TryStatement guards Block with an optional catch clause and an optional
// finally block. At least one of CatchBlock/FinallyBlock is non-nil.
type TryStatement struct {
	Token      token.Token
	Block      *BlockStatement
	CatchParam Pattern // nil for `catch {}`
	CatchBlock *BlockStatement
	Finally    *BlockStatement
}

func (ts *TryStatement) statementNode()        {}
func (ts *TryStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *TryStatement) GetToken() token.Token { return ts.Token }

// FunctionDeclaration hoists a named function into the enclosing scope.
type FunctionDeclaration struct {
	Token token.Token
	Name  *Identifier
	Fn    *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()        {}
func (fd *FunctionDeclaration) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token { return fd.Token }

// MethodDefinition is one method inside a class body.
type MethodDefinition struct {
	Token    token.Token
	Name     string
	IsStatic bool
	Fn       *FunctionLiteral
}

// ClassDeclaration declares a class with an optional `extends` clause.
type ClassDeclaration struct {
	Token      token.Token
	Name       *Identifier
	SuperClass Expression // nil without extends
	Methods    []*MethodDefinition
}

func (cd *ClassDeclaration) statementNode()        {}
func (cd *ClassDeclaration) TokenLiteral() string  { return cd.Token.Lexeme }
func (cd *ClassDeclaration) GetToken() token.Token { return cd.Token }

// ImportSpec is one named import: `{ name }` or `{ name as alias }`.
type ImportSpec struct {
	Name  string
	Alias string
}

// ImportStatement covers `import d from "p"`, `import * as ns from "p"`
// and `import { a, b as c } from "p"`. Path is the raw module specifier.
type ImportStatement struct {
	Token     token.Token
	Default   *Identifier
	Namespace *Identifier
	Named     []ImportSpec
	Path      string
}

func (is *ImportStatement) statementNode()        {}
func (is *ImportStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token { return is.Token }

// ExportStatement covers `export <decl>` and `export default <expr>`.
type ExportStatement struct {
	Token   token.Token
	Decl    Statement  // nil for default exports
	Default Expression // nil for declaration exports
}

func (es *ExportStatement) statementNode()        {}
func (es *ExportStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExportStatement) GetToken() token.Token { return es.Token }
