package ast

import (
	"github.com/tandemjs/tandem/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

// TemplateLiteral holds n+1 quasis around n interpolated expressions:
// `a${x}b${y}c` → Quasis ["a","b","c"], Exprs [x, y].
type TemplateLiteral struct {
	Token  token.Token
	Quasis []string
	Exprs  []Expression
}

func (tl *TemplateLiteral) expressionNode()       {}
func (tl *TemplateLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TemplateLiteral) GetToken() token.Token { return tl.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()       {}
func (nl *NullLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NullLiteral) GetToken() token.Token { return nl.Token }

type UndefinedLiteral struct {
	Token token.Token
}

func (ul *UndefinedLiteral) expressionNode()       {}
func (ul *UndefinedLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UndefinedLiteral) GetToken() token.Token { return ul.Token }

// ArrayLiteral elements may include SpreadElement entries.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// ObjectProperty is one entry of an object literal. Exactly one of
// Spread / (Key, Value) is used. Shorthand marks `{x}` entries.
type ObjectProperty struct {
	Token     token.Token
	Key       string
	Value     Expression
	Shorthand bool
	Spread    Expression
}

type ObjectLiteral struct {
	Token      token.Token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()       {}
func (ol *ObjectLiteral) TokenLiteral() string  { return ol.Token.Lexeme }
func (ol *ObjectLiteral) GetToken() token.Token { return ol.Token }

// Param is a single function parameter. Rest params collect extras into
// an array; Default applies when the argument is undefined.
type Param struct {
	Pat     Pattern
	Default Expression
	Rest    bool
}

// FunctionLiteral is a function or arrow function expression. Compiled is
// an annotation slot the bytecode compiler fills in when it lowers this
// function; both engines consult it when building the closure value.
type FunctionLiteral struct {
	Token    token.Token
	Name     string
	Params   []*Param
	Body     *BlockStatement
	IsArrow  bool
	IsAsync  bool
	Compiled interface{}
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }

type CallExpression struct {
	Token  token.Token
	Callee Expression
	Args   []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

type NewExpression struct {
	Token  token.Token
	Callee Expression
	Args   []Expression
}

func (ne *NewExpression) expressionNode()       {}
func (ne *NewExpression) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *NewExpression) GetToken() token.Token { return ne.Token }

// MemberExpression is `obj.prop` (Computed false, Property set) or
// `obj[expr]` (Computed true, Index set).
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property string
	Index    Expression
	Computed bool
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }

// AssignmentExpression: Target is an Identifier or MemberExpression.
// Op is "=", "+=", "-=", "*=" or "/=".
type AssignmentExpression struct {
	Token  token.Token
	Op     string
	Target Expression
	Value  Expression
}

func (ae *AssignmentExpression) expressionNode()       {}
func (ae *AssignmentExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignmentExpression) GetToken() token.Token { return ae.Token }

type BinaryExpression struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BinaryExpression) GetToken() token.Token { return be.Token }

// LogicalExpression short-circuits: Op is "&&" or "||".
type LogicalExpression struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (le *LogicalExpression) expressionNode()       {}
func (le *LogicalExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LogicalExpression) GetToken() token.Token { return le.Token }

// UnaryExpression: Op is "-", "+", "!", "typeof" or "delete".
type UnaryExpression struct {
	Token   token.Token
	Op      string
	Operand Expression
}

func (ue *UnaryExpression) expressionNode()       {}
func (ue *UnaryExpression) TokenLiteral() string  { return ue.Token.Lexeme }
func (ue *UnaryExpression) GetToken() token.Token { return ue.Token }

// UpdateExpression: `x++`, `--y`. Target is an Identifier or MemberExpression.
type UpdateExpression struct {
	Token  token.Token
	Op     string // "++" or "--"
	Target Expression
	Prefix bool
}

func (ue *UpdateExpression) expressionNode()       {}
func (ue *UpdateExpression) TokenLiteral() string  { return ue.Token.Lexeme }
func (ue *UpdateExpression) GetToken() token.Token { return ue.Token }

type ConditionalExpression struct {
	Token     token.Token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (ce *ConditionalExpression) expressionNode()       {}
func (ce *ConditionalExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *ConditionalExpression) GetToken() token.Token { return ce.Token }

// SpreadElement appears in call arguments and array literals.
type SpreadElement struct {
	Token token.Token
	Arg   Expression
}

func (se *SpreadElement) expressionNode()       {}
func (se *SpreadElement) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SpreadElement) GetToken() token.Token { return se.Token }

type AwaitExpression struct {
	Token token.Token
	Arg   Expression
}

func (ae *AwaitExpression) expressionNode()       {}
func (ae *AwaitExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AwaitExpression) GetToken() token.Token { return ae.Token }

type ThisExpression struct {
	Token token.Token
}

func (te *ThisExpression) expressionNode()       {}
func (te *ThisExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *ThisExpression) GetToken() token.Token { return te.Token }

// SuperExpression appears as the callee of `super(...)` or as the object
// of `super.method(...)`.
type SuperExpression struct {
	Token token.Token
}

func (se *SuperExpression) expressionNode()       {}
func (se *SuperExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SuperExpression) GetToken() token.Token { return se.Token }

// --- Patterns ---

// IdentifierPattern binds a single name.
type IdentifierPattern struct {
	Token token.Token
	Name  string
}

func (ip *IdentifierPattern) patternNode()          {}
func (ip *IdentifierPattern) TokenLiteral() string  { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token { return ip.Token }

// ObjectPatternProp matches one key: `{age: years = 0}` → Key "age",
// Value binding "years", Default 0.
type ObjectPatternProp struct {
	Token   token.Token
	Key     string
	Value   Pattern
	Default Expression
}

// ObjectPattern destructures objects; Rest collects unmatched own keys.
type ObjectPattern struct {
	Token token.Token
	Props []*ObjectPatternProp
	Rest  *IdentifierPattern
}

func (op *ObjectPattern) patternNode()          {}
func (op *ObjectPattern) TokenLiteral() string  { return op.Token.Lexeme }
func (op *ObjectPattern) GetToken() token.Token { return op.Token }

// ArrayPatternElement is one position of an array pattern; Pat is nil for
// elisions (`[, x]`).
type ArrayPatternElement struct {
	Pat     Pattern
	Default Expression
}

type ArrayPattern struct {
	Token    token.Token
	Elements []*ArrayPatternElement
	Rest     Pattern
}

func (ap *ArrayPattern) patternNode()          {}
func (ap *ArrayPattern) TokenLiteral() string  { return ap.Token.Lexeme }
func (ap *ArrayPattern) GetToken() token.Token { return ap.Token }
