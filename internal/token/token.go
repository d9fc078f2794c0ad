// Package token defines the lexical tokens of the JavaScript subset
// understood by the engine, together with their source positions.
package token

type Type string

// Token is a single lexical token. Literal holds the decoded value for
// number and string tokens (float64 / string); Lexeme is the raw source text.
type Token struct {
	Type    Type
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Identifiers and literals
	IDENT    Type = "IDENT"
	NUMBER   Type = "NUMBER"
	STRING   Type = "STRING"
	TEMPLATE Type = "TEMPLATE" // template literal; Literal holds its parts

	// Operators
	ASSIGN          Type = "="
	PLUS            Type = "+"
	MINUS           Type = "-"
	ASTERISK        Type = "*"
	SLASH           Type = "/"
	PERCENT         Type = "%"
	POWER           Type = "**"
	PLUS_ASSIGN     Type = "+="
	MINUS_ASSIGN    Type = "-="
	ASTERISK_ASSIGN Type = "*="
	SLASH_ASSIGN    Type = "/="
	INCREMENT       Type = "++"
	DECREMENT       Type = "--"

	BANG   Type = "!"
	EQ     Type = "=="
	NOT_EQ Type = "!="
	SEQ    Type = "==="
	SNOT_EQ Type = "!=="
	LT     Type = "<"
	GT     Type = ">"
	LT_EQ  Type = "<="
	GT_EQ  Type = ">="

	AND      Type = "&&"
	OR       Type = "||"
	ARROW    Type = "=>"
	QUESTION Type = "?"
	SPREAD   Type = "..."

	// Delimiters
	COMMA     Type = ","
	SEMICOLON Type = ";"
	COLON     Type = ":"
	DOT       Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACE    Type = "{"
	RBRACE    Type = "}"
	LBRACKET  Type = "["
	RBRACKET  Type = "]"

	// Keywords
	VAR        Type = "VAR"
	LET        Type = "LET"
	CONST      Type = "CONST"
	FUNCTION   Type = "FUNCTION"
	RETURN     Type = "RETURN"
	IF         Type = "IF"
	ELSE       Type = "ELSE"
	WHILE      Type = "WHILE"
	FOR        Type = "FOR"
	OF         Type = "OF"
	IN         Type = "IN"
	BREAK      Type = "BREAK"
	CONTINUE   Type = "CONTINUE"
	TRUE       Type = "TRUE"
	FALSE      Type = "FALSE"
	NULL       Type = "NULL"
	UNDEFINED  Type = "UNDEFINED"
	NEW        Type = "NEW"
	CLASS      Type = "CLASS"
	EXTENDS    Type = "EXTENDS"
	SUPER      Type = "SUPER"
	THIS       Type = "THIS"
	THROW      Type = "THROW"
	TRY        Type = "TRY"
	CATCH      Type = "CATCH"
	FINALLY    Type = "FINALLY"
	TYPEOF     Type = "TYPEOF"
	INSTANCEOF Type = "INSTANCEOF"
	DELETE     Type = "DELETE"
	ASYNC      Type = "ASYNC"
	AWAIT      Type = "AWAIT"
	IMPORT     Type = "IMPORT"
	EXPORT     Type = "EXPORT"
	DEFAULT    Type = "DEFAULT"
	FROM       Type = "FROM"
	AS         Type = "AS"
)

var keywords = map[string]Type{
	"var":        VAR,
	"let":        LET,
	"const":      CONST,
	"function":   FUNCTION,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"for":        FOR,
	"of":         OF,
	"in":         IN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
	"undefined":  UNDEFINED,
	"new":        NEW,
	"class":      CLASS,
	"extends":    EXTENDS,
	"super":      SUPER,
	"this":       THIS,
	"throw":      THROW,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"typeof":     TYPEOF,
	"instanceof": INSTANCEOF,
	"delete":     DELETE,
	"async":      ASYNC,
	"await":      AWAIT,
	"import":     IMPORT,
	"export":     EXPORT,
	"default":    DEFAULT,
	"from":       FROM,
	"as":         AS,
}

// TemplateExpr is one `${...}` interpolation inside a template literal,
// recorded as raw source plus the position where it starts.
type TemplateExpr struct {
	Src    string
	Line   int
	Column int
}

// TemplateParts is the decoded Literal of a TEMPLATE token: n+1 quasis
// surrounding n interpolated expressions.
type TemplateParts struct {
	Quasis []string
	Exprs  []TemplateExpr
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
