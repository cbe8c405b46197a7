package syntax

import (
	"fmt"

	"plang/report"
)

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  The value of a string token has the
	// surrounding quotes trimmed off but its escape sequences are left as they
	// appear in source.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// String returns a description of the token suitable for error messages.
func (t *Token) String() string {
	switch t.Kind {
	case TOK_NEWLINE:
		return "newline"
	case TOK_EOF:
		return "end of file"
	case TOK_STRINGLIT:
		return fmt.Sprintf("\"%s\"", t.Value)
	default:
		return fmt.Sprintf("`%s`", t.Value)
	}
}

// Enumeration of token kinds.
const (
	TOK_LET = iota
	TOK_FN
	TOK_FOR
	TOK_WHILE
	TOK_IF
	TOK_ELSE
	TOK_STRUCT
	TOK_ENUM
	TOK_RETURN
	TOK_BREAK
	TOK_CONTINUE
	TOK_TRUE
	TOK_FALSE
	TOK_IMPORT

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_POW

	TOK_ASSIGN
	TOK_EQ
	TOK_NEQ
	TOK_NOT
	TOK_GT
	TOK_LT
	TOK_GTEQ
	TOK_LTEQ

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_COMMA
	TOK_DOT
	TOK_COLON
	TOK_SEMI

	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_STRINGLIT

	TOK_NEWLINE
	TOK_EOF
)
