package syntax

import (
	"io"

	"plang/ast"
	"plang/depm"
	"plang/report"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse as well as any
// semantic actions they perform during parsing.

// Parser is the parser for a source file.  It performs syntax analysis, AST
// generation, name resolution and import resolution in a single pass.  It is a
// recursive descent parser: all parsing functions assume that they begin with
// the parser centered on the first token of their production and must consume
// all tokens (including the last) of their production, leaving the parser on
// the next token.  Newline tokens are never seen by the parsing functions: they
// are skipped as the parser moves forward and only advance its line counter.
type Parser struct {
	// toks is the token stream being parsed.  It always ends in an EOF token.
	toks []*Token

	// ndx is the index of the lookahead token in toks.
	ndx int

	// tok is the current token the parser is positioned on.
	tok *Token

	// lookahead is the first non-newline token after tok.
	lookahead *Token

	// line is the source line of tok.
	line int

	// pendingLines is the number of newlines skipped between tok and
	// lookahead.
	pendingLines int

	// importer resolves import statements.
	importer depm.Importer

	// scopes is the stack of variable scopes.
	scopes *scopeStack

	// funcs is the set of functions that have been defined or imported so far.
	funcs map[string]struct{}

	// types is the set of declared type names.
	types map[string]struct{}
}

// NewParser creates a new parser over the given token stream.  If importer is
// nil, foreign modules are imported from the file system.
func NewParser(toks []*Token, importer depm.Importer) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != TOK_EOF {
		toks = append(toks, &Token{Kind: TOK_EOF})
	}

	if importer == nil {
		importer = depm.FileImporter{}
	}

	p := &Parser{
		toks:     toks,
		line:     1,
		importer: importer,
		scopes:   newScopeStack(),
		funcs:    make(map[string]struct{}),
		types:    map[string]struct{}{"i32": {}},
	}

	// load the first token as the lookahead and then move onto it
	p.loadLookahead()
	p.next()

	return p
}

// Parse parses a token stream into a sequence of top-level nodes.
func Parse(toks []*Token, importer depm.Importer) ([]ast.Node, error) {
	return NewParser(toks, importer).parseFile()
}

// ParseSource tokenizes and parses a source file.
func ParseSource(r io.Reader, importer depm.Importer) ([]ast.Node, error) {
	toks, err := Tokenize(r)
	if err != nil {
		return nil, err
	}

	return Parse(toks, importer)
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.  The parser stays on the EOF token
// once it reaches it.
func (p *Parser) next() {
	if p.tok != nil && p.tok.Kind == TOK_EOF {
		return
	}

	p.tok = p.lookahead
	p.line += p.pendingLines
	p.loadLookahead()
}

// loadLookahead loads the next non-newline token as the lookahead counting
// the newlines it skips.
func (p *Parser) loadLookahead() {
	p.pendingLines = 0

	for p.ndx < len(p.toks)-1 && p.toks[p.ndx].Kind == TOK_NEWLINE {
		p.pendingLines++
		p.ndx++
	}

	p.lookahead = p.toks[p.ndx]
	if p.ndx < len(p.toks)-1 {
		p.ndx++
	}
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// peekIs returns true if the lookahead token is of a given kind.
func (p *Parser) peekIs(kind int) bool {
	return p.lookahead.Kind == kind
}

// assert checks if the parser is on a token of a given kind and rejects the
// token if not.
func (p *Parser) assert(kind int) error {
	if p.got(kind) {
		return nil
	}

	return p.reject()
}

// assertAndNext performs an assert operation and moves the parser forward.
func (p *Parser) assertAndNext(kind int) error {
	if err := p.assert(kind); err != nil {
		return err
	}

	p.next()
	return nil
}

// want moves the parser forward one and then asserts that the token the parser
// has moved to is of a given kind.
func (p *Parser) want(kind int) error {
	p.next()
	return p.assert(kind)
}

// -----------------------------------------------------------------------------

// reject produces an unexpected token error on the current token.
func (p *Parser) reject() error {
	if p.got(TOK_EOF) {
		return report.Raise(p.line, "unexpected end of file")
	}

	return report.Raise(p.line, "unexpected token %s", p.tok)
}

// errorf produces an error on the current line.
func (p *Parser) errorf(msg string, args ...interface{}) error {
	return report.Raise(p.line, msg, args...)
}

// -----------------------------------------------------------------------------

// declareVar declares a variable in the innermost scope.
func (p *Parser) declareVar(name string) error {
	if !p.scopes.declare(name) {
		return p.errorf("variable `%s` declared multiple times", name)
	}

	return nil
}

// isVar returns whether name resolves to a variable in scope.
func (p *Parser) isVar(name string) bool {
	_, ok := p.scopes.lookup(name)
	return ok
}

// isFunc returns whether name is a function defined or imported so far.
func (p *Parser) isFunc(name string) bool {
	_, ok := p.funcs[name]
	return ok
}

// isType returns whether name is a declared type.
func (p *Parser) isType(name string) bool {
	_, ok := p.types[name]
	return ok
}
