package depm

import (
	"fmt"
	"strings"
)

// sexpr is a node of a parsed S-expression: either an atom or a list.
type sexpr struct {
	// The atom text.  This is empty for lists.  String atoms keep their
	// surrounding quotes.
	atom string

	// The elements of the list.
	list []*sexpr

	// The source text the node was parsed from.
	text string

	// The line the node begins on (one-indexed).
	line int
}

// isList returns whether the node is a list.
func (s *sexpr) isList() bool {
	return s.atom == ""
}

// head returns the keyword at the start of a list node or an empty string.
func (s *sexpr) head() string {
	if s.isList() && len(s.list) > 0 && !s.list[0].isList() {
		return s.list[0].atom
	}

	return ""
}

// sexprReader reads S-expressions from the text of a lowered module.
type sexprReader struct {
	src  string
	pos  int
	line int
}

// readSexprs reads all the top-level S-expressions in src.
func readSexprs(src string) ([]*sexpr, error) {
	r := &sexprReader{src: src, line: 1}

	var exprs []*sexpr
	for {
		if err := r.skipTrivia(); err != nil {
			return nil, err
		}

		if r.pos >= len(r.src) {
			return exprs, nil
		}

		expr, err := r.read()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)
	}
}

// read reads a single S-expression starting at the reader's position.
func (r *sexprReader) read() (*sexpr, error) {
	start, startLine := r.pos, r.line

	switch r.src[r.pos] {
	case '(':
		r.pos++

		node := &sexpr{line: startLine}
		for {
			if err := r.skipTrivia(); err != nil {
				return nil, err
			}

			if r.pos >= len(r.src) {
				return nil, fmt.Errorf("unclosed list starting on line %d", startLine)
			}

			if r.src[r.pos] == ')' {
				r.pos++
				node.text = r.src[start:r.pos]
				return node, nil
			}

			elem, err := r.read()
			if err != nil {
				return nil, err
			}

			node.list = append(node.list, elem)
		}
	case ')':
		return nil, fmt.Errorf("unexpected `)` on line %d", startLine)
	case '"':
		r.pos++
		for r.pos < len(r.src) && r.src[r.pos] != '"' {
			if r.src[r.pos] == '\\' {
				r.pos++
			} else if r.src[r.pos] == '\n' {
				r.line++
			}

			r.pos++
		}

		if r.pos >= len(r.src) {
			return nil, fmt.Errorf("unclosed string starting on line %d", startLine)
		}

		r.pos++
	default:
		// a lone `;` is still an atom
		r.pos++
		for r.pos < len(r.src) && !strings.ContainsRune("() \t\r\n;\"", rune(r.src[r.pos])) {
			r.pos++
		}
	}

	atom := r.src[start:r.pos]
	return &sexpr{atom: atom, text: atom, line: startLine}, nil
}

// skipTrivia skips whitespace, line comments (`;;`) and block comments (`(;`
// ... `;)`).
func (r *sexprReader) skipTrivia() error {
	for r.pos < len(r.src) {
		switch {
		case r.src[r.pos] == '\n':
			r.line++
			r.pos++
		case r.src[r.pos] == ' ', r.src[r.pos] == '\t', r.src[r.pos] == '\r':
			r.pos++
		case strings.HasPrefix(r.src[r.pos:], ";;"):
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		case strings.HasPrefix(r.src[r.pos:], "(;"):
			startLine := r.line
			end := strings.Index(r.src[r.pos:], ";)")
			if end == -1 {
				return fmt.Errorf("unclosed block comment starting on line %d", startLine)
			}

			r.line += strings.Count(r.src[r.pos:r.pos+end], "\n")
			r.pos += end + 2
		default:
			return nil
		}
	}

	return nil
}
