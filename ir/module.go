// Package ir contains the lowered representation of a module: WebAssembly text
// split into instruction lines whose symbolic memory addresses are kept as
// typed relocation records until the module is linked.
package ir

import (
	"fmt"
	"strings"
)

// Module is a lowered module.
type Module struct {
	// The fields of the module in source order.
	Fields []Field

	// Whether the module stores data in linear memory.  A single page of
	// memory is declared if it does.
	Memory bool
}

// Field is a top-level field of a module: a *Func or a *Splice.
type Field interface {
	field()
}

// Func is a lowered function definition.
type Func struct {
	Name string

	// The name the function is exported under.  This is empty if the
	// function is not exported.
	Export string

	// The names of the parameters.  All parameters are `i32`.
	Params []string

	// Whether the function returns an `i32`.
	Result bool

	Body []*Line
}

// Splice is source text taken verbatim from an imported module.
type Splice struct {
	// The path of the module the text was imported from.
	Path string

	// The function sections of the module.
	Forms []string
}

func (*Func) field()   {}
func (*Splice) field() {}

// -----------------------------------------------------------------------------

// Line is a single instruction line.  Its text is interleaved with the
// relocations whose addresses it refers to.
type Line struct {
	// The nesting depth of the line within its function body.
	Depth int

	Segs []Seg
}

// Seg is a segment of an instruction line: either Text or a Reloc.
type Seg interface {
	seg()
}

// Text is a literal segment of instruction text.
type Text string

// Reloc is a reference to the address of a symbol in linear memory plus a
// byte offset.  Relocations are resolved by the linker.
type Reloc struct {
	Symbol string
	Offset int
}

func (Text) seg()  {}
func (Reloc) seg() {}

// NewLine creates a new instruction line at the given depth.
func NewLine(depth int, segs ...Seg) *Line {
	return &Line{Depth: depth, Segs: segs}
}

// Textf creates a line holding only formatted text.
func Textf(depth int, format string, args ...interface{}) *Line {
	return NewLine(depth, Text(fmt.Sprintf(format, args...)))
}

// Placeholder returns the placeholder text for the relocation: `~name~` or
// `~name+off~`.
func (r Reloc) Placeholder() string {
	if r.Offset == 0 {
		return PlaceholderDelim + r.Symbol + PlaceholderDelim
	}

	return fmt.Sprintf("%s%s+%d%s", PlaceholderDelim, r.Symbol, r.Offset, PlaceholderDelim)
}

// PlaceholderDelim is the character delimiting placeholders in module text.
const PlaceholderDelim = "~"

// -----------------------------------------------------------------------------

// indent is the text each level of nesting is indented by.
const indent = "    "

// Render renders the module as WebAssembly text.  Every relocation is replaced
// with the text returned by resolve.  Relocations are resolved in the order
// they appear in the output.
func (m *Module) Render(resolve func(Reloc) string) string {
	sb := &strings.Builder{}
	sb.WriteString("(module\n")

	if m.Memory {
		sb.WriteString(indent)
		sb.WriteString("(memory (export \"memory\") 1)\n")
	}

	for _, field := range m.Fields {
		switch v := field.(type) {
		case *Func:
			v.render(sb, resolve)
		case *Splice:
			for _, form := range v.Forms {
				sb.WriteString(indent)
				sb.WriteString(form)
				sb.WriteRune('\n')
			}
		}
	}

	sb.WriteString(")\n")
	return sb.String()
}

// PlaceholderText renders the module with every relocation written as its
// placeholder text.
func (m *Module) PlaceholderText() string {
	return m.Render(Reloc.Placeholder)
}

func (fn *Func) render(sb *strings.Builder, resolve func(Reloc) string) {
	sb.WriteString(indent)
	sb.WriteString("(func $")
	sb.WriteString(fn.Name)

	if fn.Export != "" {
		fmt.Fprintf(sb, " (export \"%s\")", fn.Export)
	}

	for _, param := range fn.Params {
		fmt.Fprintf(sb, " (param $%s i32)", param)
	}

	if fn.Result {
		sb.WriteString(" (result i32)")
	}

	sb.WriteRune('\n')

	for _, line := range fn.Body {
		sb.WriteString(strings.Repeat(indent, line.Depth+2))

		for _, seg := range line.Segs {
			switch v := seg.(type) {
			case Text:
				sb.WriteString(string(v))
			case Reloc:
				sb.WriteString(resolve(v))
			}
		}

		sb.WriteRune('\n')
	}

	sb.WriteString(indent)
	sb.WriteString(")\n")
}
