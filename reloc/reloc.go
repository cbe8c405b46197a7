// Package reloc assigns linear memory addresses to the symbols referenced by a
// lowered module and substitutes them into the module's text.
package reloc

import (
	"strconv"
	"strings"

	"plang/ir"
	"plang/report"
)

// symbolSize is the number of bytes reserved for each distinct symbol.
const symbolSize = 4

// Table is a relocation table.  Symbols are assigned addresses in the order
// they are first encountered starting from zero.
type Table struct {
	addrs map[string]int
	names []string
}

// NewTable creates a new empty relocation table.
func NewTable() *Table {
	return &Table{addrs: make(map[string]int)}
}

// address returns the base address of sym, assigning it the next free address
// if sym has not been encountered before.
func (t *Table) address(sym string) int {
	if addr, ok := t.addrs[sym]; ok {
		return addr
	}

	addr := len(t.names) * symbolSize
	t.addrs[sym] = addr
	t.names = append(t.names, sym)
	return addr
}

// Resolve returns the final address of a relocation in decimal.
func (t *Table) Resolve(r ir.Reloc) string {
	return strconv.Itoa(t.address(r.Symbol) + r.Offset)
}

// Lookup returns the base address assigned to sym.
func (t *Table) Lookup(sym string) (int, bool) {
	addr, ok := t.addrs[sym]
	return addr, ok
}

// Names returns the symbols in the table in the order they were assigned.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// -----------------------------------------------------------------------------

// Link renders the module resolving its relocations against a fresh table.
func Link(mod *ir.Module) string {
	text, _ := LinkTable(mod)
	return text
}

// LinkTable is like Link but also returns the table the module was linked
// against.
func LinkTable(mod *ir.Module) (string, *Table) {
	t := NewTable()
	return mod.Render(t.Resolve), t
}

// ResolveText resolves the placeholders in module text.  The text is split on
// the placeholder delimiter: every odd segment is a placeholder of the form
// `name` or `name+offset` and is replaced by its address; even segments are
// copied unchanged.  A malformed placeholder is an internal error.
func ResolveText(text string) string {
	segs := strings.Split(text, ir.PlaceholderDelim)
	if len(segs)%2 == 0 {
		report.ReportICE("unterminated placeholder in module text")
	}

	t := NewTable()
	sb := &strings.Builder{}
	for i, seg := range segs {
		if i%2 == 0 {
			sb.WriteString(seg)
			continue
		}

		sb.WriteString(t.Resolve(parsePlaceholder(seg)))
	}

	return sb.String()
}

// parsePlaceholder parses the contents of a placeholder.
func parsePlaceholder(ph string) ir.Reloc {
	name, off, hasOff := strings.Cut(ph, "+")
	if name == "" {
		report.ReportICE("placeholder `%s` has no symbol", ph)
	}

	if !hasOff {
		return ir.Reloc{Symbol: name}
	}

	offset, err := strconv.Atoi(off)
	if err != nil || offset < 0 {
		report.ReportICE("placeholder `%s` has a malformed offset", ph)
	}

	return ir.Reloc{Symbol: name, Offset: offset}
}
