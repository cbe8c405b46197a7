package depm

import (
	"fmt"
	"os"
	"strings"
)

// Export is a single symbol exported by a lowered module.
type Export struct {
	Name string
	Kind string
}

// Enumeration of export kinds.
const (
	KindFunction = "function"
	KindMemory   = "memory"
	KindGlobal   = "global"
	KindTable    = "table"
)

// exportKinds maps the keyword of a module field to the kind of export it
// produces.
var exportKinds = map[string]string{
	"func":   KindFunction,
	"memory": KindMemory,
	"global": KindGlobal,
	"table":  KindTable,
}

// ForeignModule is an already lowered module that is being imported.
type ForeignModule struct {
	// The path the module was read from.
	Path string

	// The symbols the module exports in the order they appear.
	Exports []Export

	// The source text of each function section of the module.  These are
	// spliced into the importing module.
	Forms []string
}

// Importer is the interface for resolving foreign module imports.
type Importer interface {
	// Import loads the foreign module at path.
	Import(path string) (*ForeignModule, error)
}

// FileImporter imports foreign modules from the file system.  Relative paths
// are resolved against the working directory of the process.
type FileImporter struct{}

// Import reads the module at path in full and introspects its exports.
func (FileImporter) Import(path string) (*ForeignModule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ReadModule(path, string(src))
}

// ReadModule introspects the text of a lowered module.  Every function section
// is exported as a function under its `$` name; inline and standalone `export`
// fields add exports of the kind they refer to.
func ReadModule(path, src string) (*ForeignModule, error) {
	exprs, err := readSexprs(src)
	if err != nil {
		return nil, fmt.Errorf("malformed module %s: %s", path, err)
	}

	// modules may omit the enclosing `(module ...)`
	fields := exprs
	if len(exprs) == 1 && exprs[0].head() == "module" {
		fields = exprs[0].list[1:]
	}

	fm := &ForeignModule{Path: path}
	for _, field := range fields {
		if !field.isList() {
			return nil, fmt.Errorf("malformed module %s: unexpected `%s` on line %d", path, field.atom, field.line)
		}

		switch head := field.head(); head {
		case "func":
			if name, ok := fieldName(field); ok {
				fm.Exports = append(fm.Exports, Export{Name: name, Kind: KindFunction})
			}

			fm.Exports = append(fm.Exports, inlineExports(field, KindFunction)...)
			fm.Forms = append(fm.Forms, field.text)
		case "memory", "global", "table":
			fm.Exports = append(fm.Exports, inlineExports(field, exportKinds[head])...)
		case "export":
			export, err := readExportField(field)
			if err != nil {
				return nil, fmt.Errorf("malformed module %s: %s", path, err)
			}

			fm.Exports = append(fm.Exports, export)
		}
	}

	return fm, nil
}

// fieldName returns the `$` name of a module field if it has one.
func fieldName(field *sexpr) (string, bool) {
	if len(field.list) > 1 && !field.list[1].isList() && strings.HasPrefix(field.list[1].atom, "$") {
		return field.list[1].atom[1:], true
	}

	return "", false
}

// inlineExports collects the `(export "name")` abbreviations of a field.
func inlineExports(field *sexpr, kind string) []Export {
	var exports []Export
	for _, elem := range field.list[1:] {
		if elem.head() == "export" && len(elem.list) == 2 {
			if name, ok := unquote(elem.list[1]); ok {
				exports = append(exports, Export{Name: name, Kind: kind})
			}
		}
	}

	return exports
}

// readExportField reads a standalone `(export "name" (kind index))` field.
func readExportField(field *sexpr) (Export, error) {
	if len(field.list) != 3 {
		return Export{}, fmt.Errorf("export on line %d must have a name and a descriptor", field.line)
	}

	name, ok := unquote(field.list[1])
	if !ok {
		return Export{}, fmt.Errorf("export on line %d has an invalid name", field.line)
	}

	kind, ok := exportKinds[field.list[2].head()]
	if !ok {
		return Export{}, fmt.Errorf("export `%s` on line %d has an unknown descriptor", name, field.line)
	}

	return Export{Name: name, Kind: kind}, nil
}

// unquote returns the contents of a string atom.
func unquote(s *sexpr) (string, bool) {
	if s.isList() || len(s.atom) < 2 || s.atom[0] != '"' || s.atom[len(s.atom)-1] != '"' {
		return "", false
	}

	return s.atom[1 : len(s.atom)-1], true
}
