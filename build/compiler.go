// Package build drives the compilation pipeline: a source file is tokenized,
// parsed and lowered by the selected backend into the text of a module.
package build

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"plang/ast"
	"plang/codegen"
	"plang/common"
	"plang/depm"
	"plang/llgen"
	"plang/reloc"
	"plang/report"
	"plang/syntax"
)

// Compiler holds the settings shared by every compilation it runs.  A compiler
// holds no per-compilation state so it can compile several files at once.
type Compiler struct {
	// format is the output format: one of the enumerated common formats.
	format string

	// importer resolves the import statements of compiled files.
	importer depm.Importer

	// reportPhases indicates whether the compiler should report the beginning
	// and end of each compilation phase.  Phases are only reported when a
	// single file is being compiled.
	reportPhases bool
}

// Output is the result of compiling a single source file.
type Output struct {
	// SrcPath is the path the source was read from.  It is empty if the source
	// was not read from a file.
	SrcPath string

	// Tree is the parsed syntax tree of the source.
	Tree []ast.Node

	// Text is the text of the compiled module.
	Text string
}

// NewCompiler creates a new compiler for the given output format.  If importer
// is nil, imports are read from the file system.
func NewCompiler(format string, importer depm.Importer) (*Compiler, error) {
	switch format {
	case common.FormatWAT, common.FormatLLVM:
	default:
		return nil, fmt.Errorf("unknown output format `%s`", format)
	}

	if importer == nil {
		importer = depm.FileImporter{}
	}

	return &Compiler{format: format, importer: importer, reportPhases: true}, nil
}

// Compile compiles the source read from r.
func (c *Compiler) Compile(r io.Reader) (*Output, error) {
	tree, err := c.parse(r)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(tree)
	if err != nil {
		return nil, err
	}

	return &Output{Tree: tree, Text: text}, nil
}

// Check lexes and parses the source read from r without generating it.
func (c *Compiler) Check(r io.Reader) ([]ast.Node, error) {
	return c.parse(r)
}

// CompileFile compiles the source file at path.
func (c *Compiler) CompileFile(path string) (*Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := c.Compile(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}

	out.SrcPath = path
	return out, nil
}

// CheckFile lexes and parses the source file at path.
func (c *Compiler) CheckFile(path string) ([]ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Check(bufio.NewReader(f))
}

// CompileFiles compiles several source files concurrently.  The outputs and
// errors are in the same order as the paths: for each path, exactly one of
// its output and its error is non-nil.
func (c *Compiler) CompileFiles(paths []string) ([]*Output, []error) {
	// phase spinners cannot be shared between goroutines
	fc := *c
	fc.reportPhases = false

	outputs := make([]*Output, len(paths))
	errs := make([]error, len(paths))

	wg := &sync.WaitGroup{}
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer report.CatchICE(&errs[i])

			outputs[i], errs[i] = fc.CompileFile(path)
		}(i, path)
	}

	wg.Wait()
	return outputs, errs
}

// -----------------------------------------------------------------------------

// parse runs the parsing phase of the compiler.
func (c *Compiler) parse(r io.Reader) ([]ast.Node, error) {
	c.beginPhase("Parsing")

	tree, err := syntax.ParseSource(r, c.importer)
	if err != nil {
		return nil, err
	}

	c.endPhase()
	return tree, nil
}

// generate runs the generation phase of the compiler and links the generated
// module into its final text.
func (c *Compiler) generate(tree []ast.Node) (string, error) {
	c.beginPhase("Generating")

	var text string
	switch c.format {
	case common.FormatLLVM:
		mod, err := llgen.Generate(tree)
		if err != nil {
			return "", err
		}

		text = mod.String()
	default:
		mod, err := codegen.Generate(tree)
		if err != nil {
			return "", err
		}

		text = reloc.Link(mod)
	}

	c.endPhase()
	return text, nil
}

func (c *Compiler) beginPhase(phase string) {
	if c.reportPhases {
		report.ReportBeginPhase(phase)
	}
}

func (c *Compiler) endPhase() {
	if c.reportPhases {
		report.ReportEndPhase()
	}
}

// -----------------------------------------------------------------------------

// DefaultOutputPath returns the path the module compiled from srcPath is
// written to if no output path is given: the source path with its extension
// replaced by the extension of the format.
func DefaultOutputPath(srcPath, format string) string {
	ext := ".wat"
	if format == common.FormatLLVM {
		ext = ".ll"
	}

	return srcPath[:len(srcPath)-len(filepath.Ext(srcPath))] + ext
}

// WriteOutput writes the text of a compiled module to outputPath, creating the
// enclosing directory if necessary.
func WriteOutput(outputPath, text string) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(outputPath, []byte(text), 0o644)
}
