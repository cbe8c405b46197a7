// Package codegen lowers a syntax tree into a WebAssembly text module.
package codegen

import (
	"plang/ast"
	"plang/common"
	"plang/ir"
	"plang/report"
)

// Generator is responsible for lowering a syntax tree into an IR module.  A
// generator is used for exactly one tree and holds no global state so several
// trees can be lowered concurrently.
type Generator struct {
	// The IR module being generated.
	mod *ir.Module

	// The IR function being generated.
	fn *ir.Func

	// The names of the parameters of the function being generated.
	params map[string]struct{}

	// The number of memory symbols allocated so far.  This is used to give
	// every type construction its own symbol.
	symbolCount int
}

// Generate lowers a syntax tree into an IR module.
func Generate(tree []ast.Node) (*ir.Module, error) {
	g := &Generator{mod: &ir.Module{}}

	for _, node := range tree {
		if err := g.generateTopLevel(node); err != nil {
			return nil, err
		}
	}

	return g.mod, nil
}

// generateTopLevel generates a top-level section.
func (g *Generator) generateTopLevel(node ast.Node) error {
	switch v := node.(type) {
	case *ast.FuncDef:
		return g.generateFuncDef(v)
	case *ast.StructDef:
		// struct layouts are not generated
		return nil
	case *ast.ImportStmt:
		g.generateImport(v)
		return nil
	case *ast.EnumDef:
		return report.Unsupported("enum definitions are not yet supported")
	case *ast.LetStmt:
		return report.Unsupported("variable declarations are not yet supported")
	case ast.Expr:
		return report.Unsupported("expressions outside of a function are not yet supported (line %d)", v.Line())
	default:
		report.ReportICE("codegen for node %T not implemented", node)
		return nil
	}
}

// -----------------------------------------------------------------------------

// generateFuncDef generates a function definition.  Function definitions nested
// inside another function are hoisted to the top level of the module.
func (g *Generator) generateFuncDef(fd *ast.FuncDef) error {
	prevFn, prevParams := g.fn, g.params
	defer func() {
		g.fn, g.params = prevFn, prevParams
	}()

	g.fn = &ir.Func{
		Name:   fd.Name,
		Result: fd.ReturnType != common.NoReturnType,
	}

	if fd.Name == "main" {
		g.fn.Export = "_start"
	}

	g.params = make(map[string]struct{}, len(fd.Args))
	for _, arg := range fd.Args {
		g.fn.Params = append(g.fn.Params, arg.Name)
		g.params[arg.Name] = struct{}{}
	}

	body, err := g.generateBlock(fd.Body, 0)
	if err != nil {
		return err
	}

	g.fn.Body = body
	g.mod.Fields = append(g.mod.Fields, g.fn)
	return nil
}

// generateImport splices the function sections of an imported module.
func (g *Generator) generateImport(is *ast.ImportStmt) {
	g.mod.Fields = append(g.mod.Fields, &ir.Splice{Path: is.Path, Forms: is.Forms})
}

// newSymbol returns a fresh memory symbol for a construction of the named
// type.
func (g *Generator) newSymbol(typeName string) string {
	g.symbolCount++
	return symbolName(typeName, g.symbolCount-1)
}
