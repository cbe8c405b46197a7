// Package llgen lowers a syntax tree into an LLVM IR module.  It is the
// alternative to the WebAssembly backend in package codegen and follows the
// same lowering rules: every value is an `i32` and string constructions are
// laid out as a length followed by their elements.
package llgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"plang/ast"
	"plang/common"
	"plang/report"
)

// Generator is responsible for converting a syntax tree into an LLVM module.
type Generator struct {
	// mod is the LLVM module being generated.
	mod *ir.Module

	// funcs is the table of functions generated so far.
	funcs map[string]*ir.Func

	// enclosingFunc is the function enclosing the block being generated.
	enclosingFunc *ir.Func

	// params maps the parameter names of the enclosing function to their
	// values.
	params map[string]*ir.Param

	// block is the current block being generated.
	block *ir.Block

	// globalCounter is used to name the globals holding type constructions.
	globalCounter int
}

// Generate lowers a syntax tree into an LLVM module.
func Generate(tree []ast.Node) (*ir.Module, error) {
	g := &Generator{
		mod:   ir.NewModule(),
		funcs: make(map[string]*ir.Func),
	}

	for _, node := range tree {
		if err := g.genTopLevel(node); err != nil {
			return nil, err
		}
	}

	return g.mod, nil
}

// genTopLevel generates a top-level section.
func (g *Generator) genTopLevel(node ast.Node) error {
	switch v := node.(type) {
	case *ast.FuncDef:
		return g.genFuncDef(v)
	case *ast.StructDef:
		return nil
	case *ast.ImportStmt:
		return report.Unsupported("importing `%s` is not supported by the LLVM backend", v.Path)
	case *ast.EnumDef:
		return report.Unsupported("enum definitions are not yet supported")
	case *ast.LetStmt:
		return report.Unsupported("variable declarations are not yet supported")
	case ast.Expr:
		return report.Unsupported("expressions outside of a function are not yet supported (line %d)", v.Line())
	default:
		report.ReportICE("LLVM generation for node %T not implemented", node)
		return nil
	}
}

// -----------------------------------------------------------------------------

// genFuncDef generates a function definition.  Nested function definitions are
// generated as their own top-level functions.
func (g *Generator) genFuncDef(fd *ast.FuncDef) error {
	if _, ok := g.funcs[fd.Name]; ok {
		return report.Unsupported("function `%s` is defined multiple times", fd.Name)
	}

	prevFunc, prevParams, prevBlock := g.enclosingFunc, g.params, g.block
	defer func() {
		g.enclosingFunc, g.params, g.block = prevFunc, prevParams, prevBlock
	}()

	var retType types.Type = types.Void
	if fd.ReturnType != common.NoReturnType {
		retType = types.I32
	}

	g.params = make(map[string]*ir.Param, len(fd.Args))
	llParams := make([]*ir.Param, len(fd.Args))
	for i, arg := range fd.Args {
		llParams[i] = ir.NewParam(arg.Name, types.I32)
		g.params[arg.Name] = llParams[i]
	}

	g.enclosingFunc = g.mod.NewFunc(fd.Name, retType, llParams...)
	if fd.Name == "main" {
		g.enclosingFunc.Linkage = enum.LinkageExternal
	}

	g.funcs[fd.Name] = g.enclosingFunc
	g.block = g.enclosingFunc.NewBlock("entry")

	last, err := g.genBlock(fd.Body)
	if err != nil {
		return err
	}

	// the value of the last expression is the result of the function
	if retType == types.Void {
		g.block.NewRet(nil)
	} else if last != nil && last.Type().Equal(types.I32) {
		g.block.NewRet(last)
	} else {
		g.block.NewRet(constant.NewInt(types.I32, 0))
	}

	return nil
}

// genBlock generates a block of sections and returns the value of the last
// expression in it if it produces one.
func (g *Generator) genBlock(block []ast.Node) (value.Value, error) {
	var last value.Value

	for _, node := range block {
		last = nil

		switch v := node.(type) {
		case *ast.IfExpr:
			if err := g.genIfExpr(v); err != nil {
				return nil, err
			}
		case ast.Expr:
			val, err := g.genExpr(v)
			if err != nil {
				return nil, err
			}

			last = val
		case *ast.FuncDef:
			if err := g.genFuncDef(v); err != nil {
				return nil, err
			}
		case *ast.StructDef:
		case *ast.ImportStmt:
			return nil, report.Unsupported("importing `%s` is not supported by the LLVM backend", v.Path)
		case *ast.EnumDef:
			return nil, report.Unsupported("enum definitions are not yet supported")
		case *ast.LetStmt:
			return nil, report.Unsupported("variable declarations are not yet supported")
		default:
			report.ReportICE("LLVM generation for node %T not implemented", node)
		}
	}

	return last, nil
}

// -----------------------------------------------------------------------------

// condBranch is a single conditional branch of an if tree.
type condBranch struct {
	cond  ast.Expr
	block []ast.Node
}

// genIfExpr generates an if tree.  All branches jump to a common exit block
// which the generator is left positioned over.
func (g *Generator) genIfExpr(ifExpr *ast.IfExpr) error {
	branches := []condBranch{{cond: ifExpr.Cond, block: ifExpr.Block}}
	for _, elif := range ifExpr.ElseIfs {
		branches = append(branches, condBranch{cond: elif.Cond, block: elif.Block})
	}

	var exitBlock *ir.Block
	for _, branch := range branches {
		// boolean literal conditions are resolved here
		if taken, ok := boolLiteral(branch.cond); ok {
			if !taken {
				continue
			}

			if _, err := g.genBlock(branch.block); err != nil {
				return err
			}

			return g.exitTo(exitBlock)
		}

		cond, err := g.genOperand(branch.cond)
		if err != nil {
			return err
		}

		if exitBlock == nil {
			exitBlock = ir.NewBlock("")
		}

		thenBlock := g.enclosingFunc.NewBlock("")
		elseBlock := g.enclosingFunc.NewBlock("")

		isTrue := g.block.NewICmp(enum.IPredNE, cond, constant.NewInt(types.I32, 0))
		g.block.NewCondBr(isTrue, thenBlock, elseBlock)

		g.block = thenBlock
		if _, err := g.genBlock(branch.block); err != nil {
			return err
		}

		g.block.NewBr(exitBlock)

		// the next branch is generated in the else block
		g.block = elseBlock
	}

	if _, err := g.genBlock(ifExpr.Else); err != nil {
		return err
	}

	return g.exitTo(exitBlock)
}

// exitTo jumps from the current block to the exit block of an if tree and
// positions the generator over the exit block.  The exit block is appended
// last so that it follows all the branches of the tree.  If there is no exit
// block, all the conditions were folded and the generator stays where it is.
func (g *Generator) exitTo(exitBlock *ir.Block) error {
	if exitBlock != nil {
		g.block.NewBr(exitBlock)

		exitBlock.Parent = g.enclosingFunc
		g.enclosingFunc.Blocks = append(g.enclosingFunc.Blocks, exitBlock)
		g.block = exitBlock
	}

	return nil
}

// boolLiteral returns the value of expr if it is a boolean literal.
func boolLiteral(expr ast.Expr) (bool, bool) {
	if ve, ok := expr.(*ast.ValueExpr); ok {
		if b, ok := ve.Value.(ast.Bool); ok {
			return bool(b), true
		}
	}

	return false, false
}

// globalName returns the name of the nth global for the named type.
func globalName(typeName string, n int) string {
	return fmt.Sprintf("type-%s-%d", typeName, n)
}
