package codegen

import (
	"plang/ast"
	"plang/ir"
	"plang/report"
)

// generateBlock generates a block of sections at the given depth.
func (g *Generator) generateBlock(block []ast.Node, depth int) ([]*ir.Line, error) {
	var lines []*ir.Line

	for _, node := range block {
		switch v := node.(type) {
		case *ast.IfExpr:
			ifLines, err := g.generateIfExpr(v, depth)
			if err != nil {
				return nil, err
			}

			lines = append(lines, ifLines...)
		case ast.Expr:
			exprLines, err := g.generateExpr(v, depth)
			if err != nil {
				return nil, err
			}

			lines = append(lines, exprLines...)
		case *ast.FuncDef:
			if err := g.generateFuncDef(v); err != nil {
				return nil, err
			}
		case *ast.StructDef:
		case *ast.ImportStmt:
			g.generateImport(v)
		case *ast.EnumDef:
			return nil, report.Unsupported("enum definitions are not yet supported")
		case *ast.LetStmt:
			return nil, report.Unsupported("variable declarations are not yet supported")
		default:
			report.ReportICE("codegen for node %T not implemented", node)
		}
	}

	return lines, nil
}

// -----------------------------------------------------------------------------

// condBranch is a single conditional branch of an if tree.
type condBranch struct {
	cond  ast.Expr
	block []ast.Node
}

// generateIfExpr generates an if tree.  Else if branches are nested inside the
// else arm of the branch before them.
func (g *Generator) generateIfExpr(ifExpr *ast.IfExpr, depth int) ([]*ir.Line, error) {
	branches := []condBranch{{cond: ifExpr.Cond, block: ifExpr.Block}}
	for _, elif := range ifExpr.ElseIfs {
		branches = append(branches, condBranch{cond: elif.Cond, block: elif.Block})
	}

	return g.generateBranches(branches, ifExpr.Else, depth)
}

// generateBranches generates the remaining branches of an if tree.  Branches
// whose condition is a boolean literal are resolved here so only the arm that
// is taken is generated.
func (g *Generator) generateBranches(branches []condBranch, elseBlock []ast.Node, depth int) ([]*ir.Line, error) {
	if len(branches) == 0 {
		return g.generateBlock(elseBlock, depth)
	}

	branch := branches[0]
	if taken, ok := boolLiteral(branch.cond); ok {
		if taken {
			return g.generateBlock(branch.block, depth)
		}

		return g.generateBranches(branches[1:], elseBlock, depth)
	}

	lines, err := g.generateExpr(branch.cond, depth)
	if err != nil {
		return nil, err
	}

	lines = append(lines, ir.Textf(depth, "(if"), ir.Textf(depth+1, "(then"))

	thenLines, err := g.generateBlock(branch.block, depth+2)
	if err != nil {
		return nil, err
	}

	lines = append(lines, thenLines...)
	lines = append(lines, ir.Textf(depth+1, ")"))

	if len(branches) > 1 || len(elseBlock) > 0 {
		elseLines, err := g.generateBranches(branches[1:], elseBlock, depth+2)
		if err != nil {
			return nil, err
		}

		lines = append(lines, ir.Textf(depth+1, "(else"))
		lines = append(lines, elseLines...)
		lines = append(lines, ir.Textf(depth+1, ")"))
	}

	lines = append(lines, ir.Textf(depth, ")"))
	return lines, nil
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
