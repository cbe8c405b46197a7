package ast

// Node is the abstract interface for all syntax tree nodes.  A node is either
// an expression (Expr) or a statement (Stmt).
type Node interface {
	// Line returns the source line the node begins on.
	Line() int
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node

	exprNode()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node

	stmtNode()
}

// ASTBase is a utility base struct for all AST nodes.
type ASTBase struct {
	line int
}

// NewASTBaseOn creates a new AST base on the given line.
func NewASTBaseOn(line int) ASTBase {
	return ASTBase{line: line}
}

func (ab ASTBase) Line() int {
	return ab.line
}
