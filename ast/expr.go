package ast

// ValueExpr is an expression consisting of a single value.
type ValueExpr struct {
	ASTBase

	Value Value
}

// BinaryOp represents the application of a binary operator.  The grammar only
// admits a single operator per expression so both operands are always values.
type BinaryOp struct {
	ASTBase

	LHS Expr
	Op  Oper
	RHS Expr
}

// UnaryOp represents the application of a unary operator.  No unary operators
// are part of the grammar yet.
type UnaryOp struct {
	ASTBase

	Op      UnaryOper
	Operand Expr
}

// IfExpr represents an if/else if/else tree.
type IfExpr struct {
	ASTBase

	// The condition of the primary branch.
	Cond Expr

	// The body of the primary branch.
	Block []Node

	// The else if branches in source order.  This is nil if no `else if`
	// clause was present.
	ElseIfs []ElseIf

	// The else block.  This is nil if there is no else clause.
	Else []Node
}

// ElseIf is a single `else if` branch of an if tree.
type ElseIf struct {
	Cond  Expr
	Block []Node
}

func (*ValueExpr) exprNode() {}
func (*BinaryOp) exprNode()  {}
func (*UnaryOp) exprNode()   {}
func (*IfExpr) exprNode()    {}

// -----------------------------------------------------------------------------

// Oper is a binary operator.
type Oper int

// Enumeration of binary operators.
const (
	OpAdd Oper = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGtEq
	OpLtEq
)

var operStrings = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpPow:  "^",
	OpEq:   "==",
	OpNeq:  "!=",
	OpGt:   ">",
	OpLt:   "<",
	OpGtEq: ">=",
	OpLtEq: "<=",
}

func (op Oper) String() string {
	if int(op) < len(operStrings) {
		return operStrings[op]
	}

	return "?"
}

// UnaryOper is a unary operator.  It is reserved: the grammar does not yet
// contain any unary operators.
type UnaryOper int
