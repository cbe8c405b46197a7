package ast

// FuncDef represents a function definition.
type FuncDef struct {
	ASTBase

	Name string

	// The arguments in declaration order.
	Args []Arg

	// The name of the return type.  This is common.NoReturnType if the
	// function does not return a value.
	ReturnType string

	Body []Node
}

// Arg is a single named and typed function argument.
type Arg struct {
	Name string
	Type string
}

// StructDef represents a struct definition.  Only the name is kept: the fields
// are parsed but not laid out.
type StructDef struct {
	ASTBase

	Name string
}

// EnumDef is reserved for enum definitions.
type EnumDef struct {
	ASTBase
}

// LetStmt is reserved for variable declarations.  The parser does not produce
// it yet.
type LetStmt struct {
	ASTBase

	Name         string
	Type         string
	TypeInferred bool
	Value        Expr
}

// ImportStmt represents an import of an already lowered foreign module.  It is
// resolved while parsing.
type ImportStmt struct {
	ASTBase

	// The path to the foreign module as written in the source.
	Path string

	// The names of the functions the foreign module exports.
	Functions []string

	// The source text of the foreign module's function sections.
	Forms []string
}

func (*FuncDef) stmtNode()    {}
func (*StructDef) stmtNode()  {}
func (*EnumDef) stmtNode()    {}
func (*LetStmt) stmtNode()    {}
func (*ImportStmt) stmtNode() {}
