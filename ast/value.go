package ast

// Value is a literal, variable reference, function call or type construction.
type Value interface {
	valueNode()
}

// F32 is a floating-point literal.
type F32 float32

// I32 is an integer literal.
type I32 int32

// Bool is a boolean literal.
type Bool bool

// Var is a reference to a variable in scope.
type Var struct {
	Name string
}

// FnCall is a call to a declared function.
type FnCall struct {
	Name string
	Args []Expr
}

// TypeConstr is the in-place construction of a composite value.  The only
// construction the parser produces is a `String` built from a string literal.
type TypeConstr struct {
	// The name of the type being constructed.
	Name string

	// The values of the fields being initialized.
	Fields map[string]Constant
}

func (F32) valueNode()         {}
func (I32) valueNode()         {}
func (Bool) valueNode()        {}
func (Var) valueNode()         {}
func (*FnCall) valueNode()     {}
func (*TypeConstr) valueNode() {}

// -----------------------------------------------------------------------------

// Constant is the value of a field in a type construction: either a single
// value or an ordered sequence of values.
type Constant interface {
	constNode()
}

// ConstValue is a constant holding a single value.
type ConstValue struct {
	Value Value
}

// ConstArray is a constant holding an ordered sequence of values.
type ConstArray []Value

func (ConstValue) constNode() {}
func (ConstArray) constNode() {}
