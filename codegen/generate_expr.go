package codegen

import (
	"fmt"
	"sort"
	"strconv"

	"plang/ast"
	"plang/common"
	"plang/ir"
	"plang/report"
)

// generateExpr generates an expression.  The value of the expression is
// produced by the last line returned.
func (g *Generator) generateExpr(expr ast.Expr, depth int) ([]*ir.Line, error) {
	switch v := expr.(type) {
	case *ast.ValueExpr:
		return g.generateValue(v.Value, depth)
	case *ast.BinaryOp:
		return g.generateBinaryOp(v, depth)
	case *ast.IfExpr:
		return g.generateIfExpr(v, depth)
	case *ast.UnaryOp:
		return nil, report.Unsupported("unary operators are not yet supported")
	default:
		report.ReportICE("codegen for expression %T not implemented", expr)
		return nil, nil
	}
}

// binOpInstrs maps the binary operators that can be lowered to their
// instructions.
var binOpInstrs = map[ast.Oper]string{
	ast.OpEq: "(i32.eq)",
	ast.OpGt: "(i32.gt_u)",
}

// generateBinaryOp generates a binary operator application.  Both operands are
// pushed before the operator is applied.
func (g *Generator) generateBinaryOp(bop *ast.BinaryOp, depth int) ([]*ir.Line, error) {
	instr, ok := binOpInstrs[bop.Op]
	if !ok {
		return nil, report.Unsupported("operator `%s` is not yet supported", bop.Op)
	}

	lines, err := g.generateExpr(bop.LHS, depth)
	if err != nil {
		return nil, err
	}

	rhsLines, err := g.generateExpr(bop.RHS, depth)
	if err != nil {
		return nil, err
	}

	lines = append(lines, rhsLines...)
	return append(lines, ir.NewLine(depth, ir.Text(instr))), nil
}

// -----------------------------------------------------------------------------

// generateValue generates a value.
func (g *Generator) generateValue(value ast.Value, depth int) ([]*ir.Line, error) {
	switch v := value.(type) {
	case ast.I32:
		return []*ir.Line{ir.Textf(depth, "(i32.const %d)", int32(v))}, nil
	case ast.F32:
		return []*ir.Line{ir.Textf(depth, "(f32.const %s)", formatF32(v))}, nil
	case ast.Bool:
		if v {
			return []*ir.Line{ir.Textf(depth, "(i32.const 1)")}, nil
		}

		return []*ir.Line{ir.Textf(depth, "(i32.const 0)")}, nil
	case ast.Var:
		if _, ok := g.params[v.Name]; !ok {
			return nil, report.Unsupported("variable `%s` is not a parameter of function `%s`", v.Name, g.fn.Name)
		}

		return []*ir.Line{ir.Textf(depth, "(local.get $%s)", v.Name)}, nil
	case *ast.FnCall:
		return g.generateFnCall(v, depth)
	case *ast.TypeConstr:
		return g.generateTypeConstr(v, depth)
	default:
		report.ReportICE("codegen for value %T not implemented", value)
		return nil, nil
	}
}

// formatF32 formats a float literal in the shortest form that round trips.
func formatF32(x ast.F32) string {
	return strconv.FormatFloat(float64(x), 'g', -1, 32)
}

// generateFnCall generates a function call.  The arguments are generated left
// to right.  If only the first argument needs instructions before its value,
// those instructions are hoisted before the call and every value is folded into
// the call itself.  Otherwise the arguments are pushed in order and the call
// takes its operands from the stack.
func (g *Generator) generateFnCall(call *ast.FnCall, depth int) ([]*ir.Line, error) {
	argLines := make([][]*ir.Line, len(call.Args))
	flat := false
	for i, arg := range call.Args {
		lines, err := g.generateExpr(arg, depth)
		if err != nil {
			return nil, err
		}

		if len(lines) == 0 {
			report.ReportICE("argument to `%s` produced no value", call.Name)
		}

		// hoisting these lines would evaluate them before the earlier
		// arguments folded into the call
		if i > 0 && len(lines) > 1 {
			flat = true
		}

		argLines[i] = lines
	}

	var lines []*ir.Line
	if flat {
		for _, al := range argLines {
			lines = append(lines, al...)
		}

		return append(lines, ir.NewLine(depth, ir.Text("(call $"+call.Name+")"))), nil
	}

	callLine := ir.NewLine(depth, ir.Text("(call $"+call.Name))
	for _, al := range argLines {
		lines = append(lines, al[:len(al)-1]...)

		callLine.Segs = append(callLine.Segs, ir.Text(" "))
		callLine.Segs = append(callLine.Segs, al[len(al)-1].Segs...)
	}

	callLine.Segs = append(callLine.Segs, ir.Text(")"))
	return append(lines, callLine), nil
}

// -----------------------------------------------------------------------------

// generateTypeConstr generates the in-place construction of a value in linear
// memory.  The value is the address of the construction.
func (g *Generator) generateTypeConstr(tc *ast.TypeConstr, depth int) ([]*ir.Line, error) {
	if tc.Name != common.StringTypeName {
		return nil, report.Unsupported("construction of type `%s` is not yet supported", tc.Name)
	}

	// NB: the relocator reserves a single 4 byte cell per symbol.  A
	// construction spanning several cells overlaps the constructions allocated
	// after it and their stores overwrite its later cells.
	sym := g.newSymbol(tc.Name)
	g.mod.Memory = true

	// fields are laid out in name order for determinism
	names := make([]string, 0, len(tc.Fields))
	for name := range tc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []*ir.Line
	for _, name := range names {
		arr, ok := tc.Fields[name].(ast.ConstArray)
		if !ok {
			return nil, report.Unsupported("single value field `%s` of `%s` is not yet supported", name, tc.Name)
		}

		arrLines, err := g.generateConstArray(sym, arr, depth)
		if err != nil {
			return nil, err
		}

		lines = append(lines, arrLines...)
	}

	return append(lines, ir.NewLine(depth, ir.Text("(i32.const "), ir.Reloc{Symbol: sym}, ir.Text(")"))), nil
}

// generateConstArray stores an array at the address of sym: the length is
// stored first followed by each element in its own 4 byte cell.
func (g *Generator) generateConstArray(sym string, arr ast.ConstArray, depth int) ([]*ir.Line, error) {
	lines := []*ir.Line{storeLine(depth, ir.Reloc{Symbol: sym}, strconv.Itoa(len(arr)))}

	for i, elem := range arr {
		var text string
		switch v := elem.(type) {
		case ast.I32:
			text = strconv.Itoa(int(v))
		case ast.Bool:
			text = "0"
			if v {
				text = "1"
			}
		default:
			return nil, report.Unsupported("array elements of kind %T are not yet supported", elem)
		}

		lines = append(lines, storeLine(depth, ir.Reloc{Symbol: sym, Offset: 4 * (i + 1)}, text))
	}

	return lines, nil
}

// storeLine creates the line storing an i32 constant at an address.
func storeLine(depth int, addr ir.Reloc, value string) *ir.Line {
	return ir.NewLine(
		depth,
		ir.Text("(i32.store (i32.const "),
		addr,
		ir.Text(fmt.Sprintf(") (i32.const %s))", value)),
	)
}

// symbolName returns the name of the nth memory symbol for the named type.
func symbolName(typeName string, n int) string {
	return fmt.Sprintf("type-%s-%d", typeName, n)
}
