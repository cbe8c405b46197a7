package llgen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"plang/ast"
	"plang/common"
	"plang/report"
)

// genExpr generates an expression.  It returns nil if the expression produces
// no value.
func (g *Generator) genExpr(expr ast.Expr) (value.Value, error) {
	switch v := expr.(type) {
	case *ast.ValueExpr:
		return g.genValue(v.Value)
	case *ast.BinaryOp:
		return g.genBinaryOp(v)
	case *ast.IfExpr:
		return nil, g.genIfExpr(v)
	case *ast.UnaryOp:
		return nil, report.Unsupported("unary operators are not yet supported")
	default:
		report.ReportICE("LLVM generation for expression %T not implemented", expr)
		return nil, nil
	}
}

// comparisonPreds maps the binary operators that can be lowered to the integer
// comparisons implementing them.
var comparisonPreds = map[ast.Oper]enum.IPred{
	ast.OpEq: enum.IPredEQ,
	ast.OpGt: enum.IPredUGT,
}

// genBinaryOp generates a binary operator application.  Comparisons are
// extended back to `i32`.
func (g *Generator) genBinaryOp(bop *ast.BinaryOp) (value.Value, error) {
	pred, ok := comparisonPreds[bop.Op]
	if !ok {
		return nil, report.Unsupported("operator `%s` is not yet supported", bop.Op)
	}

	lhs, err := g.genOperand(bop.LHS)
	if err != nil {
		return nil, err
	}

	rhs, err := g.genOperand(bop.RHS)
	if err != nil {
		return nil, err
	}

	cmp := g.block.NewICmp(pred, lhs, rhs)
	return g.block.NewZExt(cmp, types.I32), nil
}

// genOperand generates an expression whose value is used.
func (g *Generator) genOperand(expr ast.Expr) (value.Value, error) {
	val, err := g.genExpr(expr)
	if err != nil {
		return nil, err
	}

	if val == nil || val.Type().Equal(types.Void) {
		return nil, report.Unsupported("expression on line %d produces no value", expr.Line())
	}

	return val, nil
}

// -----------------------------------------------------------------------------

// genValue generates a value.
func (g *Generator) genValue(val ast.Value) (value.Value, error) {
	switch v := val.(type) {
	case ast.I32:
		return constant.NewInt(types.I32, int64(v)), nil
	case ast.Bool:
		if v {
			return constant.NewInt(types.I32, 1), nil
		}

		return constant.NewInt(types.I32, 0), nil
	case ast.F32:
		return nil, report.Unsupported("float values are not supported by the LLVM backend")
	case ast.Var:
		param, ok := g.params[v.Name]
		if !ok {
			return nil, report.Unsupported("variable `%s` is not a parameter of function `%s`", v.Name, g.enclosingFunc.Name())
		}

		return param, nil
	case *ast.FnCall:
		return g.genFnCall(v)
	case *ast.TypeConstr:
		return g.genTypeConstr(v)
	default:
		report.ReportICE("LLVM generation for value %T not implemented", val)
		return nil, nil
	}
}

// genFnCall generates a function call.
func (g *Generator) genFnCall(call *ast.FnCall) (value.Value, error) {
	callee, ok := g.funcs[call.Name]
	if !ok {
		return nil, report.Unsupported("function `%s` is not defined in this module", call.Name)
	}

	if len(call.Args) != len(callee.Params) {
		return nil, report.Unsupported(
			"function `%s` takes %d arguments but %d were given",
			call.Name,
			len(callee.Params),
			len(call.Args),
		)
	}

	args := make([]value.Value, len(call.Args))
	for i, arg := range call.Args {
		llArg, err := g.genOperand(arg)
		if err != nil {
			return nil, err
		}

		args[i] = llArg
	}

	return g.block.NewCall(callee, args...), nil
}

// genTypeConstr generates the construction of a value in a global.  The value
// is the address of the global as an `i32`.
func (g *Generator) genTypeConstr(tc *ast.TypeConstr) (value.Value, error) {
	if tc.Name != common.StringTypeName {
		return nil, report.Unsupported("construction of type `%s` is not yet supported", tc.Name)
	}

	arr, ok := tc.Fields["chars"].(ast.ConstArray)
	if !ok || len(tc.Fields) != 1 {
		return nil, report.Unsupported("construction of `%s` must only initialize `chars`", tc.Name)
	}

	// one cell for the length and one for each element
	arrType := types.NewArray(uint64(len(arr)+1), types.I32)
	global := g.mod.NewGlobalDef(globalName(tc.Name, g.globalCounter), constant.NewZeroInitializer(arrType))
	g.globalCounter++

	g.storeCell(arrType, global, 0, int64(len(arr)))
	for i, elem := range arr {
		switch v := elem.(type) {
		case ast.I32:
			g.storeCell(arrType, global, i+1, int64(v))
		case ast.Bool:
			if v {
				g.storeCell(arrType, global, i+1, 1)
			} else {
				g.storeCell(arrType, global, i+1, 0)
			}
		default:
			return nil, report.Unsupported("array elements of kind %T are not yet supported", elem)
		}
	}

	return g.block.NewPtrToInt(global, types.I32), nil
}

// storeCell stores an `i32` constant in the cell of an array global.
func (g *Generator) storeCell(arrType *types.ArrayType, global value.Value, ndx int, x int64) {
	cellPtr := g.block.NewGetElementPtr(
		arrType,
		global,
		constant.NewInt(types.I32, 0),
		constant.NewInt(types.I32, int64(ndx)),
	)

	g.block.NewStore(constant.NewInt(types.I32, x), cellPtr)
}
