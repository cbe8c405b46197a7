package syntax

import (
	"strconv"

	"plang/ast"
	"plang/common"
)

// expr_stmt = expr [';']
func (p *Parser) parseExprStmt() (ast.Node, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.got(TOK_SEMI) {
		p.next()
	}

	return expr, nil
}

// binOps maps the binary operator tokens to their operators.
var binOps = map[int]ast.Oper{
	TOK_PLUS:  ast.OpAdd,
	TOK_MINUS: ast.OpSub,
	TOK_STAR:  ast.OpMul,
	TOK_DIV:   ast.OpDiv,
	TOK_POW:   ast.OpPow,
	TOK_EQ:    ast.OpEq,
	TOK_NEQ:   ast.OpNeq,
	TOK_GT:    ast.OpGt,
	TOK_LT:    ast.OpLt,
	TOK_GTEQ:  ast.OpGtEq,
	TOK_LTEQ:  ast.OpLtEq,
}

// expr = value [binop value]
//
// There is no operator precedence: an expression holds at most one operator.
func (p *Parser) parseExpr() (ast.Expr, error) {
	line := p.line

	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	lhsExpr := &ast.ValueExpr{ASTBase: ast.NewASTBaseOn(line), Value: lhs}

	op, ok := binOps[p.tok.Kind]
	if !ok {
		return lhsExpr, nil
	}

	p.next()

	rhsLine := p.line
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &ast.BinaryOp{
		ASTBase: ast.NewASTBaseOn(line),
		LHS:     lhsExpr,
		Op:      op,
		RHS:     &ast.ValueExpr{ASTBase: ast.NewASTBaseOn(rhsLine), Value: rhs},
	}, nil
}

// value = 'INTLIT' | 'FLOATLIT' | 'true' | 'false' | 'STRINGLIT'
//	| 'IDENTIFIER' | fn_call
func (p *Parser) parseValue() (ast.Value, error) {
	switch p.tok.Kind {
	case TOK_INTLIT:
		n, err := strconv.ParseInt(p.tok.Value, 10, 32)
		if err != nil {
			return nil, p.errorf("integer literal `%s` is out of range", p.tok.Value)
		}

		p.next()
		return ast.I32(n), nil
	case TOK_FLOATLIT:
		x, err := strconv.ParseFloat(p.tok.Value, 32)
		if err != nil {
			return nil, p.errorf("float literal `%s` is out of range", p.tok.Value)
		}

		p.next()
		return ast.F32(x), nil
	case TOK_TRUE, TOK_FALSE:
		b := p.got(TOK_TRUE)
		p.next()
		return ast.Bool(b), nil
	case TOK_STRINGLIT:
		return p.parseStringLit()
	case TOK_IDENT:
		name := p.tok.Value

		if p.isVar(name) {
			p.next()
			return ast.Var{Name: name}, nil
		} else if p.isFunc(name) && p.peekIs(TOK_LPAREN) {
			return p.parseFnCall()
		}

		return nil, p.errorf("unknown identifier `%s`", name)
	default:
		return nil, p.reject()
	}
}

// parseStringLit lowers a string literal into the construction of a `String`
// holding the literal's codepoints.  A `\xNN` escape is the codepoint NN.
func (p *Parser) parseStringLit() (ast.Value, error) {
	chars := ast.ConstArray{}

	for s := p.tok.Value; len(s) > 0; {
		c, _, tail, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			return nil, p.errorf("malformed string literal %s", p.tok)
		}

		chars = append(chars, ast.I32(c))
		s = tail
	}

	p.next()

	return &ast.TypeConstr{
		Name:   common.StringTypeName,
		Fields: map[string]ast.Constant{"chars": chars},
	}, nil
}

// fn_call = 'IDENTIFIER' '(' [expr {',' expr}] ')'
func (p *Parser) parseFnCall() (ast.Value, error) {
	name := p.tok.Value

	if err := p.want(TOK_LPAREN); err != nil {
		return nil, err
	}

	p.next()

	var args []ast.Expr
	for !p.got(TOK_RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.got(TOK_COMMA) {
			p.next()

			// trailing commas are not allowed
			if p.got(TOK_RPAREN) {
				return nil, p.reject()
			}
		} else if !p.got(TOK_RPAREN) {
			return nil, p.reject()
		}
	}

	p.next()

	return &ast.FnCall{Name: name, Args: args}, nil
}

// -----------------------------------------------------------------------------

// if_expr = 'if' expr block {'else' 'if' expr block} ['else' block]
func (p *Parser) parseIfExpr() (ast.Node, error) {
	line := p.line
	p.next()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	ifExpr := &ast.IfExpr{
		ASTBase: ast.NewASTBaseOn(line),
		Cond:    cond,
		Block:   block,
	}

	for p.got(TOK_ELSE) && p.peekIs(TOK_IF) {
		p.next()
		p.next()

		elifCond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		elifBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		ifExpr.ElseIfs = append(ifExpr.ElseIfs, ast.ElseIf{Cond: elifCond, Block: elifBlock})
	}

	if p.got(TOK_ELSE) {
		p.next()

		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		ifExpr.Else = elseBlock
	}

	return ifExpr, nil
}
