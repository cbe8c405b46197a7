package syntax

import (
	"fmt"

	"plang/ast"
	"plang/common"
	"plang/depm"
	"plang/report"
)

// file = {section}
func (p *Parser) parseFile() ([]ast.Node, error) {
	var nodes []ast.Node

	for !p.got(TOK_EOF) {
		node, err := p.parseSection()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

// section = func_def | struct_def | import_stmt | expr_stmt | if_expr
func (p *Parser) parseSection() (ast.Node, error) {
	switch p.tok.Kind {
	case TOK_FN:
		return p.parseFuncDef()
	case TOK_STRUCT:
		return p.parseStructDef()
	case TOK_IMPORT:
		return p.parseImportStmt()
	case TOK_IDENT:
		return p.parseExprStmt()
	case TOK_IF:
		return p.parseIfExpr()
	default:
		return nil, p.reject()
	}
}

// block = '{' {section} '}'
func (p *Parser) parseBlock() ([]ast.Node, error) {
	if err := p.assertAndNext(TOK_LBRACE); err != nil {
		return nil, err
	}

	p.scopes.push()
	defer p.scopes.pop()

	var nodes []ast.Node
	for !p.got(TOK_RBRACE) {
		if p.got(TOK_EOF) {
			return nil, p.errorf("expected `}` before end of file")
		}

		node, err := p.parseSection()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
	}

	p.next()
	return nodes, nil
}

// -----------------------------------------------------------------------------

// func_def = 'fn' 'IDENTIFIER' '(' [args_decl] ')' [':' 'IDENTIFIER'] block
func (p *Parser) parseFuncDef() (ast.Node, error) {
	line := p.line

	if err := p.want(TOK_IDENT); err != nil {
		return nil, err
	}

	name := p.tok.Value

	if err := p.want(TOK_LPAREN); err != nil {
		return nil, err
	}

	p.next()

	// the arguments get their own frame enclosing the body's frame
	p.scopes.push()
	defer p.scopes.pop()

	var args []ast.Arg
	if !p.got(TOK_RPAREN) {
		_args, err := p.parseArgsDecl()
		if err != nil {
			return nil, err
		}

		args = _args
	}

	if err := p.assertAndNext(TOK_RPAREN); err != nil {
		return nil, err
	}

	// the return type is not checked against the type table
	returnType := common.NoReturnType
	if p.got(TOK_COLON) {
		if err := p.want(TOK_IDENT); err != nil {
			return nil, err
		}

		returnType = p.tok.Value
		p.next()
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	// functions are only callable after their definition
	p.funcs[name] = struct{}{}

	return &ast.FuncDef{
		ASTBase:    ast.NewASTBaseOn(line),
		Name:       name,
		Args:       args,
		ReturnType: returnType,
		Body:       body,
	}, nil
}

// args_decl = arg_decl {',' arg_decl}
// arg_decl = 'IDENTIFIER' ':' 'IDENTIFIER'
func (p *Parser) parseArgsDecl() ([]ast.Arg, error) {
	var args []ast.Arg

	for {
		if err := p.assert(TOK_IDENT); err != nil {
			return nil, err
		}

		argName := p.tok.Value

		if err := p.want(TOK_COLON); err != nil {
			return nil, err
		}

		if err := p.want(TOK_IDENT); err != nil {
			return nil, err
		}

		argType := p.tok.Value
		if !p.isType(argType) {
			return nil, p.errorf("unknown type `%s`", argType)
		}

		if err := p.declareVar(argName); err != nil {
			return nil, err
		}

		args = append(args, ast.Arg{Name: argName, Type: argType})

		p.next()
		if !p.got(TOK_COMMA) {
			return args, nil
		}

		p.next()
	}
}

// -----------------------------------------------------------------------------

// struct_def = 'struct' 'IDENTIFIER' '{' {field_decl [',']} '}'
// field_decl = 'IDENTIFIER' ':' 'IDENTIFIER'
func (p *Parser) parseStructDef() (ast.Node, error) {
	line := p.line

	if err := p.want(TOK_IDENT); err != nil {
		return nil, err
	}

	name := p.tok.Value
	if p.isType(name) {
		return nil, p.errorf("type `%s` declared multiple times", name)
	}

	if err := p.want(TOK_LBRACE); err != nil {
		return nil, err
	}

	p.next()

	// the fields are consumed but not laid out
	for !p.got(TOK_RBRACE) {
		if err := p.assert(TOK_IDENT); err != nil {
			return nil, err
		}

		if err := p.want(TOK_COLON); err != nil {
			return nil, err
		}

		if err := p.want(TOK_IDENT); err != nil {
			return nil, err
		}

		p.next()
		if p.got(TOK_COMMA) {
			p.next()
		}
	}

	p.next()

	p.types[name] = struct{}{}

	return &ast.StructDef{
		ASTBase: ast.NewASTBaseOn(line),
		Name:    name,
	}, nil
}

// -----------------------------------------------------------------------------

// import_stmt = 'import' 'STRINGLIT' ';'
func (p *Parser) parseImportStmt() (ast.Node, error) {
	line := p.line

	if err := p.want(TOK_STRINGLIT); err != nil {
		return nil, err
	}

	path := p.tok.Value

	if err := p.want(TOK_SEMI); err != nil {
		return nil, err
	}

	fm, err := p.importer.Import(path)
	if err != nil {
		return nil, &report.ParseError{
			Message: fmt.Sprintf("failed to import `%s`: %s", path, err),
			Line:    line,
			Err:     err,
		}
	}

	var funcs []string
	seen := make(map[string]struct{})
	for _, export := range fm.Exports {
		if export.Kind != depm.KindFunction {
			return nil, report.Raise(
				line,
				"import `%s` exports `%s` of unsupported kind `%s`",
				path,
				export.Name,
				export.Kind,
			)
		}

		// a function may be exported under its own name more than once
		if _, ok := seen[export.Name]; !ok {
			seen[export.Name] = struct{}{}
			funcs = append(funcs, export.Name)
		}

		p.funcs[export.Name] = struct{}{}
	}

	p.next()

	return &ast.ImportStmt{
		ASTBase:   ast.NewASTBaseOn(line),
		Path:      path,
		Functions: funcs,
		Forms:     fm.Forms,
	}, nil
}
