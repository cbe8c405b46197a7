package syntax

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"plang/ast"
	"plang/depm"
	"plang/report"
)

// fakeImporter serves foreign modules from memory.
type fakeImporter map[string]*depm.ForeignModule

func (fi fakeImporter) Import(path string) (*depm.ForeignModule, error) {
	if fm, ok := fi[path]; ok {
		return fm, nil
	}

	return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
}

func mustParse(t *testing.T, src string, imp depm.Importer) []ast.Node {
	t.Helper()

	nodes, err := ParseSource(strings.NewReader(src), imp)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}

	return nodes
}

func parseError(t *testing.T, src string, imp depm.Importer) *report.ParseError {
	t.Helper()

	_, err := ParseSource(strings.NewReader(src), imp)

	var pe *report.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("ParseSource(%q) error = %v, want a parse error", src, err)
	}

	return pe
}

func valueOn(line int, v ast.Value) *ast.ValueExpr {
	return &ast.ValueExpr{ASTBase: ast.NewASTBaseOn(line), Value: v}
}

// -----------------------------------------------------------------------------

func TestParseFuncDef(t *testing.T) {
	nodes := mustParse(t, "fn add(a: i32, b: i32): i32 {\n\ta + b\n}", nil)

	want := []ast.Node{
		&ast.FuncDef{
			ASTBase:    ast.NewASTBaseOn(1),
			Name:       "add",
			Args:       []ast.Arg{{Name: "a", Type: "i32"}, {Name: "b", Type: "i32"}},
			ReturnType: "i32",
			Body: []ast.Node{
				&ast.BinaryOp{
					ASTBase: ast.NewASTBaseOn(2),
					LHS:     valueOn(2, ast.Var{Name: "a"}),
					Op:      ast.OpAdd,
					RHS:     valueOn(2, ast.Var{Name: "b"}),
				},
			},
		},
	}

	if diff := pretty.Diff(want, nodes); len(diff) > 0 {
		t.Errorf("tree differs:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseDefaultReturnType(t *testing.T) {
	nodes := mustParse(t, "fn main() { }", nil)

	fd := nodes[0].(*ast.FuncDef)
	if fd.ReturnType != "()" {
		t.Errorf("return type = %q, want %q", fd.ReturnType, "()")
	}

	if len(fd.Args) != 0 || len(fd.Body) != 0 {
		t.Errorf("expected no arguments and an empty body, got %# v", pretty.Formatter(fd))
	}
}

func TestParseCall(t *testing.T) {
	nodes := mustParse(t, "fn add(a: i32, b: i32): i32 { a }\nfn main() { add(1, 2.5); }", nil)

	want := &ast.FnCall{
		Name: "add",
		Args: []ast.Expr{valueOn(2, ast.I32(1)), valueOn(2, ast.F32(2.5))},
	}

	main := nodes[1].(*ast.FuncDef)
	got := main.Body[0].(*ast.ValueExpr).Value
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Errorf("call differs:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseStringLiteral(t *testing.T) {
	nodes := mustParse(t, "fn print(s: i32) { }\nprint(\"a\\tb\")", nil)

	want := &ast.TypeConstr{
		Name:   "String",
		Fields: map[string]ast.Constant{"chars": ast.ConstArray{ast.I32('a'), ast.I32('\t'), ast.I32('b')}},
	}

	call := nodes[1].(*ast.ValueExpr).Value.(*ast.FnCall)
	got := call.Args[0].(*ast.ValueExpr).Value
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Errorf("string construction differs:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		lit  string
		want ast.ConstArray
	}{
		{"byte escapes are codepoints", `"\x41\x80\xff"`, ast.ConstArray{ast.I32(0x41), ast.I32(0x80), ast.I32(0xff)}},
		{"unicode escapes", `"\u00e9\U0001F600"`, ast.ConstArray{ast.I32(0xe9), ast.I32(0x1F600)}},
		{"non-ascii source", `"é"`, ast.ConstArray{ast.I32(0xe9)}},
		{"empty", `""`, ast.ConstArray{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			nodes := mustParse(t, "fn print(s: i32) { }\nprint("+test.lit+")", nil)

			call := nodes[1].(*ast.ValueExpr).Value.(*ast.FnCall)
			tc := call.Args[0].(*ast.ValueExpr).Value.(*ast.TypeConstr)
			if diff := pretty.Diff(test.want, tc.Fields["chars"]); len(diff) > 0 {
				t.Errorf("codepoints differ:\n%s", strings.Join(diff, "\n"))
			}
		})
	}
}

func TestParseExprStatements(t *testing.T) {
	nodes := mustParse(t, "fn f(x: i32) { x; x == 1\n x > 2 }", nil)

	body := nodes[0].(*ast.FuncDef).Body
	if len(body) != 3 {
		t.Fatalf("body has %d statements, want 3", len(body))
	}

	if op := body[1].(*ast.BinaryOp).Op; op != ast.OpEq {
		t.Errorf("second operator = %s, want ==", op)
	}

	if op := body[2].(*ast.BinaryOp).Op; op != ast.OpGt {
		t.Errorf("third operator = %s, want >", op)
	}
}

func TestParseIfExpr(t *testing.T) {
	t.Run("else if chain", func(t *testing.T) {
		nodes := mustParse(t, "fn f(x: i32) {\n if x == 1 { x } else if x > 1 { x } else if false { } else { x }\n}", nil)

		ifExpr := nodes[0].(*ast.FuncDef).Body[0].(*ast.IfExpr)
		if len(ifExpr.ElseIfs) != 2 {
			t.Fatalf("got %d else ifs, want 2", len(ifExpr.ElseIfs))
		}

		if ifExpr.Line() != 2 {
			t.Errorf("if on line %d, want 2", ifExpr.Line())
		}

		if len(ifExpr.Else) != 1 {
			t.Errorf("else block has %d nodes, want 1", len(ifExpr.Else))
		}
	})

	t.Run("no else if", func(t *testing.T) {
		nodes := mustParse(t, "if true { } else { }", nil)

		ifExpr := nodes[0].(*ast.IfExpr)
		if ifExpr.ElseIfs != nil {
			t.Errorf("ElseIfs = %v, want nil", ifExpr.ElseIfs)
		}
	})
}

func TestParseStructDef(t *testing.T) {
	nodes := mustParse(t, "struct Point {\n x: i32,\n y: i32\n}\nfn f(p: Point) { p }", nil)

	sd := nodes[0].(*ast.StructDef)
	if sd.Name != "Point" {
		t.Errorf("unexpected struct definition %# v", pretty.Formatter(sd))
	}

	if fd := nodes[1].(*ast.FuncDef); fd.Args[0].Type != "Point" {
		t.Errorf("argument type = %q, want Point", fd.Args[0].Type)
	}
}

func TestParseScoping(t *testing.T) {
	// arguments of an inner function shadow those of the outer one
	mustParse(t, "fn outer(x: i32) {\n fn inner(x: i32) { x }\n x\n}", nil)

	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"argument out of scope", "fn f(x: i32) { x }\nx", "unknown identifier `x`", 2},
		{"call before definition", "fn main() { f() }\nfn f() { }", "unknown identifier `f`", 1},
		{"recursive call", "fn f() {\n f()\n}", "unknown identifier `f`", 2},
		{"function without call", "fn f() { }\nf", "unknown identifier `f`", 2},
		{"duplicate argument", "fn f(x: i32, x: i32) { }", "variable `x` declared multiple times", 1},
		{"unknown type", "\nfn f(x: Foo) { }", "unknown type `Foo`", 2},
		{"duplicate struct", "struct A { }\nstruct A { }", "type `A` declared multiple times", 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pe := parseError(t, test.src, nil)
			if pe.Message != test.msg || pe.Line != test.line {
				t.Errorf("got %q, want %q on line %d", pe.Error(), test.msg, test.line)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unexpected section", "}", "unexpected token `}` on line 1"},
		{"keyword section", "\n\nlet", "unexpected token `let` on line 3"},
		{"truncated function", "fn", "unexpected end of file on line 1"},
		{"unclosed block", "fn f() {\n", "expected `}` before end of file on line 2"},
		{"trailing comma", "fn f(a: i32) { }\nf(1,)", "unexpected token `)` on line 2"},
		{"missing comma", "fn f(a: i32, b: i32) { }\nf(1 2)", "unexpected token `2` on line 2"},
		{"out of range", "fn f(a: i32) { }\nf(4294967296)", "integer literal `4294967296` is out of range on line 2"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pe := parseError(t, test.src, nil)
			if pe.Error() != test.want {
				t.Errorf("error = %q, want %q", pe.Error(), test.want)
			}
		})
	}
}

func TestParseImport(t *testing.T) {
	imp := fakeImporter{
		"std.wat": {
			Path:    "std.wat",
			Exports: []depm.Export{{Name: "print", Kind: depm.KindFunction}, {Name: "print", Kind: depm.KindFunction}},
			Forms:   []string{"(func $print (param $x i32))"},
		},
		"mem.wat": {
			Path:    "mem.wat",
			Exports: []depm.Export{{Name: "mem", Kind: depm.KindMemory}},
		},
	}

	t.Run("functions are callable", func(t *testing.T) {
		nodes := mustParse(t, "import \"std.wat\";\nprint(1)", imp)

		is := nodes[0].(*ast.ImportStmt)
		if diff := pretty.Diff([]string{"print"}, is.Functions); len(diff) > 0 {
			t.Errorf("imported functions differ:\n%s", strings.Join(diff, "\n"))
		}

		if len(is.Forms) != 1 {
			t.Errorf("got %d forms, want 1", len(is.Forms))
		}

		if _, ok := nodes[1].(*ast.ValueExpr).Value.(*ast.FnCall); !ok {
			t.Errorf("expected a call after the import")
		}
	})

	t.Run("non-function export", func(t *testing.T) {
		pe := parseError(t, "import \"mem.wat\";", imp)
		if !strings.Contains(pe.Message, "`mem`") || !strings.Contains(pe.Message, "memory") {
			t.Errorf("unexpected message %q", pe.Message)
		}
	})

	t.Run("missing module", func(t *testing.T) {
		pe := parseError(t, "\nimport \"nope.wat\";", imp)
		if !errors.Is(pe, fs.ErrNotExist) {
			t.Errorf("error %v does not wrap fs.ErrNotExist", pe)
		}

		if pe.Line != 2 {
			t.Errorf("error line = %d, want 2", pe.Line)
		}
	})

	t.Run("missing terminator", func(t *testing.T) {
		pe := parseError(t, "import \"std.wat\"\nprint(1)", imp)
		if pe.Message != "unexpected token `print`" {
			t.Errorf("unexpected message %q", pe.Message)
		}
	})
}

func TestScopeStack(t *testing.T) {
	s := newScopeStack()

	s.push()
	if !s.declare("x") {
		t.Fatal("first declaration of x failed")
	}

	if s.declare("x") {
		t.Error("redeclaration of x in the same frame succeeded")
	}

	s.push()
	if !s.declare("x") {
		t.Error("shadowing declaration of x failed")
	}

	if depth, ok := s.lookup("x"); !ok || depth != 2 {
		t.Errorf("lookup(x) = %d, %v; want 2, true", depth, ok)
	}

	s.pop()
	if depth, ok := s.lookup("x"); !ok || depth != 1 {
		t.Errorf("lookup(x) after pop = %d, %v; want 1, true", depth, ok)
	}

	s.pop()
	if _, ok := s.lookup("x"); ok {
		t.Error("x still visible after its frame was popped")
	}

	// the file scope is never popped
	s.pop()
	if len(s.frames) != 1 {
		t.Errorf("got %d frames, want 1", len(s.frames))
	}
}
