package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"plang/ast"
	"plang/depm"
	"plang/ir"
	"plang/reloc"
	"plang/report"
	"plang/syntax"
)

func generate(t *testing.T, src string) *ir.Module {
	t.Helper()

	tree, err := syntax.ParseSource(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}

	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate(%q): %v", src, err)
	}

	return mod
}

func generateError(t *testing.T, src string) *report.GenError {
	t.Helper()

	tree, err := syntax.ParseSource(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}

	_, err = Generate(tree)

	var ge *report.GenError
	if !errors.As(err, &ge) {
		t.Fatalf("Generate(%q) error = %v, want a generation error", src, err)
	}

	return ge
}

// findFunc returns the function named name in mod.
func findFunc(t *testing.T, mod *ir.Module, name string) *ir.Func {
	t.Helper()

	for _, field := range mod.Fields {
		if fn, ok := field.(*ir.Func); ok && fn.Name == name {
			return fn
		}
	}

	t.Fatalf("module has no function named `%s`", name)
	return nil
}

// bodyText renders the lines of a function body with their placeholders and
// without indentation.
func bodyText(fn *ir.Func) []string {
	var lines []string
	for _, line := range fn.Body {
		sb := &strings.Builder{}
		for _, seg := range line.Segs {
			switch v := seg.(type) {
			case ir.Text:
				sb.WriteString(string(v))
			case ir.Reloc:
				sb.WriteString(v.Placeholder())
			}
		}

		lines = append(lines, sb.String())
	}

	return lines
}

func expectBody(t *testing.T, fn *ir.Func, want []string) {
	t.Helper()

	if diff := pretty.Diff(want, bodyText(fn)); len(diff) > 0 {
		t.Errorf("body of `%s` differs:\n%s", fn.Name, strings.Join(diff, "\n"))
	}
}

// -----------------------------------------------------------------------------

func TestGenerateEmptyMain(t *testing.T) {
	mod := generate(t, "fn main() { }")

	want := &ir.Module{
		Fields: []ir.Field{&ir.Func{Name: "main", Export: "_start"}},
	}

	if diff := pretty.Diff(want, mod); len(diff) > 0 {
		t.Errorf("module differs:\n%s", strings.Join(diff, "\n"))
	}

	text := reloc.Link(mod)
	wantText := "(module\n    (func $main (export \"_start\")\n    )\n)\n"
	if text != wantText {
		t.Errorf("linked text = %q, want %q", text, wantText)
	}
}

func TestGenerateSignature(t *testing.T) {
	mod := generate(t, "fn add(a: i32, b: i32): i32 { a }\nfn main() { add(1, 2) }")

	text := reloc.Link(mod)
	for _, want := range []string{
		"(func $add (param $a i32) (param $b i32) (result i32)\n",
		"(local.get $a)",
		"(call $add (i32.const 1) (i32.const 2))",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q:\n%s", want, text)
		}
	}

	if findFunc(t, mod, "add").Export != "" {
		t.Error("only main should be exported")
	}
}

func TestGenerateValues(t *testing.T) {
	mod := generate(t, "fn g(a: i32, b: i32, c: i32, d: i32, e: i32) { }\nfn f(x: i32) { g(x, 7, true, false, 2.5) }")

	expectBody(t, findFunc(t, mod, "f"), []string{
		"(call $g (local.get $x) (i32.const 7) (i32.const 1) (i32.const 0) (f32.const 2.5))",
	})
}

func TestGenerateBinaryOps(t *testing.T) {
	mod := generate(t, "fn f(x: i32) { x == 1\n x > 2 }")

	expectBody(t, findFunc(t, mod, "f"), []string{
		"(local.get $x)",
		"(i32.const 1)",
		"(i32.eq)",
		"(local.get $x)",
		"(i32.const 2)",
		"(i32.gt_u)",
	})

	for _, op := range []string{"+", "-", "*", "/", "^", "!=", "<", ">=", "<="} {
		t.Run(op, func(t *testing.T) {
			ge := generateError(t, "fn f(x: i32) { x "+op+" 1 }")

			want := "operator `" + op + "` is not yet supported"
			if ge.Message != want {
				t.Errorf("message = %q, want %q", ge.Message, want)
			}
		})
	}
}

func TestGenerateCallHoisting(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "compound first argument",
			src:  "fn g(a: i32, b: i32) { }\nfn f(x: i32) { g(x == 1, 3) }",
			want: []string{
				"(local.get $x)",
				"(i32.const 1)",
				"(call $g (i32.eq) (i32.const 3))",
			},
		},
		{
			name: "compound second argument",
			src:  "fn g(a: i32, b: i32) { }\nfn f(x: i32, y: i32) { g(1, x == y) }",
			want: []string{
				"(i32.const 1)",
				"(local.get $x)",
				"(local.get $y)",
				"(i32.eq)",
				"(call $g)",
			},
		},
		{
			name: "string second argument",
			src:  "fn g(a: i32, b: i32) { }\nfn f(x: i32) { g(x, \"a\") }",
			want: []string{
				"(local.get $x)",
				"(i32.store (i32.const ~type-String-0~) (i32.const 1))",
				"(i32.store (i32.const ~type-String-0+4~) (i32.const 97))",
				"(i32.const ~type-String-0~)",
				"(call $g)",
			},
		},
		{
			name: "simple arguments",
			src:  "fn g(a: i32, b: i32) { }\nfn f(x: i32) { g(x, 2) }",
			want: []string{"(call $g (local.get $x) (i32.const 2))"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expectBody(t, findFunc(t, generate(t, test.src), "f"), test.want)
		})
	}
}

func TestGenerateStringLayout(t *testing.T) {
	mod := generate(t, "fn print(s: i32) { }\nfn main() { print(\"ab\") }")

	main := findFunc(t, mod, "main")
	expectBody(t, main, []string{
		"(i32.store (i32.const ~type-String-0~) (i32.const 2))",
		"(i32.store (i32.const ~type-String-0+4~) (i32.const 97))",
		"(i32.store (i32.const ~type-String-0+8~) (i32.const 98))",
		"(call $print (i32.const ~type-String-0~))",
	})

	if !mod.Memory {
		t.Error("module with a string construction declares no memory")
	}

	text := reloc.Link(mod)
	for _, want := range []string{
		"(i32.store (i32.const 0) (i32.const 2))",
		"(i32.store (i32.const 4) (i32.const 97))",
		"(i32.store (i32.const 8) (i32.const 98))",
		"(call $print (i32.const 0))",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("linked output is missing %q:\n%s", want, text)
		}
	}

	if text != reloc.ResolveText(mod.PlaceholderText()) {
		t.Error("linking and resolving the placeholder text disagree")
	}
}

func TestGenerateDistinctStrings(t *testing.T) {
	mod := generate(t, "fn print(s: i32) { }\nfn main() { print(\"a\")\n print(\"b\") }")

	_, table := reloc.LinkTable(mod)
	if diff := pretty.Diff([]string{"type-String-0", "type-String-1"}, table.Names()); len(diff) > 0 {
		t.Errorf("symbols differ:\n%s", strings.Join(diff, "\n"))
	}
}

// -----------------------------------------------------------------------------

func TestGenerateIfFolding(t *testing.T) {
	src := "fn a() { }\nfn b() { }\nfn c() { }\n"

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"else if taken", "if false { a() } else if true { b() } else { c() }", []string{"(call $b)"}},
		{"first taken", "if true { a() } else { c() }", []string{"(call $a)"}},
		{"else taken", "if false { a() } else if false { b() } else { c() }", []string{"(call $c)"}},
		{"nothing taken", "if false { a() }", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mod := generate(t, src+"fn main() { "+test.body+" }")
			expectBody(t, findFunc(t, mod, "main"), test.want)
		})
	}
}

func TestGenerateIfTree(t *testing.T) {
	mod := generate(t, "fn a() { }\nfn b() { }\nfn f(x: i32) {\n if x == 1 { a() } else if x > 2 { b() } else { a() }\n}")

	expectBody(t, findFunc(t, mod, "f"), []string{
		"(local.get $x)",
		"(i32.const 1)",
		"(i32.eq)",
		"(if",
		"(then",
		"(call $a)",
		")",
		"(else",
		"(local.get $x)",
		"(i32.const 2)",
		"(i32.gt_u)",
		"(if",
		"(then",
		"(call $b)",
		")",
		"(else",
		"(call $a)",
		")",
		")",
		")",
		")",
	})

	depths := make([]int, len(findFunc(t, mod, "f").Body))
	for i, line := range findFunc(t, mod, "f").Body {
		depths[i] = line.Depth
	}

	want := []int{0, 0, 0, 0, 1, 2, 1, 1, 2, 2, 2, 2, 3, 4, 3, 3, 4, 3, 2, 1, 0}
	if diff := pretty.Diff(want, depths); len(diff) > 0 {
		t.Errorf("depths differ:\n%s", strings.Join(diff, "\n"))
	}
}

func TestGenerateIfWithoutElse(t *testing.T) {
	mod := generate(t, "fn a() { }\nfn f(x: i32) { if x == 1 { a() } }")

	expectBody(t, findFunc(t, mod, "f"), []string{
		"(local.get $x)",
		"(i32.const 1)",
		"(i32.eq)",
		"(if",
		"(then",
		"(call $a)",
		")",
		")",
	})
}

// -----------------------------------------------------------------------------

func TestGenerateStructAndImport(t *testing.T) {
	tree := []ast.Node{
		&ast.StructDef{ASTBase: ast.NewASTBaseOn(1), Name: "Point"},
		&ast.ImportStmt{
			ASTBase:   ast.NewASTBaseOn(2),
			Path:      "std.wat",
			Functions: []string{"print"},
			Forms:     []string{"(func $print (param $x i32))"},
		},
	}

	mod, err := Generate(tree)
	if err != nil {
		t.Fatal(err)
	}

	want := &ir.Module{
		Fields: []ir.Field{&ir.Splice{Path: "std.wat", Forms: []string{"(func $print (param $x i32))"}}},
	}

	if diff := pretty.Diff(want, mod); len(diff) > 0 {
		t.Errorf("module differs:\n%s", strings.Join(diff, "\n"))
	}
}

func TestGenerateImportedModule(t *testing.T) {
	fm, err := depm.ReadModule("std.wat", "(module\n  (func $print (param $x i32))\n)")
	if err != nil {
		t.Fatal(err)
	}

	tree, err := syntax.ParseSource(
		strings.NewReader("import \"std.wat\";\nfn main() { print(1) }"),
		importerFunc(func(string) (*depm.ForeignModule, error) { return fm, nil }),
	)
	if err != nil {
		t.Fatal(err)
	}

	mod, err := Generate(tree)
	if err != nil {
		t.Fatal(err)
	}

	text := reloc.Link(mod)
	if !strings.Contains(text, "    (func $print (param $x i32))\n") {
		t.Errorf("imported function was not spliced:\n%s", text)
	}

	if !strings.Contains(text, "(call $print (i32.const 1))") {
		t.Errorf("call to imported function is missing:\n%s", text)
	}
}

type importerFunc func(string) (*depm.ForeignModule, error)

func (f importerFunc) Import(path string) (*depm.ForeignModule, error) {
	return f(path)
}

func TestGenerateNestedFunc(t *testing.T) {
	mod := generate(t, "fn outer(x: i32) {\n fn inner(y: i32) { y }\n inner(x)\n}")

	if len(mod.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(mod.Fields))
	}

	expectBody(t, findFunc(t, mod, "inner"), []string{"(local.get $y)"})
	expectBody(t, findFunc(t, mod, "outer"), []string{"(call $inner (local.get $x))"})

	ge := generateError(t, "fn outer(x: i32) {\n fn inner() { x }\n}")
	if ge.Message != "variable `x` is not a parameter of function `inner`" {
		t.Errorf("unexpected message %q", ge.Message)
	}
}

func TestGenerateUnsupported(t *testing.T) {
	tests := []struct {
		name string
		tree []ast.Node
	}{
		{"enum", []ast.Node{&ast.EnumDef{}}},
		{"let", []ast.Node{&ast.LetStmt{Name: "x"}}},
		{"top-level expression", []ast.Node{&ast.ValueExpr{Value: ast.I32(1)}}},
		{"unary operator", []ast.Node{&ast.FuncDef{
			Name:       "f",
			ReturnType: "()",
			Body:       []ast.Node{&ast.UnaryOp{Operand: &ast.ValueExpr{Value: ast.I32(1)}}},
		}}},
		{"other construction", []ast.Node{&ast.FuncDef{
			Name:       "f",
			ReturnType: "()",
			Body: []ast.Node{&ast.ValueExpr{Value: &ast.TypeConstr{
				Name:   "Point",
				Fields: map[string]ast.Constant{},
			}}},
		}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Generate(test.tree)

			var ge *report.GenError
			if !errors.As(err, &ge) {
				t.Errorf("Generate error = %v, want a generation error", err)
			}
		})
	}
}
