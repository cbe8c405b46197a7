package reloc

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"plang/ir"
	"plang/report"
)

func TestResolveTextOrder(t *testing.T) {
	got := ResolveText("a ~x~ b ~y~ c ~z~ d ~x~")
	want := "a 0 b 4 c 8 d 0"

	if got != want {
		t.Errorf("ResolveText = %q, want %q", got, want)
	}
}

func TestResolveTextOffsets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"offset before base", "~s+8~ ~s~ ~s+4~", "8 0 4"},
		{"offset after other symbol", "~a~ ~s~ ~s+4~ ~s+8~", "0 4 8 12"},
		{"no placeholders", "(i32.const 5)", "(i32.const 5)"},
		{"adjacent", "~a~~b~", "04"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ResolveText(test.text); got != test.want {
				t.Errorf("ResolveText(%q) = %q, want %q", test.text, got, test.want)
			}
		})
	}
}

func TestResolveTextDeterministic(t *testing.T) {
	text := "~q~ ~r+4~ ~q+12~ ~s~ ~r~"

	first := ResolveText(text)
	for i := 0; i < 10; i++ {
		if got := ResolveText(text); got != first {
			t.Fatalf("run %d produced %q, first run produced %q", i, got, first)
		}
	}
}

func TestResolveTextMalformed(t *testing.T) {
	tests := []string{
		"~s+x~",
		"~s+-4~",
		"~+4~",
		"~open",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			err := func() (err error) {
				defer report.CatchICE(&err)
				ResolveText(text)
				return nil
			}()

			var ice *report.InternalError
			if !errors.As(err, &ice) {
				t.Errorf("ResolveText(%q) did not raise an internal error", text)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func stringModule() *ir.Module {
	main := &ir.Func{
		Name:   "main",
		Export: "_start",
		Body: []*ir.Line{
			ir.NewLine(0, ir.Text("(i32.store (i32.const "), ir.Reloc{Symbol: "str-0"}, ir.Text(") (i32.const 1))")),
			ir.NewLine(0, ir.Text("(i32.store (i32.const "), ir.Reloc{Symbol: "str-0", Offset: 4}, ir.Text(") (i32.const 104))")),
			ir.NewLine(0, ir.Text("(i32.const "), ir.Reloc{Symbol: "str-1"}, ir.Text(")")),
			ir.NewLine(0, ir.Text("(i32.const "), ir.Reloc{Symbol: "str-0"}, ir.Text(")")),
		},
	}

	return &ir.Module{Fields: []ir.Field{main}, Memory: true}
}

func TestLinkMatchesResolveText(t *testing.T) {
	mod := stringModule()

	linked := Link(mod)
	resolved := ResolveText(mod.PlaceholderText())

	if linked != resolved {
		t.Errorf("linked and resolved text differ:\n%s", strings.Join(pretty.Diff(linked, resolved), "\n"))
	}
}

func TestLinkTable(t *testing.T) {
	text, table := LinkTable(stringModule())

	if diff := pretty.Diff([]string{"str-0", "str-1"}, table.Names()); len(diff) > 0 {
		t.Errorf("table names differ:\n%s", strings.Join(diff, "\n"))
	}

	if addr, ok := table.Lookup("str-1"); !ok || addr != 4 {
		t.Errorf("Lookup(str-1) = %d, %v; want 4, true", addr, ok)
	}

	if _, ok := table.Lookup("str-2"); ok {
		t.Error("Lookup(str-2) found an unreferenced symbol")
	}

	for _, want := range []string{
		"(i32.store (i32.const 0) (i32.const 1))",
		"(i32.store (i32.const 4) (i32.const 104))",
		"(i32.const 4)",
		"(i32.const 0)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("linked text is missing %q:\n%s", want, text)
		}
	}

	if strings.Contains(text, ir.PlaceholderDelim) {
		t.Errorf("linked text still contains placeholders:\n%s", text)
	}
}
