package rename

import (
	"errors"
	"testing"

	"vsdiag/internal/semantic"
	"vsdiag/internal/testkit"
	"vsdiag/internal/tree"
)

var programSrc = []string{
	"class A\n{\n    public void Foo() { }\n    public void Bar() { }\n}",
	"class B\n{\n    void Run(A a)\n    {\n        a.Foo();\n        a.Foo();\n    }\n}",
	"class C { }",
}

func setup(t *testing.T) (tree.Program, *semantic.Table, semantic.Symbol) {
	t.Helper()
	prog := testkit.MustProgram(programSrc...)
	tbl := semantic.Bind(prog)
	decl := testkit.Idents(prog[0].Root(), "Foo")[0]
	sym, ok := tbl.ResolveSymbol(decl)
	if !ok {
		t.Fatalf("Foo did not resolve")
	}
	return prog, tbl, sym
}

func TestRenameAcrossFiles(t *testing.T) {
	prog, tbl, foo := setup(t)
	if n := len(Occurrences(prog, tbl, foo)); n != 3 {
		t.Fatalf("expected 3 occurrences, got %d", n)
	}

	out, err := Rename(prog, tbl, foo, "FooAsync")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	want := []string{
		"class A\n{\n    public void FooAsync() { }\n    public void Bar() { }\n}",
		"class B\n{\n    void Run(A a)\n    {\n        a.FooAsync();\n        a.FooAsync();\n    }\n}",
		"class C { }",
	}
	for i := range want {
		if got := out[i].Render(); got != want[i] {
			t.Errorf("file %d: got %q, want %q", i, got, want[i])
		}
		if prog[i].Render() != programSrc[i] {
			t.Errorf("file %d of the input program was modified", i)
		}
	}
	if out[2] != prog[2] {
		t.Fatalf("untouched file was rebuilt")
	}

	renamed := testkit.Idents(out[1].Root(), "FooAsync")
	if len(renamed) != 2 {
		t.Fatalf("expected 2 renamed uses, got %d", len(renamed))
	}
	for _, n := range renamed {
		sym, ok := tbl.ResolveSymbol(n)
		if !ok || !sym.Same(foo) || sym.Name != "FooAsync" {
			t.Fatalf("renamed use resolves to %v, %v", sym, ok)
		}
	}
	if _, ok := tbl.ResolveSymbol(testkit.Idents(prog[1].Root(), "Foo")[0]); ok {
		t.Fatalf("old identifier is still bound")
	}
	if vis := tbl.LookupVisible(foo, "FooAsync"); len(vis) != 0 {
		t.Fatalf("renamed symbol collides with itself: %v", vis)
	}
}

func TestRenameCollisionLeavesProgramUntouched(t *testing.T) {
	tests := []struct {
		name string
		to   string
	}{
		{"sibling member", "Bar"},
		{"enclosing type", "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, tbl, foo := setup(t)
			out, err := Rename(prog, tbl, foo, tt.to)
			var coll *NameCollisionError
			if !errors.As(err, &coll) || !errors.Is(err, ErrNameCollision) {
				t.Fatalf("expected a name collision, got %v", err)
			}
			if coll.Existing[0].Name != tt.to {
				t.Fatalf("collision reported against %v", coll.Existing[0])
			}
			if len(out) != len(prog) || &out[0] != &prog[0] {
				t.Fatalf("a refused rename must return the input program")
			}
			for i := range prog {
				if out[i] != prog[i] || out[i].Render() != programSrc[i] {
					t.Fatalf("file %d changed", i)
				}
			}
			if sym, _ := tbl.Symbol(foo.ID); sym.Name != "Foo" {
				t.Fatalf("symbol renamed to %q", sym.Name)
			}
		})
	}
}

func TestRenameLocalCollidesWithNestedScope(t *testing.T) {
	prog := testkit.MustProgram("class K\n{\n    void M()\n    {\n        int a = 1;\n        if (a > 0)\n        {\n            int b = a;\n        }\n    }\n}")
	tbl := semantic.Bind(prog)
	a, ok := tbl.ResolveSymbol(testkit.Idents(prog[0].Root(), "a")[0])
	if !ok {
		t.Fatalf("a did not resolve")
	}
	if _, err := Rename(prog, tbl, a, "b"); !errors.Is(err, ErrNameCollision) {
		t.Fatalf("expected collision with nested local, got %v", err)
	}
	out, err := Rename(prog, tbl, a, "count")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	want := "class K\n{\n    void M()\n    {\n        int count = 1;\n        if (count > 0)\n        {\n            int b = count;\n        }\n    }\n}"
	if got := out[0].Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenameRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "@", "1abc", "a-b", "a b", "class"} {
		prog, tbl, foo := setup(t)
		out, err := Rename(prog, tbl, foo, name)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Rename(%q): expected ErrInvalidName, got %v", name, err)
		}
		if &out[0] != &prog[0] {
			t.Errorf("Rename(%q) did not return the input program", name)
		}
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"_x1", "_x1"},
		{"@class", "@class"},
		{"Größe", "Größe"},
		{"e\u0301", "\u00e9"},
	}
	for _, tt := range tests {
		got, err := CheckName(tt.in)
		if err != nil {
			t.Errorf("CheckName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CheckName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenameNoopAndUnknown(t *testing.T) {
	prog, tbl, foo := setup(t)
	out, err := Rename(prog, tbl, foo, "Foo")
	if err != nil || out[0] != prog[0] {
		t.Fatalf("renaming to the current name must be a no-op, got %v", err)
	}
	if _, err := Rename(prog, tbl, semantic.Symbol{}, "X"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}
