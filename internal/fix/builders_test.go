package fix

import (
	"testing"

	"vsdiag/internal/testkit"
	"vsdiag/internal/tree"
)

func TestInsertModifier(t *testing.T) {
	src := "class C\n{\n    private int a;\n    int b;\n}"
	tr := testkit.MustParse("C.cs", src)
	a := testkit.Decl(tr.Root(), tree.KindFieldDecl, "a")
	b := testkit.Decl(tr.Root(), tree.KindFieldDecl, "b")
	out, err := tree.ReplaceMany(tr, map[*tree.Node]*tree.Node{
		a: InsertModifier(a, "readonly"),
		b: InsertModifier(b, "readonly"),
	})
	if err != nil {
		t.Fatalf("ReplaceMany: %v", err)
	}
	want := "class C\n{\n    private readonly int a;\n    readonly int b;\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWrapInBlock(t *testing.T) {
	src := "class C\n{\n    void M()\n    {\n        if (x)\n            a();\n        if (y) b();\n    }\n}"
	tr := testkit.MustParse("C.cs", src)
	ifs := tree.FindAll(tr.Root(), tree.KindIfStmt)
	if len(ifs) != 2 {
		t.Fatalf("expected 2 if statements, got %d", len(ifs))
	}
	repl := make(map[*tree.Node]*tree.Node)
	for _, n := range ifs {
		stmt := tree.Embedded(n)[0]
		repl[stmt] = WrapInBlock(stmt, Indent(n))
	}
	out, err := tree.ReplaceMany(tr, repl)
	if err != nil {
		t.Fatalf("ReplaceMany: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        if (x) {\n            a();\n        }\n        if (y) { b(); }\n    }\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDropChild(t *testing.T) {
	src := "class C\n{\n    void M()\n    {\n        var w = new W() { X = 1 };\n    }\n}"
	tr := testkit.MustParse("C.cs", src)
	creation := testkit.First(tr.Root(), tree.KindObjectCreation)
	out, err := tree.Replace(tr, creation, DropChild(creation, tree.KindArgumentList))
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        var w = new W { X = 1 };\n    }\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if same := DropChild(creation, tree.KindBlock); same != creation {
		t.Fatalf("DropChild without a match must return the node itself")
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		lead string
		want string
	}{
		{"\n\t\t", "\t\t"},
		{"  ", ""},
		{"\n  // note\n    ", "    "},
		{"", ""},
	}
	for _, tt := range tests {
		n := Token(tree.KindIdentifier, "x", WithLeading(tt.lead))
		if got := Indent(n); got != tt.want {
			t.Errorf("Indent(%q) = %q, want %q", tt.lead, got, tt.want)
		}
	}
}
