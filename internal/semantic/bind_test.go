package semantic

import (
	"testing"

	"vsdiag/internal/testkit"
	"vsdiag/internal/tree"
)

const widgetSrc = `class Widget
{
    private int _width;
    int x;
    private readonly int _height = 3;
    private const int Max = 10;
    public int Width { get { return _width; } set { _width = value; } }
    public Widget(int w)
    {
        x = w;
        _width = Max;
    }
    public void Grow()
    {
        int step = 1;
        this._width += step;
    }
}`

func bindWidget(t *testing.T) (tree.Program, *Table) {
	t.Helper()
	prog := testkit.MustProgram(widgetSrc)
	tbl := Bind(prog)
	if err := tbl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return prog, tbl
}

func mustResolve(t *testing.T, o Oracle, n *tree.Node) Symbol {
	t.Helper()
	sym, ok := o.ResolveSymbol(n)
	if !ok {
		t.Fatalf("%v did not resolve", n)
	}
	return sym
}

func TestBindFieldReferences(t *testing.T) {
	prog, tbl := bindWidget(t)
	refs := testkit.Idents(prog[0].Root(), "_width")
	if len(refs) != 5 {
		t.Fatalf("expected 5 occurrences of _width, got %d", len(refs))
	}
	decl := mustResolve(t, tbl, refs[0])
	if decl.Kind != SymbolField || decl.Decl != refs[0] {
		t.Fatalf("declaration resolved to %v", decl)
	}
	if !decl.Has(FlagPrivate) || decl.Has(FlagReadOnly) {
		t.Fatalf("unexpected flags %s", decl.Flags)
	}
	for _, ref := range refs[1:] {
		if got := mustResolve(t, tbl, ref); !got.Same(decl) {
			t.Errorf("%v resolved to %v, want %v", ref, got, decl)
		}
	}
	if ty, ok := tbl.TypeOf(refs[2]); !ok || ty.Name != "int" {
		t.Errorf("TypeOf = %v, %v", ty, ok)
	}
}

func TestBindFlags(t *testing.T) {
	prog, tbl := bindWidget(t)
	root := prog[0].Root()
	tests := []struct {
		name string
		kind tree.Kind
		want SymbolFlags
	}{
		{"x", tree.KindFieldDecl, FlagPrivate},
		{"_height", tree.KindFieldDecl, FlagPrivate | FlagReadOnly},
		{"Max", tree.KindFieldDecl, FlagPrivate | FlagConst},
		{"Width", tree.KindPropertyDecl, FlagHasSetter},
		{"Grow", tree.KindMethodDecl, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := testkit.Decl(root, tt.kind, tt.name)
			sym := mustResolve(t, tbl, tree.DeclName(decl))
			if sym.Flags != tt.want {
				t.Fatalf("flags = %s, want %s", sym.Flags, tt.want)
			}
		})
	}
}

func TestBindConstructorAndSetter(t *testing.T) {
	prog, tbl := bindWidget(t)
	root := prog[0].Root()

	ctor := testkit.Decl(root, tree.KindConstructorDecl, "Widget")
	typ := mustResolve(t, tbl, tree.DeclName(ctor))
	if typ.Kind != SymbolType || typ.Name != "Widget" {
		t.Fatalf("constructor name resolved to %v", typ)
	}

	value := testkit.Idents(root, "value")[0]
	if sym := mustResolve(t, tbl, value); sym.Kind != SymbolParameter {
		t.Fatalf("value resolved to %v", sym)
	}

	max := testkit.Idents(root, "Max")[1]
	if c, ok := tbl.ConstantValueOf(max); !ok || c.Text != "10" {
		t.Fatalf("ConstantValueOf(Max) = %v, %v", c, ok)
	}
	lit := testkit.First(root, tree.KindLiteral)
	if c, ok := tbl.ConstantValueOf(lit); !ok || c.Text != lit.Text() {
		t.Fatalf("ConstantValueOf(literal) = %v, %v", c, ok)
	}
}

func TestLookupVisible(t *testing.T) {
	prog, tbl := bindWidget(t)
	root := prog[0].Root()
	field := mustResolve(t, tbl, testkit.Idents(root, "_width")[0])

	tests := []struct {
		name string
		want []SymbolKind
	}{
		{"step", []SymbolKind{SymbolLocal}},  // declared in a nested scope
		{"Widget", []SymbolKind{SymbolType}}, // declared in an enclosing scope
		{"x", []SymbolKind{SymbolField}},     // same scope
		{"_width", nil},                      // the symbol itself is excluded
		{"Missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.LookupVisible(field, tt.name)
			if len(got) != len(tt.want) {
				t.Fatalf("LookupVisible(%q) = %v", tt.name, got)
			}
			for i := range got {
				if got[i].Kind != tt.want[i] {
					t.Errorf("LookupVisible(%q)[%d] = %v", tt.name, i, got[i])
				}
			}
		})
	}
}

func TestBindAcrossFiles(t *testing.T) {
	prog := testkit.MustProgram(
		"class A { public void Foo() { } }",
		"class B { void Run(A a) { a.Foo(); } }",
	)
	tbl := Bind(prog)
	decl := mustResolve(t, tbl, testkit.Idents(prog[0].Root(), "Foo")[0])
	use := mustResolve(t, tbl, testkit.Idents(prog[1].Root(), "Foo")[0])
	if !use.Same(decl) {
		t.Fatalf("a.Foo resolved to %v, want %v", use, decl)
	}
}

func TestFollowAndSetName(t *testing.T) {
	prog, tbl := bindWidget(t)
	decl := testkit.Idents(prog[0].Root(), "_width")[0]
	sym := mustResolve(t, tbl, decl)

	renamed := decl.WithText("_w")
	tbl.Follow(decl, renamed)
	tbl.SetName(sym.ID, "_w")

	if _, ok := tbl.ResolveSymbol(decl); ok {
		t.Fatal("old node still bound")
	}
	got := mustResolve(t, tbl, renamed)
	if got.Name != "_w" || got.Decl != renamed {
		t.Fatalf("after follow: %v decl=%v", got, got.Decl)
	}
	x := mustResolve(t, tbl, testkit.Idents(prog[0].Root(), "x")[0])
	if vis := tbl.LookupVisible(x, "_w"); len(vis) != 1 || !vis[0].Same(sym) {
		t.Fatalf("renamed symbol not indexed: %v", vis)
	}
	if vis := tbl.LookupVisible(x, "_width"); len(vis) != 0 {
		t.Fatalf("old name still indexed: %v", vis)
	}
}

type followLog map[*tree.Node]*tree.Node

func (l followLog) Follow(old, replacement *tree.Node) { l[old] = replacement }
func (followLog) SetName(SymbolID, string)             {}

func TestFollowRewriteAcrossInsertedChildren(t *testing.T) {
	prog, _ := bindWidget(t)
	decl := testkit.Decl(prog[0].Root(), tree.KindFieldDecl, "x")
	first := decl.Child(0)
	moved := first.WithTrivia(" ", first.Trailing())
	var children []*tree.Node
	for _, c := range decl.Children() {
		children = append(children, c)
	}

	tests := []struct {
		name  string
		build func() []*tree.Node
		want  map[*tree.Node]*tree.Node
	}{
		{
			name: "inserted before a rebuilt child",
			build: func() []*tree.Node {
				return append([]*tree.Node{tree.NewToken(tree.KindModifier, "readonly"), moved}, children[1:]...)
			},
			want: map[*tree.Node]*tree.Node{first: moved},
		},
		{
			name: "removed before shared children",
			build: func() []*tree.Node {
				return children[1:]
			},
			want: map[*tree.Node]*tree.Node{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rebuilt := decl.WithChildren(tt.build()...)
			log := followLog{}
			FollowRewrite(log, decl, rebuilt)
			if log[decl] != rebuilt {
				t.Fatalf("declaration not followed")
			}
			delete(log, decl)
			if len(log) != len(tt.want) {
				t.Fatalf("followed %d nodes, want %d", len(log), len(tt.want))
			}
			for old, repl := range tt.want {
				if log[old] != repl {
					t.Fatalf("%v followed to %v, want %v", old, log[old], repl)
				}
			}
		})
	}
}
