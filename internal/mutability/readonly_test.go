package mutability

import (
	"slices"
	"testing"

	"vsdiag/internal/semantic"
	"vsdiag/internal/testkit"
	"vsdiag/internal/tree"
)

type fixture struct {
	typeDecl *tree.Node
	oracle   semantic.Oracle
	fields   map[string]semantic.SymbolID
}

func load(t *testing.T, src string) fixture {
	t.Helper()
	prog := testkit.MustProgram(src)
	tbl := semantic.Bind(prog)
	f := fixture{
		typeDecl: testkit.First(prog[0].Root(), tree.KindTypeDecl),
		oracle:   tbl,
		fields:   make(map[string]semantic.SymbolID),
	}
	for _, decl := range tree.FindAll(prog[0].Root(), tree.KindFieldDecl) {
		sym, ok := tbl.ResolveSymbol(tree.DeclName(decl))
		if !ok {
			t.Fatalf("field %v not bound", decl)
		}
		f.fields[sym.Name] = sym.ID
	}
	return f
}

func (f fixture) names(s FieldSet) []string {
	var out []string
	for id := range s.All() {
		for name, fid := range f.fields {
			if fid == id {
				out = append(out, name)
			}
		}
	}
	slices.Sort(out)
	return out
}

func TestCandidates(t *testing.T) {
	f := load(t, `class C {
    private int a;
    int b;
    public int c;
    private const int d = 1;
    private static int e;
    private readonly int g;
    protected int h;
}`)
	got := f.names(Candidates(f.typeDecl, f.oracle))
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Candidates = %v", got)
	}
}

func TestReadonlyCandidates(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "assigned only in constructor",
			src: `class X {
    private int x;
    public X(int v) { x = v; x++; M(ref x); }
    int Get() { return x; }
}`,
			want: []string{"x"},
		},
		{
			name: "assigned in property setter",
			src: `class Widget {
    private int _width;
    public Widget(int w) { _width = w; }
    public int Width { get { return _width; } set { _width = value; } }
}`,
			want: nil,
		},
		{
			name: "compound assignment through this",
			src:  `class C { private int n; void Add(int k) { this.n += k; } }`,
			want: nil,
		},
		{
			name: "passed by ref",
			src:  `class C { private int n; void M() { Swap(ref n, ref n); } }`,
			want: nil,
		},
		{
			name: "passed by out",
			src:  `class C { private int n; void M() { Parse("1", out this.n); } }`,
			want: nil,
		},
		{
			name: "passed by in is a read",
			src:  `class C { private int n; void M() { Use(in n); } }`,
			want: []string{"n"},
		},
		{
			name: "prefix decrement",
			src:  `class C { private int n; void M() { --n; } }`,
			want: nil,
		},
		{
			name: "postfix increment in parentheses",
			src:  `class C { private int n; void M() { (n)++; } }`,
			want: nil,
		},
		{
			name: "reads and unary minus",
			src:  `class C { private int n; private int m; int M() { m = -n; return n + 1; } }`,
			want: []string{"n"},
		},
		{
			name: "write through another instance counts",
			src:  `class C { private int n; private C other; void M() { other.n = 1; } }`,
			want: []string{"other"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := load(t, tt.src)
			got := f.names(Analyze(f.typeDecl, f.oracle))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("candidates = %v, want %v", got, tt.want)
			}
		})
	}
}

type countingOracle struct {
	semantic.Oracle
	calls int
}

func (c *countingOracle) ResolveSymbol(n *tree.Node) (semantic.Symbol, bool) {
	c.calls++
	return c.Oracle.ResolveSymbol(n)
}

func TestReadonlyCandidatesShortCircuits(t *testing.T) {
	f := load(t, `class C { private int n; void M() { n = 1; n = 2; n = 3; } }`)
	counter := &countingOracle{Oracle: f.oracle}

	if got := ReadonlyCandidates(f.typeDecl, counter, FieldSet{}); !got.Empty() {
		t.Fatalf("empty input produced %v", got)
	}
	if counter.calls != 0 {
		t.Fatalf("oracle consulted %d times for an empty set", counter.calls)
	}

	ReadonlyCandidates(f.typeDecl, counter, NewFieldSet(f.fields["n"]))
	// C, n, M, then the first write; the walk stops once n is gone
	if counter.calls != 4 {
		t.Fatalf("oracle consulted %d times, want 4", counter.calls)
	}
}

func TestFieldSetIsPersistent(t *testing.T) {
	s := NewFieldSet(3, 1, 2, 3)
	if !slices.Equal(s.IDs(), []semantic.SymbolID{1, 2, 3}) {
		t.Fatalf("NewFieldSet = %v", s)
	}
	without := s.Without(2)
	if s.Len() != 3 || !s.Contains(2) {
		t.Fatalf("Without modified the receiver: %v", s)
	}
	if without.Contains(2) || without.Len() != 2 {
		t.Fatalf("Without(2) = %v", without)
	}
	with := without.With(5)
	if without.Contains(5) || !with.Contains(5) {
		t.Fatalf("With(5) = %v from %v", with, without)
	}
	if same := s.Without(9); same.Len() != 3 {
		t.Fatalf("Without(absent) = %v", same)
	}
}
