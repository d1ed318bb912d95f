package tree

import (
	"testing"
)

func TestLayoutSpansContainChildren(t *testing.T) {
	tr, a, _ := sampleTree()

	if got := a.Span(); got.Start != 16 || got.End != 20 {
		t.Fatalf("statement span = %v, want 16-20", got)
	}
	Walk(tr.Root(), func(c *Cursor) bool {
		if p := c.Parent(); p != nil && !p.Span().Contains(c.Node().Span()) {
			t.Errorf("%v not contained in parent %v", c.Node(), p)
		}
		return true
	})
}

func TestRelayoutAfterRewrite(t *testing.T) {
	tr, a, _ := sampleTree()
	ident := a.Child(0).Child(0)
	out := MustReplace(tr, ident, ident.WithText("longer"))

	re := Relayout(out)
	if re.Render() != out.Render() {
		t.Fatal("Relayout changed the text")
	}
	b := FindAll(re.Root(), KindExprStmt)[1]
	text := re.Text()
	if got := string(text[b.Span().Start:b.Span().End]); got != "b();" {
		t.Fatalf("span after relayout points at %q", got)
	}

	moved := RelayoutAs(out, 7)
	if moved.File() != 7 || moved.Root().Span().File != 7 {
		t.Fatalf("RelayoutAs kept file %d", moved.Root().Span().File)
	}
	if moved.Render() != out.Render() || moved.Generation() != out.Generation()+1 {
		t.Fatal("RelayoutAs changed the text or generation")
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	tr, _, _ := sampleTree()
	var kinds []Kind
	Walk(tr.Root(), func(c *Cursor) bool {
		kinds = append(kinds, c.Node().Kind())
		return c.Node().Kind() != KindBlock
	})
	want := []Kind{KindCompilationUnit, KindMethodDecl, KindKeyword, KindIdentifier,
		KindParameterList, KindPunct, KindPunct, KindBlock}
	if len(kinds) != len(want) {
		t.Fatalf("visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("visited %v, want %v", kinds, want)
		}
	}
}

func TestCursorAncestors(t *testing.T) {
	tr, a, _ := sampleTree()
	target := a.Child(0).Child(0)
	Walk(tr.Root(), func(c *Cursor) bool {
		if c.Node() != target {
			return true
		}
		if c.Parent().Kind() != KindInvocation || c.Ancestor(2) != a {
			t.Errorf("unexpected ancestors %v", c.Ancestors())
		}
		if c.Index() != 0 || c.Depth() != 5 {
			t.Errorf("Index() = %d, Depth() = %d", c.Index(), c.Depth())
		}
		return false
	})
}

func TestKindTables(t *testing.T) {
	for _, k := range AllKinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
		_ = k.IsLeaf() // must not panic for any valid kind
	}
	if Kind(200).String() != "Kind(200)" {
		t.Errorf("unexpected name for unknown kind: %s", Kind(200))
	}
}
