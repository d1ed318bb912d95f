package tree

import (
	"errors"
	"testing"
)

func tok(kind Kind, text, lead string) *Node {
	return NewToken(kind, text).WithTrivia(lead, "")
}

// block builds "{\n    a();\n    b();\n}" with trivia on the tokens.
func sampleBlock() (*Node, *Node, *Node) {
	stmt := func(name string) *Node {
		call := NewNode(KindInvocation,
			tok(KindIdentifier, name, "\n    "),
			NewNode(KindArgumentList, tok(KindPunct, "(", ""), tok(KindPunct, ")", "")),
		)
		return NewNode(KindExprStmt, call, tok(KindPunct, ";", ""))
	}
	a, b := stmt("a"), stmt("b")
	block := NewNode(KindBlock, tok(KindPunct, "{", ""), a, b, tok(KindPunct, "}", "\n"))
	return block, a, b
}

func sampleTree() (*Tree, *Node, *Node) {
	block, a, b := sampleBlock()
	method := NewNode(KindMethodDecl,
		tok(KindKeyword, "void", ""),
		tok(KindIdentifier, "Run", " "),
		NewNode(KindParameterList, tok(KindPunct, "(", ""), tok(KindPunct, ")", "")),
		block,
	)
	return New(0, "Run.cs", NewNode(KindCompilationUnit, method)), a, b
}

func TestRenderRoundTrip(t *testing.T) {
	tr, _, _ := sampleTree()
	want := "void Run(){\n    a();\n    b();\n}"
	if got := tr.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestReplaceSharesUnaffectedSubtrees(t *testing.T) {
	tr, a, b := sampleTree()
	repl := NewNode(KindExprStmt,
		NewNode(KindInvocation,
			tok(KindIdentifier, "c", "\n    "),
			NewNode(KindArgumentList, tok(KindPunct, "(", ""), tok(KindPunct, ")", "")),
		),
		tok(KindPunct, ";", ""),
	)

	out, err := Replace(tr, a, repl)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got, want := out.Render(), "void Run(){\n    c();\n    b();\n}"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}

	oldPath, _ := Path(tr.Root(), a)
	onPath := make(map[*Node]bool, len(oldPath))
	for _, n := range oldPath {
		onPath[n] = true
	}

	// every old node off the root-to-target path must still be reachable
	// in the new tree by identity
	Inspect(tr.Root(), func(n *Node) bool {
		if onPath[n] {
			return true
		}
		if !out.Contains(n) {
			t.Errorf("node %v not shared with the new tree", n)
		}
		return false
	})
	if !out.Contains(b) {
		t.Error("sibling statement was copied instead of shared")
	}
	for _, n := range oldPath {
		if out.Contains(n) {
			t.Errorf("ancestor %v was reused; it must be rebuilt", n)
		}
	}
	if tr.Render() != "void Run(){\n    a();\n    b();\n}" {
		t.Error("original tree changed")
	}
	if out.Generation() != tr.Generation()+1 {
		t.Errorf("Generation() = %d, want %d", out.Generation(), tr.Generation()+1)
	}
}

func TestReplaceIdentityNotValue(t *testing.T) {
	tr, _, _ := sampleTree()
	twin, _, _ := sampleBlock() // same text, different nodes

	_, err := Replace(tr, twin, tok(KindPunct, ";", ""))
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if serr.Op != "replace" || serr.Tree != "Run.cs" {
		t.Errorf("unexpected error details: %+v", serr)
	}
}

func TestMustReplacePanicsOnForeignNode(t *testing.T) {
	tr, _, _ := sampleTree()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	MustReplace(tr, NewToken(KindIdentifier, "x"), NewToken(KindIdentifier, "y"))
}

func TestReplaceRoot(t *testing.T) {
	tr, _, _ := sampleTree()
	root := NewNode(KindCompilationUnit)
	out, err := Replace(tr, tr.Root(), root)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if out.Root() != root {
		t.Fatal("root was not replaced")
	}
}

func TestRemoveNodeTriviaPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy TriviaPolicy
		want   string
	}{
		{"preserve keeps surrounding whitespace", TriviaPreserve, "void Run(){\n    \n    b();\n}"},
		{"collapse drops it", TriviaCollapse, "void Run(){\n    b();\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, a, _ := sampleTree()
			out, err := RemoveNode(tr, a, tt.policy)
			if err != nil {
				t.Fatalf("RemoveNode: %v", err)
			}
			if got := out.Render(); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoveThenInsertIsByteIdentical(t *testing.T) {
	tr, a, _ := sampleTree()
	original := tr.Render()

	removed, err := RemoveNode(tr, a, TriviaPreserve)
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	block := FindAll(removed.Root(), KindBlock)[0]
	if block.Child(1).Kind() != KindElided {
		t.Fatalf("expected placeholder at index 1, got %v", block.Child(1))
	}

	restored, err := InsertChild(removed, block, 1, StripTrivia(a))
	if err != nil {
		t.Fatalf("InsertChild: %v", err)
	}
	if got := restored.Render(); got != original {
		t.Fatalf("round trip = %q, want %q", got, original)
	}
	if n := len(FindAll(restored.Root(), KindElided)); n != 0 {
		t.Fatalf("placeholder left behind: %d", n)
	}
}

func TestRemoveRootFails(t *testing.T) {
	tr, _, _ := sampleTree()
	_, err := RemoveNode(tr, tr.Root(), TriviaCollapse)
	if !errors.Is(err, ErrRootRemoval) {
		t.Fatalf("expected ErrRootRemoval, got %v", err)
	}
}

func TestInsertChildBounds(t *testing.T) {
	tr, a, _ := sampleTree()
	block := FindAll(tr.Root(), KindBlock)[0]
	if _, err := InsertChild(tr, block, 99, a); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("expected ErrBadIndex, got %v", err)
	}
	leaf := block.Child(0)
	if _, err := InsertChild(tr, leaf, 0, a); !errors.Is(err, ErrLeafParent) {
		t.Fatalf("expected ErrLeafParent, got %v", err)
	}
}

func TestReplaceMany(t *testing.T) {
	tr, a, b := sampleTree()
	idA := a.Child(0).Child(0)
	idB := b.Child(0).Child(0)

	out, err := ReplaceMany(tr, map[*Node]*Node{
		idA: idA.WithText("x"),
		idB: idB.WithText("y"),
	})
	if err != nil {
		t.Fatalf("ReplaceMany: %v", err)
	}
	if got, want := out.Render(), "void Run(){\n    x();\n    y();\n}"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
	// the parameter list is off both paths
	params := FindAll(tr.Root(), KindParameterList)[0]
	if !out.Contains(params) {
		t.Error("unaffected subtree was copied")
	}

	_, err = ReplaceMany(tr, map[*Node]*Node{NewToken(KindPunct, ";"): idA})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestStripTrivia(t *testing.T) {
	_, a, _ := sampleBlock()
	if LeadingTrivia(a) != "\n    " {
		t.Fatalf("LeadingTrivia = %q", LeadingTrivia(a))
	}
	s := StripTrivia(a)
	if got := Render(s); got != "a();" {
		t.Fatalf("Render(StripTrivia) = %q", got)
	}
	if Render(a) != "\n    a();" {
		t.Fatal("StripTrivia modified its input")
	}
	if RenderContent(a) != "a();" {
		t.Fatalf("RenderContent = %q", RenderContent(a))
	}
}
