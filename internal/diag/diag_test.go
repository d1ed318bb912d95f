package diag

import (
	"testing"

	"vsdiag/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	b.Add(NewWarning("b-rule", source.Span{File: 1, Start: 5, End: 6}, "x"))
	b.Add(New(SevError, "a-rule", source.Span{File: 1, Start: 5, End: 6}, "y"))
	b.Add(NewWarning("a-rule", source.Span{File: 0, Start: 9, End: 10}, "z"))
	if b.Add(NewWarning("c-rule", source.Span{}, "dropped")) {
		t.Fatal("limit not enforced")
	}
	if b.Dropped() != 1 {
		t.Fatalf("Dropped() = %d", b.Dropped())
	}

	b.Sort()
	got := b.Items()
	if got[0].Message != "z" || got[1].Message != "y" || got[2].Message != "x" {
		t.Fatalf("unexpected order: %v", got)
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatal("severity queries wrong")
	}
}

func TestBagDedupAndFilter(t *testing.T) {
	b := NewBag(0)
	sp := source.Span{File: 1, Start: 1, End: 2}
	b.Add(NewWarning("r", sp, "first"))
	b.Add(NewWarning("r", sp, "second"))
	b.Add(NewWarning("q", sp, "other rule"))
	b.Dedup()
	if b.Len() != 2 || b.Items()[0].Message != "first" {
		t.Fatalf("Dedup kept %v", b.Items())
	}
	b.Filter(func(d Diagnostic) bool { return d.Rule == "q" })
	if b.Len() != 1 {
		t.Fatalf("Filter kept %v", b.Items())
	}
}

func TestReporters(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(MultiReporter{BagReporter{Bag: bag}})
	sp := source.Span{File: 1, Start: 1, End: 4}

	ReportWarning(r, "naming", sp, "rename it").WithNote(sp, "declared here").Fixable().Emit()
	ReportWarning(r, "naming", sp, "rename it").Emit()
	b := ReportInfo(r, "naming", sp, "other")
	b.Emit()
	b.Emit()

	if bag.Len() != 2 {
		t.Fatalf("bag has %d diagnostics, want 2", bag.Len())
	}
	first := bag.Items()[0]
	if !first.Fixable || len(first.Notes) != 1 {
		t.Fatalf("builder lost details: %+v", first)
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := NewWarning("r", source.Span{}, "m").WithNote(source.Span{}, "a")
	x := base.WithNote(source.Span{}, "x")
	y := base.WithNote(source.Span{}, "y")
	if x.Notes[1].Msg != "x" || y.Notes[1].Msg != "y" || len(base.Notes) != 1 {
		t.Fatalf("notes aliased: %v %v %v", base.Notes, x.Notes, y.Notes)
	}
}

func TestRuleIDValidate(t *testing.T) {
	for _, ok := range []RuleID{"readonly-field", "if-without-braces", "r2"} {
		if err := ok.Validate(); err != nil {
			t.Errorf("%q: %v", ok, err)
		}
	}
	for _, bad := range []RuleID{"", "Readonly", "a--b", "-a", "a_b"} {
		if bad.Validate() == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSetWithBase("/src")
	id := fs.AddVirtual("/src/Widget.cs", []byte("class Widget\n{\n    int x;\n}\n"))
	d := NewWarning("readonly-field", source.Span{File: id, Start: 23, End: 24}, "make it\nreadonly").
		WithNote(source.Span{File: id, Start: 6, End: 12}, "in type")

	got := FormatShort([]Diagnostic{d}, fs, true)
	want := "note readonly-field Widget.cs:1:7 in type\nwarning readonly-field Widget.cs:3:9 make it readonly"
	if got != want {
		t.Fatalf("FormatShort =\n%s\nwant\n%s", got, want)
	}
}
