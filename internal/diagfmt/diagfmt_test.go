package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"vsdiag/internal/diag"
	"vsdiag/internal/fix"
	"vsdiag/internal/source"
)

const classSrc = "class C\n{\n    private int count;\n}\n"

func fixture(t *testing.T) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("Counter.cs", []byte(classSrc))
	return fs, id
}

// span of "count" on line 3
func countSpan(id source.FileID) source.Span {
	start := uint32(strings.Index(classSrc, "count"))
	return source.Span{File: id, Start: start, End: start + 5}
}

func TestPrettySnippet(t *testing.T) {
	fs, id := fixture(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning("readonly-field", countSpan(id), "field count can be readonly"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "Counter.cs:3:17: WARNING readonly-field: field count can be readonly\n" +
		"3 |     private int count;\n" +
		"  | " + strings.Repeat(" ", 16) + "^~~~~\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContextNotesAndLimit(t *testing.T) {
	fs, id := fixture(t)
	bag := diag.NewBag(1)
	d := diag.NewWarning("readonly-field", countSpan(id), "msg").
		WithNote(source.Span{File: id, Start: 6, End: 7}, "declared in C")
	bag.Add(d)
	bag.Add(diag.NewWarning("other", countSpan(id), "dropped"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 2, ShowNotes: true})
	out := buf.String()
	for _, want := range []string{
		"1 | class C\n",
		"2 | {\n",
		"3 |     private int count;\n",
		"note: Counter.cs:1:7: declared in C\n",
		"1 more diagnostics not shown (limit 1)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("dropped diagnostic was printed:\n%s", out)
	}
}

func TestPrettyTabsAndMultiline(t *testing.T) {
	fs := source.NewFileSet()
	src := "\tx = 1;\n\ty = 2;\n"
	id := fs.AddVirtual("a.cs", []byte(src))
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning("r", source.Span{File: id, Start: 1, End: uint32(len(src) - 1)}, "m"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if lines[1] != "1 |     x = 1;" {
		t.Fatalf("tab not expanded: %q", lines[1])
	}
	if want := "  |     ^~~~~~"; lines[2] != want {
		t.Fatalf("caret line %q, want %q", lines[2], want)
	}
}

func TestPrettyColor(t *testing.T) {
	fs, id := fixture(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning("readonly-field", countSpan(id), "msg"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{Color: false})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes")
	}
}

func TestJSON(t *testing.T) {
	fs, id := fixture(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning("readonly-field", countSpan(id), "first").WithFixable())
	bag.Add(diag.NewWarning("naming-convention", countSpan(id), "second"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count %d dropped %d, want 1 and 1", out.Count, out.Dropped)
	}
	d := out.Diagnostics[0]
	if d.Rule != "readonly-field" || d.Severity != "WARNING" || !d.Fixable {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Location.File != "Counter.cs" || d.Location.StartLine != 3 || d.Location.StartCol != 17 || d.Location.EndCol != 22 {
		t.Errorf("unexpected location %+v", d.Location)
	}
}

func TestFixReports(t *testing.T) {
	fs, id := fixture(t)
	applied := []fix.AppliedFix{{Rule: "readonly-field", Message: "made readonly", Span: countSpan(id)}}
	skipped := []fix.SkippedFix{
		{Rule: "naming-convention", Message: "rename", Span: countSpan(id), Reason: fix.SkipOverlap},
		{Rule: "broken", Message: "boom", Span: countSpan(id), Reason: fix.SkipBuildFailed, Err: errors.New("no replacement")},
	}

	var buf bytes.Buffer
	PrettyFixes(&buf, applied, skipped, fs, PrettyOpts{})
	want := "fixed Counter.cs:3:17 readonly-field: made readonly\n" +
		"skipped Counter.cs:3:17 naming-convention: rename (overlap)\n" +
		"skipped Counter.cs:3:17 broken: boom (no replacement)\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	if err := JSONFixes(&buf, applied, skipped, fs, JSONOpts{}); err != nil {
		t.Fatalf("JSONFixes: %v", err)
	}
	var out FixesOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Applied) != 1 || len(out.Skipped) != 2 {
		t.Fatalf("got %d applied and %d skipped", len(out.Applied), len(out.Skipped))
	}
	if out.Skipped[0].Reason != "overlap" || out.Skipped[1].Error != "no replacement" {
		t.Errorf("unexpected skipped entries %+v", out.Skipped)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "absolute": PathModeAbsolute, "relative": PathModeRelative, "basename": PathModeBasename} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("full"); err == nil {
		t.Errorf("expected an error for an unknown mode")
	}
}
