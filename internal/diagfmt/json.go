package diagfmt

import (
	"encoding/json"
	"io"

	"vsdiag/internal/diag"
	"vsdiag/internal/fix"
	"vsdiag/internal/source"
)

// LocationJSON is a location in a file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Rule     string       `json:"rule"`
	Message  string       `json:"message"`
	Fixable  bool         `json:"fixable,omitempty"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

type FixJSON struct {
	Rule     string       `json:"rule"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Reason   string       `json:"reason,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// FixesOutput reports the outcome of a fix run.
type FixesOutput struct {
	Applied []FixJSON `json:"applied"`
	Skipped []FixJSON `json:"skipped"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(f, fs, pathMode)
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput builds the JSON structure without serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Rule:     d.Rule.String(),
			Message:  d.Message,
			Fixable:  d.Fixable,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - maxItems,
	}
}

// BuildFixesOutput converts fix outcomes to their JSON form.
func BuildFixesOutput(applied []fix.AppliedFix, skipped []fix.SkippedFix, fs *source.FileSet, opts JSONOpts) FixesOutput {
	out := FixesOutput{
		Applied: make([]FixJSON, 0, len(applied)),
		Skipped: make([]FixJSON, 0, len(skipped)),
	}
	for _, a := range applied {
		out.Applied = append(out.Applied, FixJSON{
			Rule:     a.Rule.String(),
			Message:  a.Message,
			Location: makeLocation(a.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	for _, s := range skipped {
		fj := FixJSON{
			Rule:     s.Rule.String(),
			Message:  s.Message,
			Location: makeLocation(s.Span, fs, opts.PathMode, opts.IncludePositions),
			Reason:   s.Reason.String(),
		}
		if s.Err != nil {
			fj.Error = s.Err.Error()
		}
		out.Skipped = append(out.Skipped, fj)
	}
	return out
}

// JSON writes diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildDiagnosticsOutput(bag, fs, opts))
}

// JSONFixes writes fix outcomes as an indented JSON document.
func JSONFixes(w io.Writer, applied []fix.AppliedFix, skipped []fix.SkippedFix, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildFixesOutput(applied, skipped, fs, opts))
}

func encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
