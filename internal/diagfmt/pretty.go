package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vsdiag/internal/diag"
	"vsdiag/internal/fix"
	"vsdiag/internal/source"
)

const tabWidth = 4

type palette struct {
	sev     map[diag.Severity]*color.Color
	rule    *color.Color
	loc     *color.Color
	gutter  *color.Color
	caret   *color.Color
	note    *color.Color
	applied *color.Color
	skipped *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
		},
		rule:    color.New(color.Bold),
		loc:     color.New(color.FgWhite, color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		note:    color.New(color.FgCyan),
		applied: color.New(color.FgGreen),
		skipped: color.New(color.FgYellow),
	}
	for _, c := range p.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) all() []*color.Color {
	out := []*color.Color{p.rule, p.loc, p.gutter, p.caret, p.note, p.applied, p.skipped}
	for _, c := range p.sev {
		out = append(out, c)
	}
	return out
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.rule
}

// Pretty writes diagnostics in a human-readable form. It walks bag.Items()
// in order (call bag.Sort() first). Every diagnostic is printed as
//
//	<path>:<line>:<col>: <SEV> <rule>: <message>
//
// followed by the source line with the span underlined ^~~~ and, when
// enabled, its notes in the same format.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(fs, d.Primary, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity),
			p.rule.Sprint(d.Rule),
			d.Message,
		)
		writeSnippet(w, fs, d.Primary, opts, p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "%d more diagnostics not shown (limit %d)\n", dropped, bag.Cap())
	}
}

// PrettyFixes lists applied and skipped fixes one per line.
func PrettyFixes(w io.Writer, applied []fix.AppliedFix, skipped []fix.SkippedFix, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, a := range applied {
		fmt.Fprintf(w, "%s %s %s: %s\n",
			p.applied.Sprint("fixed"),
			p.loc.Sprint(location(fs, a.Span, opts.PathMode)),
			p.rule.Sprint(a.Rule),
			a.Message,
		)
	}
	for _, s := range skipped {
		reason := s.Reason.String()
		if s.Err != nil {
			reason = s.Err.Error()
		}
		fmt.Fprintf(w, "%s %s %s: %s (%s)\n",
			p.skipped.Sprint("skipped"),
			p.loc.Sprint(location(fs, s.Span, opts.PathMode)),
			p.rule.Sprint(s.Rule),
			s.Message,
			reason,
		)
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Sprintf("file#%d:%d", sp.File, sp.Start)
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	first := start.Line
	if opts.Context > 0 {
		first = start.Line - min(start.Line-1, uint32(opts.Context))
	}
	digits := len(fmt.Sprint(start.Line))

	for ln := first; ln <= start.Line; ln++ {
		line := expandTabs(f.GetLine(ln))
		if opts.Width > 0 && runewidth.StringWidth(line) > opts.Width {
			line = runewidth.Truncate(line, opts.Width, "...")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", digits, ln), line)
	}

	raw := f.GetLine(start.Line)
	from := min(int(start.Col-1), len(raw))
	to := len(raw)
	if end.Line == start.Line {
		to = min(max(int(end.Col-1), from), len(raw))
	}
	pad := runewidth.StringWidth(expandTabs(raw[:from]))
	width := max(runewidth.StringWidth(expandTabs(raw[from:to])), 1)
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", digits, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
