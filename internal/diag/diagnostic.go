package diag

import "vsdiag/internal/source"

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is an immutable finding produced by a rule.
type Diagnostic struct {
	Rule     RuleID
	Severity Severity
	Message  string
	Primary  source.Span
	Notes    []Note
	// Fixable reports that the producing rule can build a replacement for
	// the node the diagnostic was raised on.
	Fixable bool
}
