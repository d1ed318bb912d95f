package diag

import "vsdiag/internal/source"

func New(sev Severity, rule RuleID, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Rule:     rule,
		Primary:  primary,
		Message:  msg,
	}
}

func NewWarning(rule RuleID, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, rule, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// WithFixable marks the diagnostic as having an automated fix.
func (d Diagnostic) WithFixable() Diagnostic {
	d.Fixable = true
	return d
}
