// Package diag defines the diagnostic model shared by rules, the engine and
// the output layers.
//
// Diagnostic is the central record: the producing rule, a tri-level
// Severity, a short actionable Message, the Primary span, optional Notes
// and a Fixable bit. Diagnostics are values; the With* helpers return
// modified copies.
//
// Fixes are not part of a diagnostic. A fixable diagnostic stays bound to
// the node it was raised on (see engine.Finding) and the fix package asks
// the producing rule for a replacement subtree.
//
// Producers emit through a Reporter: BagReporter collects into a Bag that
// supports a limit, sorting, deduplication and filtering; DedupReporter
// suppresses repeats; MultiReporter fans out. ReportBuilder chains notes
// before Emit.
//
// Rendering lives in internal/diagfmt; FormatShort here is the stable
// one-line form used by tests and the short CLI output.
package diag
