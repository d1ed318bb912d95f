// Package rules holds the built-in rules and registers them with an engine.
package rules

import (
	"fmt"

	"vsdiag/internal/config"
	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/source"
	"vsdiag/internal/tree"
)

const (
	ReadonlyFieldID     diag.RuleID = "readonly-field"
	IfWithoutBracesID   diag.RuleID = "if-without-braces"
	EmptyArgumentListID diag.RuleID = "empty-argument-list"
	NamingConventionID  diag.RuleID = "naming-convention"
)

const defaultSeverity = diag.SevWarning

// IDs lists the built-in rules in registration order.
func IDs() []diag.RuleID {
	return []diag.RuleID{ReadonlyFieldID, IfWithoutBracesID, EmptyArgumentListID, NamingConventionID}
}

// All builds every built-in rule configured by cfg, including disabled
// ones, in registration order.
func All(cfg *config.Config) ([]engine.Rule, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	convs, err := cfg.Naming.Resolve()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	sev := func(id diag.RuleID) diag.Severity { return cfg.RuleSeverity(id, defaultSeverity) }
	return []engine.Rule{
		&ReadonlyField{base: newBase(ReadonlyFieldID, sev(ReadonlyFieldID), tree.KindFieldDecl)},
		&IfWithoutBraces{base: newBase(IfWithoutBracesID, sev(IfWithoutBracesID), tree.KindIfStmt)},
		&EmptyArgumentList{base: newBase(EmptyArgumentListID, sev(EmptyArgumentListID), tree.KindObjectCreation)},
		&NamingConvention{
			base:  newBase(NamingConventionID, sev(NamingConventionID), tree.KindTypeDecl, tree.KindFieldDecl, tree.KindMethodDecl),
			convs: convs,
		},
	}, nil
}

// Register adds the enabled built-in rules to reg.
func Register(reg *engine.Registry, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	all, err := All(cfg)
	if err != nil {
		return err
	}
	for _, r := range all {
		if !cfg.RuleEnabled(r.ID()) {
			continue
		}
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("rules: %w", err)
		}
	}
	return nil
}

type base struct {
	id    diag.RuleID
	sev   diag.Severity
	kinds []tree.Kind
}

func newBase(id diag.RuleID, sev diag.Severity, kinds ...tree.Kind) base {
	return base{id: id, sev: sev, kinds: kinds}
}

func (b *base) ID() diag.RuleID    { return b.id }
func (b *base) Kinds() []tree.Kind { return b.kinds }

func (b *base) report(at source.Span, format string, args ...any) *diag.Diagnostic {
	d := diag.New(b.sev, b.id, at, fmt.Sprintf(format, args...)).WithFixable()
	return &d
}
