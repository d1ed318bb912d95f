package diag

import (
	"fmt"
	"regexp"
)

// RuleID is the stable identifier of a rule, e.g. "readonly-field".
type RuleID string

var ruleIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

func (id RuleID) String() string { return string(id) }

// Validate reports whether id is a lower-case, dash separated word list.
func (id RuleID) Validate() error {
	if !ruleIDPattern.MatchString(string(id)) {
		return fmt.Errorf("invalid rule id %q", string(id))
	}
	return nil
}
