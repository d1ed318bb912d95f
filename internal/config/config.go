// Package config loads vsdiag.toml.
//
//	[analysis]
//	max_diagnostics = 200
//	jobs = 4
//
//	[rules.if-without-braces]
//	enabled = false
//
//	[rules.readonly-field]
//	severity = "info"
//
//	[naming]
//	private_field = "underscoreLowerCamel"
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"vsdiag/internal/diag"
	"vsdiag/internal/naming"
)

type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`

	Analysis AnalysisConfig        `toml:"analysis"`
	Rules    map[string]RuleConfig `toml:"rules"`
	Naming   NamingConfig          `toml:"naming"`
}

type AnalysisConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
	Jobs           int `toml:"jobs"`
}

type RuleConfig struct {
	Enabled  bool   `toml:"enabled"`
	Severity string `toml:"severity"`
}

// NamingConfig holds convention names as accepted by
// naming.ParseConvention.
type NamingConfig struct {
	Field        string `toml:"field"`
	PrivateField string `toml:"private_field"`
	Method       string `toml:"method"`
	Interface    string `toml:"interface"`
}

// Conventions is NamingConfig with every name parsed.
type Conventions struct {
	Field        naming.Convention
	PrivateField naming.Convention
	Method       naming.Convention
	Interface    naming.Convention
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Rules: map[string]RuleConfig{},
		Naming: NamingConfig{
			Field:        "upperCamel",
			PrivateField: "underscoreLowerCamel",
			Method:       "upperCamel",
			Interface:    "interfacePrefixUpperCamel",
		},
	}
}

// Load finds vsdiag.toml above startDir and reads it. Without a file the
// defaults are returned and ok is false.
func Load(startDir string) (cfg *Config, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return Default(), false, nil
	}
	cfg, err = LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// LoadFile reads the configuration at path. Keys left out keep their
// defaults; unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	for id, rc := range cfg.Rules {
		if !meta.IsDefined("rules", id, "enabled") {
			rc.Enabled = true
			cfg.Rules[id] = rc
		}
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges, rule ids, severities and conventions.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("[analysis].max_diagnostics must not be negative"))
	}
	if c.Analysis.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[analysis].jobs must not be negative"))
	}
	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := diag.RuleID(id).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("[rules.%s]: %w", id, err))
		}
		if sev := c.Rules[id].Severity; sev != "" {
			if _, err := diag.ParseSeverity(sev); err != nil {
				errs = append(errs, fmt.Errorf("[rules.%s].severity: %w", id, err))
			}
		}
	}
	if _, err := c.Naming.Resolve(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RuleEnabled reports whether a rule should be registered. Rules without
// a section are enabled.
func (c *Config) RuleEnabled(id diag.RuleID) bool {
	rc, ok := c.Rules[string(id)]
	return !ok || rc.Enabled
}

// RuleSeverity returns the configured severity of a rule, or def.
func (c *Config) RuleSeverity(id diag.RuleID, def diag.Severity) diag.Severity {
	rc, ok := c.Rules[string(id)]
	if !ok || rc.Severity == "" {
		return def
	}
	sev, err := diag.ParseSeverity(rc.Severity)
	if err != nil {
		return def
	}
	return sev
}

// Resolve parses every convention name.
func (n NamingConfig) Resolve() (Conventions, error) {
	var out Conventions
	var errs []error
	for _, f := range []struct {
		key  string
		name string
		dst  *naming.Convention
	}{
		{"field", n.Field, &out.Field},
		{"private_field", n.PrivateField, &out.PrivateField},
		{"method", n.Method, &out.Method},
		{"interface", n.Interface, &out.Interface},
	} {
		conv, err := naming.ParseConvention(f.name)
		if err != nil {
			errs = append(errs, fmt.Errorf("[naming].%s: %w", f.key, err))
			continue
		}
		*f.dst = conv
	}
	return out, errors.Join(errs...)
}
