package analyzer

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Severity classifies how dangerous a matched construct is
type Severity string

// Severity levels, from least to most dangerous
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a recognized severity level
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Rule is a single regex-based detector for one dangerous construct.
// Rules are immutable after catalog construction.
type Rule struct {
	Matcher     *regexp.Regexp
	Label       string
	Description string
	Severity    Severity
}

// Catalog is an ordered, read-only table of rules. It is built once at
// startup and shared by reference across all analyzer calls; nothing
// mutates it at runtime, so no locking is needed.
type Catalog struct {
	rules []Rule
}

// Rules returns the catalog's rules in insertion order
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// Len returns the number of rules in the catalog
func (c *Catalog) Len() int {
	return len(c.rules)
}

// DefaultCatalog returns the built-in rule table covering dynamic code
// execution, network access, host process access and unbounded loops.
func DefaultCatalog() *Catalog {
	return &Catalog{rules: []Rule{
		{
			Matcher:     regexp.MustCompile(`(?i)eval\s*\(`),
			Label:       "dynamic-eval",
			Description: "Dynamic code evaluation via eval()",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)function\s*\(`),
			Label:       "function-constructor",
			Description: "Code construction via the Function constructor",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)fetch\s*\(`),
			Label:       "network-fetch",
			Description: "Outbound network request via fetch()",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)process\.`),
			Label:       "process-access",
			Description: "Access to the host process object",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)while\s*\(\s*true\s*\)`),
			Label:       "infinite-while",
			Description: "Unbounded while(true) loop",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)for\s*\(\s*;\s*;\s*\)`),
			Label:       "infinite-for",
			Description: "Unbounded for(;;) loop",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)child_process`),
			Label:       "child-process",
			Description: "Host process spawning via child_process",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)XMLHttpRequest`),
			Label:       "xml-http-request",
			Description: "Outbound network request via XMLHttpRequest",
			Severity:    SeverityHigh,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)\brequire\s*\(`),
			Label:       "module-require",
			Description: "Module loading via require()",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)^\s*import\s`),
			Label:       "module-import",
			Description: "Module loading via an import statement",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)document\.write`),
			Label:       "document-write",
			Description: "Direct document mutation via document.write",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)innerHTML\s*=`),
			Label:       "inner-html",
			Description: "Markup injection via innerHTML assignment",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`__proto__`),
			Label:       "proto-access",
			Description: "Prototype chain manipulation via __proto__",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)globalThis`),
			Label:       "global-this",
			Description: "Global scope access via globalThis",
			Severity:    SeverityMedium,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)setTimeout\s*\(`),
			Label:       "set-timeout",
			Description: "Deferred execution via setTimeout",
			Severity:    SeverityLow,
		},
		{
			Matcher:     regexp.MustCompile(`(?i)setInterval\s*\(`),
			Label:       "set-interval",
			Description: "Repeated execution via setInterval",
			Severity:    SeverityLow,
		},
	}}
}

// catalogFile is the on-disk YAML representation of a catalog
type catalogFile struct {
	Rules []catalogRule `yaml:"rules"`
}

type catalogRule struct {
	Pattern     string `yaml:"pattern"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
}

// LoadCatalog reads an alternate rule catalog from a YAML file. Rule order
// in the file is preserved.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no rules", path)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, r := range file.Rules {
		matcher, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern in rule %d (%s): %w", i, r.Label, err)
		}

		severity := Severity(r.Severity)
		if !severity.Valid() {
			return nil, fmt.Errorf("invalid severity %q in rule %d (%s)", r.Severity, i, r.Label)
		}

		if r.Label == "" {
			return nil, fmt.Errorf("rule %d has no label", i)
		}

		rules = append(rules, Rule{
			Matcher:     matcher,
			Label:       r.Label,
			Description: r.Description,
			Severity:    severity,
		})
	}

	return &Catalog{rules: rules}, nil
}
