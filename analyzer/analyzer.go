package analyzer

import (
	"regexp"
	"strings"
)

// Policy controls when a report blocks execution
type Policy struct {
	// ViolationThreshold is the number of violations above which the
	// source is blocked regardless of severity.
	ViolationThreshold int

	// BlockingSeverities lists the severities that block on a single match.
	BlockingSeverities []Severity
}

// PolicyDefaults returns the default blocking policy: block on any high
// severity violation, or on more than five violations of any severity.
func PolicyDefaults() Policy {
	return Policy{
		ViolationThreshold: 5,
		BlockingSeverities: []Severity{SeverityHigh},
	}
}

// Violation records a single (line, rule) match
type Violation struct {
	Line        int      `json:"line"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Report is the analyzer's verdict for one candidate script. It is created
// fresh per Analyze call and never mutated afterwards.
type Report struct {
	Allowed         bool        `json:"allowed"`
	Violations      []Violation `json:"violations"`
	ComplexityScore int         `json:"complexity_score"`
}

// Analyzer scans source text against a rule catalog and applies the
// blocking policy. It holds no per-call state and is safe for concurrent
// use.
type Analyzer struct {
	catalog *Catalog
	policy  Policy
}

// New creates an Analyzer over the given catalog and policy
func New(catalog *Catalog, policy Policy) *Analyzer {
	return &Analyzer{
		catalog: catalog,
		policy:  policy,
	}
}

// Complexity weights
const (
	violationPenalty = 10
	functionWeight   = 5
	classWeight      = 3
	linesPerPoint    = 10
	maxComplexity    = 100
)

var (
	functionDefRe = regexp.MustCompile(`\bfunction\b|=>`)
	classDefRe    = regexp.MustCompile(`\bclass\s`)
)

// Analyze scans source line-by-line and returns the security verdict.
// It is a pure function of its input: no I/O, no error paths, and two
// calls on the same source yield structurally identical reports.
func (a *Analyzer) Analyze(source string) *Report {
	if source == "" {
		return &Report{Allowed: true}
	}

	lines := strings.Split(source, "\n")

	var violations []Violation
	for i, line := range lines {
		for _, rule := range a.catalog.Rules() {
			if rule.Matcher.MatchString(line) {
				violations = append(violations, Violation{
					Line:        i + 1,
					Label:       rule.Label,
					Description: rule.Description,
					Severity:    rule.Severity,
				})
			}
		}
	}

	return &Report{
		Allowed:         a.allowed(violations),
		Violations:      violations,
		ComplexityScore: a.complexity(source, lines, violations),
	}
}

// allowed applies the blocking policy: a single violation at a blocking
// severity blocks, as does exceeding the violation count threshold.
func (a *Analyzer) allowed(violations []Violation) bool {
	if len(violations) > a.policy.ViolationThreshold {
		return false
	}

	for _, v := range violations {
		for _, blocking := range a.policy.BlockingSeverities {
			if v.Severity == blocking {
				return false
			}
		}
	}

	return true
}

// complexity computes the bounded heuristic score: a fixed penalty per
// violation, a length term, and per-construct weights for function and
// class definitions, clamped to [0,100].
func (a *Analyzer) complexity(source string, lines []string, violations []Violation) int {
	score := len(violations) * violationPenalty
	score += len(lines) / linesPerPoint
	score += len(functionDefRe.FindAllString(source, -1)) * functionWeight
	score += len(classDefRe.FindAllString(source, -1)) * classWeight

	if score > maxComplexity {
		return maxComplexity
	}
	return score
}
