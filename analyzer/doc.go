// Package analyzer provides static security analysis for untrusted scripts.
//
// The analyzer package implements the pre-execution security gate. It scans
// submitted source code line-by-line against an ordered catalog of dangerous
// construct rules, accumulates violations, computes a bounded complexity
// score, and applies the allow/block policy.
//
// The scan is purely textual: it tests regular expressions against raw
// lines and never evaluates the source. It therefore cannot be tricked into
// executing code, but it also cannot see through encoding or obfuscation.
// The verdict is advisory, not a proof of safety.
//
// Usage:
//
//	a := analyzer.New(analyzer.DefaultCatalog(), analyzer.PolicyDefaults())
//	report := a.Analyze("eval('2+2')")
//	if !report.Allowed {
//	    // reject before execution
//	}
package analyzer
