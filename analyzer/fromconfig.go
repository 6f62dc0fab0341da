package analyzer

import (
	"fmt"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
)

// NewFromConfig builds an Analyzer from the application configuration:
// the default catalog unless an alternate catalog file is configured, and
// the configured blocking policy.
func NewFromConfig(cfg *config.Config) (*Analyzer, error) {
	catalog := DefaultCatalog()

	if path := cfg.Security.CatalogFile; path != "" {
		loaded, err := LoadCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern catalog: %w", err)
		}
		catalog = loaded
	}

	severities := make([]Severity, 0, len(cfg.Security.BlockingSeverities))
	for _, s := range cfg.Security.BlockingSeverities {
		severity := Severity(s)
		if !severity.Valid() {
			return nil, fmt.Errorf("invalid blocking severity: %s", s)
		}
		severities = append(severities, severity)
	}

	return New(catalog, Policy{
		ViolationThreshold: cfg.Security.ViolationCountThreshold,
		BlockingSeverities: severities,
	}), nil
}
