package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityLow.Valid())
	assert.True(t, SeverityMedium.Valid())
	assert.True(t, SeverityHigh.Valid())
	assert.False(t, Severity("critical").Valid())
	assert.False(t, Severity("").Valid())
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	require.NotZero(t, catalog.Len())

	seen := make(map[string]bool)
	for _, rule := range catalog.Rules() {
		assert.NotNil(t, rule.Matcher)
		assert.NotEmpty(t, rule.Label)
		assert.NotEmpty(t, rule.Description)
		assert.True(t, rule.Severity.Valid())

		assert.False(t, seen[rule.Label], "duplicate label %s", rule.Label)
		seen[rule.Label] = true
	}
}

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	t.Run("ValidFile", func(t *testing.T) {
		path := writeCatalogFile(t, `
rules:
  - pattern: 'dangerous\('
    label: custom-danger
    description: A custom dangerous call
    severity: high
  - pattern: 'risky\('
    label: custom-risk
    description: A custom risky call
    severity: low
`)

		catalog, err := LoadCatalog(path)
		require.NoError(t, err)
		require.Equal(t, 2, catalog.Len())

		// File order is preserved
		assert.Equal(t, "custom-danger", catalog.Rules()[0].Label)
		assert.Equal(t, SeverityHigh, catalog.Rules()[0].Severity)
		assert.Equal(t, "custom-risk", catalog.Rules()[1].Label)

		// The loaded catalog drives analysis like the built-in one
		a := New(catalog, PolicyDefaults())
		assert.False(t, a.Analyze("dangerous('x')").Allowed)
		assert.True(t, a.Analyze("eval('x')").Allowed)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read catalog file")
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		path := writeCatalogFile(t, "rules: [unbalanced")
		_, err := LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse catalog file")
	})

	t.Run("EmptyRules", func(t *testing.T) {
		path := writeCatalogFile(t, "rules: []")
		_, err := LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contains no rules")
	})

	t.Run("InvalidPattern", func(t *testing.T) {
		path := writeCatalogFile(t, `
rules:
  - pattern: '['
    label: broken
    description: Broken pattern
    severity: high
`)
		_, err := LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("InvalidSeverity", func(t *testing.T) {
		path := writeCatalogFile(t, `
rules:
  - pattern: 'x'
    label: odd
    description: Odd severity
    severity: catastrophic
`)
		_, err := LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid severity")
	})

	t.Run("MissingLabel", func(t *testing.T) {
		path := writeCatalogFile(t, `
rules:
  - pattern: 'x'
    description: No label
    severity: low
`)
		_, err := LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no label")
	})
}
