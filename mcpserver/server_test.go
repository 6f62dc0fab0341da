package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/analyzer"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/interceptor"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/sandbox"
)

// MockSandbox implements sandbox.Sandbox for testing
type MockSandbox struct {
	result sandbox.ExecuteResult
	err    error
}

func (m *MockSandbox) Execute(_ context.Context, _ sandbox.ExecuteRequest) (sandbox.ExecuteResult, error) {
	return m.result, m.err
}

func serverConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Sandbox: config.SandboxConfig{
			Backend:             "inprocess",
			MaxExecutionTimeSec: 30,
			MaxOutputBytes:      8192,
		},
		Security: config.SecurityConfig{
			ViolationCountThreshold: 5,
			BlockingSeverities:      []string{"high"},
			MaxCodeBytes:            10000,
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := serverConfig()

	a, err := analyzer.NewFromConfig(cfg)
	require.NoError(t, err)

	ic := interceptor.New(cfg, logger, a, &MockSandbox{})

	server, err := New(cfg, logger, a, ic)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, a, server.analyzer)
	assert.Equal(t, ic, server.interceptor)
	assert.NotNil(t, server.GetMCPServer())
}

func TestJSONResult(t *testing.T) {
	report := &analyzer.Report{
		Allowed:         true,
		ComplexityScore: 3,
	}

	result, err := jsonResult(report)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	assert.False(t, result.IsError)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"allowed":true`)
	assert.Contains(t, text.Text, `"complexity_score":3`)
}

func TestErrorResult(t *testing.T) {
	result := errorResult("Execution failed: boom")

	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "boom")
}
