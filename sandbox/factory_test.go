package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
)

func factoryConfig(backend string) *config.Config {
	return &config.Config{
		Sandbox: config.SandboxConfig{
			Backend:             backend,
			MaxExecutionTimeSec: 30,
			MaxOutputBytes:      8192,
			NodeCommand:         "node",
			ContainerRuntime:    "docker",
			ContainerImage:      "node:20-alpine",
			MemoryMB:            256,
		},
	}
}

func TestNewSelectsBackend(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("InProcess", func(t *testing.T) {
		sb, err := New(logger, factoryConfig("inprocess"))
		require.NoError(t, err)
		assert.IsType(t, &InProcessSandbox{}, sb)
	})

	t.Run("Subprocess", func(t *testing.T) {
		sb, err := New(logger, factoryConfig("subprocess"))
		require.NoError(t, err)
		assert.IsType(t, &SubprocessSandbox{}, sb)
	})

	t.Run("Container", func(t *testing.T) {
		sb, err := New(logger, factoryConfig("container"))
		require.NoError(t, err)
		assert.IsType(t, &ContainerSandbox{}, sb)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := New(logger, factoryConfig("chroot"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported backend")
	})
}
