package sandbox

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
)

// New creates the sandbox backend selected by the configuration
func New(logger *zap.Logger, cfg *config.Config) (Sandbox, error) {
	switch cfg.Sandbox.Backend {
	case "inprocess":
		return NewInProcessSandbox(logger, cfg.Sandbox.MaxOutputBytes), nil
	case "subprocess":
		return NewSubprocessSandbox(logger, cfg.Sandbox.NodeCommand, cfg.Sandbox.MaxOutputBytes), nil
	case "container":
		return NewContainerSandbox(logger, cfg.Sandbox.ContainerRuntime, cfg.Sandbox.ContainerImage,
			cfg.Sandbox.MemoryMB, cfg.Sandbox.MaxOutputBytes), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Sandbox.Backend)
	}
}
