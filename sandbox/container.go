// Package sandbox provides bounded execution of untrusted scripts.
//
// The ContainerSandbox runs scripts with Node.js inside a container with
// resource limits, no network, and all capabilities dropped. It is the
// strong-isolation backend: the host terminates the container at the
// deadline, so even a tight CPU-bound loop is preempted.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContainerSandbox implements Sandbox using a container runtime
// (docker or podman)
type ContainerSandbox struct {
	logger         *zap.Logger
	runtime        string
	image          string
	memoryMB       int
	maxOutputBytes int
	cmdRunner      CommandRunner
	fs             FileSystem
}

// ContainerOption defines a functional option for ContainerSandbox
type ContainerOption func(*ContainerSandbox)

// WithContainerCommandRunner sets the CommandRunner for ContainerSandbox
func WithContainerCommandRunner(cmdRunner CommandRunner) ContainerOption {
	return func(c *ContainerSandbox) {
		c.cmdRunner = cmdRunner
	}
}

// WithContainerFileSystem sets the FileSystem for ContainerSandbox
func WithContainerFileSystem(fs FileSystem) ContainerOption {
	return func(c *ContainerSandbox) {
		c.fs = fs
	}
}

// NewContainerSandbox creates a container sandbox. runtime selects the
// container engine binary, typically "docker" or "podman".
func NewContainerSandbox(logger *zap.Logger, runtime, image string, memoryMB, maxOutputBytes int, opts ...ContainerOption) *ContainerSandbox {
	sb := &ContainerSandbox{
		logger:         logger,
		runtime:        runtime,
		image:          image,
		memoryMB:       memoryMB,
		maxOutputBytes: maxOutputBytes,
		cmdRunner:      &RealCommandRunner{},
		fs:             &RealFileSystem{},
	}

	for _, opt := range opts {
		opt(sb)
	}

	return sb
}

// Execute runs the script in a locked-down container under the timeout
func (c *ContainerSandbox) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	start := time.Now()

	tempDir, err := c.fs.MkdirTemp("", "interceptor-exec-*")
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if rmErr := c.fs.RemoveAll(tempDir); rmErr != nil {
			c.logger.Error("failed to remove temp directory", zap.String("path", tempDir), zap.Error(rmErr))
		}
	}()

	scriptPath := filepath.Join(tempDir, ScriptFileName)
	if writeErr := c.fs.WriteFile(scriptPath, []byte(sleepPrelude+req.Code), FilePermission); writeErr != nil {
		return ExecuteResult{}, fmt.Errorf("failed to write script: %w", writeErr)
	}

	containerName := fmt.Sprintf("interceptor-exec-%d", time.Now().UnixNano())

	cmdArgs := []string{
		c.runtime, "run",
		"--name", containerName,
		"--rm",
		"-v", fmt.Sprintf("%s:/workdir", tempDir),
		"--workdir", "/workdir",
		"--memory", fmt.Sprintf("%dm", c.memoryMB),
		"--network", "none",
		"--security-opt", "no-new-privileges:true",
		"--user", "nobody",
		"--cap-drop", "ALL",
		c.image,
		"node", ScriptFileName,
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.TimeoutSec)*time.Second)
	defer cancel()

	stdout, stderr, exitCode, runErr := c.cmdRunner.RunCommand(runCtx, cmdArgs)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		c.stopContainer(ctx, containerName)

		return ExecuteResult{
			Success:        false,
			Output:         truncateOutput(stdout, c.maxOutputBytes),
			Error:          timeoutError(req.TimeoutSec),
			ExitCode:       1,
			ElapsedSeconds: time.Since(start).Seconds(),
		}, nil
	}

	if runErr != nil {
		return ExecuteResult{}, fmt.Errorf("failed to run container: %w", runErr)
	}

	result := ExecuteResult{
		Success:        exitCode == 0,
		Output:         truncateOutput(stdout, c.maxOutputBytes),
		ExitCode:       exitCode,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	if !result.Success {
		result.ExitCode = 1
		result.Error = strings.TrimSpace(truncateOutput(stderr, c.maxOutputBytes))
	}

	return result, nil
}

// stopContainer best-effort stops a container left running past the
// deadline
func (c *ContainerSandbox) stopContainer(ctx context.Context, containerName string) {
	if _, _, _, err := c.cmdRunner.RunCommand(ctx, []string{c.runtime, "stop", containerName}); err != nil {
		c.logger.Warn("failed to stop container after timeout", zap.String("container", containerName), zap.Error(err))
	}
}
