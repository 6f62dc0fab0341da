// Package sandbox provides bounded execution of untrusted scripts.
//
// The SubprocessSandbox runs scripts under a Node.js process on the host.
// Process termination is enforced by the command context, so a runaway
// script is killed at the deadline regardless of whether it ever reaches a
// suspension point.
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

// SubprocessSandbox implements Sandbox by spawning a Node.js process per
// execution
type SubprocessSandbox struct {
	logger         *zap.Logger
	nodeCommand    string
	maxOutputBytes int
	cmdRunner      CommandRunner
	fs             FileSystem
}

// SubprocessOption defines a functional option for SubprocessSandbox
type SubprocessOption func(*SubprocessSandbox)

// WithCommandRunner sets the CommandRunner for SubprocessSandbox
func WithCommandRunner(cmdRunner CommandRunner) SubprocessOption {
	return func(s *SubprocessSandbox) {
		s.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem for SubprocessSandbox
func WithFileSystem(fs FileSystem) SubprocessOption {
	return func(s *SubprocessSandbox) {
		s.fs = fs
	}
}

// NewSubprocessSandbox creates a subprocess sandbox that runs scripts with
// the given Node command
func NewSubprocessSandbox(logger *zap.Logger, nodeCommand string, maxOutputBytes int, opts ...SubprocessOption) *SubprocessSandbox {
	sb := &SubprocessSandbox{
		logger:         logger,
		nodeCommand:    nodeCommand,
		maxOutputBytes: maxOutputBytes,
		cmdRunner:      &RealCommandRunner{},
		fs:             &RealFileSystem{},
	}

	for _, opt := range opts {
		opt(sb)
	}

	return sb
}

// Execute writes the script to a private working directory and runs it
// under the timeout. A non-zero exit maps to a failed result with the
// process stderr as the error text; an expired deadline maps to the
// timeout failure.
func (s *SubprocessSandbox) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	start := time.Now()

	tempDir, err := s.fs.MkdirTemp("", "interceptor-exec-*")
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if rmErr := s.fs.RemoveAll(tempDir); rmErr != nil {
			s.logger.Error("failed to remove temp directory", zap.String("path", tempDir), zap.Error(rmErr))
		}
	}()

	scriptPath := filepath.Join(tempDir, ScriptFileName)
	if writeErr := s.fs.WriteFile(scriptPath, []byte(sleepPrelude+req.Code), FilePermission); writeErr != nil {
		return ExecuteResult{}, fmt.Errorf("failed to write script: %w", writeErr)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.TimeoutSec)*time.Second)
	defer cancel()

	stdout, stderr, exitCode, runErr := s.cmdRunner.RunCommand(runCtx, []string{s.nodeCommand, scriptPath})

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return ExecuteResult{
			Success:        false,
			Output:         truncateOutput(stdout, s.maxOutputBytes),
			Error:          timeoutError(req.TimeoutSec),
			ExitCode:       1,
			ElapsedSeconds: time.Since(start).Seconds(),
		}, nil
	}

	if runErr != nil {
		return ExecuteResult{}, fmt.Errorf("failed to run %s: %w", s.nodeCommand, runErr)
	}

	result := ExecuteResult{
		Success:        exitCode == 0,
		Output:         truncateOutput(stdout, s.maxOutputBytes),
		ExitCode:       exitCode,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	if !result.Success {
		result.ExitCode = 1
		result.Error = strings.TrimSpace(truncateOutput(stderr, s.maxOutputBytes))
	}

	return result, nil
}
