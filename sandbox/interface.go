// Package sandbox provides bounded execution of untrusted scripts.
//
// The sandbox package implements the execution engine that runs an accepted
// script under a wall-clock timeout and normalizes the outcome. It supports
// multiple backends: an in-process JavaScript interpreter, a Node.js
// subprocess, and a container runtime.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ExecuteRequest represents the parameters for one script execution
type ExecuteRequest struct {
	Code       string
	TimeoutSec int
}

// ExecuteResult represents the normalized outcome of one script execution.
// Script-originated failures (thrown errors, timeouts) are reported here,
// never as Go errors; the error return of Execute is reserved for
// infrastructure faults such as a missing runtime or an unwritable
// working directory.
type ExecuteResult struct {
	Success        bool
	Output         string
	Error          string
	ExitCode       int
	ElapsedSeconds float64
}

// Sandbox runs an accepted script in a restricted environment. The caller
// is expected to have passed the script through the security analyzer
// first; the sandbox itself performs no pattern filtering.
type Sandbox interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error)
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Command comes from operator configuration

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// FileSystem defines an interface for the file system operations the
// process-based backends need
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm) //nolint:gosec // Perm is the package's own constant
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// FilePermission is the mode scripts are written with
const FilePermission = 0600

// ScriptFileName is the name the script is written under in the sandbox
// working directory. The .mjs extension makes Node treat it as an ES
// module, which permits top-level await.
const ScriptFileName = "script.mjs"

// sleepPrelude is prepended to scripts run by the process-based backends
// so that the sleep helper available in the in-process interpreter exists
// there too.
const sleepPrelude = "const sleep = (ms) => new Promise((resolve) => setTimeout(resolve, ms));\n"

// timeoutError formats the failure message for an execution that hit the
// wall-clock limit
func timeoutError(timeoutSec int) string {
	return fmt.Sprintf("Execution timeout after %ds", timeoutSec)
}

// truncateOutput caps captured output at maxBytes, marking the cut.
// A maxBytes of zero or less disables truncation.
func truncateOutput(output string, maxBytes int) string {
	if maxBytes <= 0 || len(output) <= maxBytes {
		return output
	}
	return output[:maxBytes] + "\n... (output truncated)"
}
