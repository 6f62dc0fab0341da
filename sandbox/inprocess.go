// Package sandbox provides bounded execution of untrusted scripts.
//
// The InProcessSandbox evaluates JavaScript inside an embedded interpreter
// in the server process. It is the fast backend: no process spawn, no
// runtime dependency, but the isolation is a language-level restricted
// scope rather than a process boundary.
package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// interruptGrace bounds how long the timeout branch waits for the
// interpreter to observe an interrupt before abandoning the evaluation
// goroutine. Interrupts preempt pure script loops promptly; only a host
// call that ignores its context can exhaust the grace period, in which
// case the goroutine is leaked and logged.
const interruptGrace = 250 * time.Millisecond

// InProcessSandbox implements Sandbox using an embedded JavaScript
// interpreter. Each execution gets a fresh runtime whose global scope
// exposes only the captured console and a ctx-aware sleep helper.
type InProcessSandbox struct {
	logger         *zap.Logger
	maxOutputBytes int
}

// NewInProcessSandbox creates an in-process sandbox. maxOutputBytes caps
// captured console output; zero disables the cap.
func NewInProcessSandbox(logger *zap.Logger, maxOutputBytes int) *InProcessSandbox {
	return &InProcessSandbox{
		logger:         logger,
		maxOutputBytes: maxOutputBytes,
	}
}

// Execute evaluates the script and races it against the timeout. Thrown
// script errors and timeouts are normalized into the result; Execute
// itself only fails on runtime construction problems, which do not occur
// with the embedded interpreter.
func (s *InProcessSandbox) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.TimeoutSec)*time.Second)
	defer cancel()

	vm := goja.New()
	capture := newCaptureBuffer(s.maxOutputBytes)

	if err := bindConsole(vm, capture); err != nil {
		return ExecuteResult{}, err
	}
	if err := bindSleep(vm, runCtx); err != nil {
		return ExecuteResult{}, err
	}

	done := make(chan error, 1)
	go func() {
		done <- evaluate(vm, req.Code)
	}()

	select {
	case evalErr := <-done:
		return s.normalize(capture, evalErr, req.TimeoutSec, start), nil

	case <-runCtx.Done():
		vm.Interrupt(timeoutError(req.TimeoutSec))

		select {
		case <-done:
		case <-time.After(interruptGrace):
			// The evaluation goroutine is stuck in a host call that
			// ignored its context. Abandon it rather than block the
			// request; the leak is the documented cost of the
			// in-process backend.
			s.logger.Warn("abandoning evaluation goroutine after interrupt grace period")
		}

		return ExecuteResult{
			Success:        false,
			Output:         capture.String(),
			Error:          timeoutError(req.TimeoutSec),
			ExitCode:       1,
			ElapsedSeconds: time.Since(start).Seconds(),
		}, nil
	}
}

// normalize maps the evaluation outcome onto the result contract
func (s *InProcessSandbox) normalize(capture *captureBuffer, evalErr error, timeoutSec int, start time.Time) ExecuteResult {
	result := ExecuteResult{
		Success:        true,
		Output:         capture.String(),
		ExitCode:       0,
		ElapsedSeconds: time.Since(start).Seconds(),
	}

	if evalErr != nil {
		result.Success = false
		result.ExitCode = 1
		result.Error = scriptErrorMessage(evalErr, timeoutSec)
	}

	return result
}

// evaluate runs the script to settlement. The source is wrapped in an
// async IIFE so top-level await is legal; the wrapper promise has settled
// by the time RunString returns because every await in the restricted
// scope resolves synchronously.
func evaluate(vm *goja.Runtime, code string) error {
	value, err := vm.RunString("(async () => {\n" + code + "\n})()")
	if err != nil {
		return err
	}

	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return nil
	}

	switch promise.State() {
	case goja.PromiseStateRejected:
		return errors.New(promise.Result().String())
	case goja.PromiseStatePending:
		return errors.New("script did not run to completion: a pending promise was never settled")
	default:
		return nil
	}
}

// scriptErrorMessage extracts a caller-facing message from an evaluation
// error. Interrupts are reported as timeouts; thrown values are rendered
// without the interpreter's stack trace.
func scriptErrorMessage(evalErr error, timeoutSec int) string {
	var interrupted *goja.InterruptedError
	if errors.As(evalErr, &interrupted) {
		return timeoutError(timeoutSec)
	}

	var exception *goja.Exception
	if errors.As(evalErr, &exception) {
		return exception.Value().String()
	}

	return evalErr.Error()
}

// bindSleep installs sleep(ms), the one suspension point the restricted
// scope offers. It blocks the evaluation goroutine but honors the
// execution context. When the deadline expires mid-sleep the VM is
// interrupted before the call returns, so no further statement of the
// script runs.
func bindSleep(vm *goja.Runtime, ctx context.Context) error {
	return vm.Set("sleep", func(call goja.FunctionCall) goja.Value {
		ms := call.Argument(0).ToInteger()
		if ms < 0 {
			ms = 0
		}

		timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		}

		return goja.Undefined()
	})
}
