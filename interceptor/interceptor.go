package interceptor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/analyzer"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/sandbox"
)

// Validation errors surfaced before the analyzer ever sees the payload
var (
	ErrEmptyCode = errors.New("code must not be empty")
)

// BlockedMessage is the error text returned when the analyzer disallows a
// script
const BlockedMessage = "Code blocked by security policy"

// Request is the inbound payload for one interception call. TimeoutSec is
// optional; zero means use the configured default, and values above the
// configured cap are clamped to it.
type Request struct {
	Code       string `json:"code"`
	TimeoutSec int    `json:"timeout_sec,omitempty"`
}

// Response is the assembled outcome: the execution result (or the block
// short-circuit) together with the security report that produced it.
type Response struct {
	Success        bool             `json:"success"`
	Output         string           `json:"output"`
	Error          string           `json:"error"`
	ExitCode       int              `json:"exit_code"`
	ExecutionTime  float64          `json:"execution_time"`
	SecurityReport *analyzer.Report `json:"security_report"`
}

// Interceptor runs the analyze-then-execute pipeline for each request. It
// holds no per-request state and is safe for concurrent use.
type Interceptor struct {
	cfg      *config.Config
	logger   *zap.Logger
	analyzer *analyzer.Analyzer
	sandbox  sandbox.Sandbox
}

// New creates an Interceptor over the given analyzer and sandbox
func New(cfg *config.Config, logger *zap.Logger, a *analyzer.Analyzer, sb sandbox.Sandbox) *Interceptor {
	return &Interceptor{
		cfg:      cfg,
		logger:   logger,
		analyzer: a,
		sandbox:  sb,
	}
}

// Run validates, analyzes and (if allowed) executes one script. The
// analyzer verdict is advisory pre-filtering, not a proof of safety; the
// sandbox backend provides whatever isolation the deployment configured.
func (i *Interceptor) Run(ctx context.Context, req Request) (Response, error) {
	if req.Code == "" {
		return Response{}, ErrEmptyCode
	}

	if limit := i.cfg.Security.MaxCodeBytes; len(req.Code) > limit {
		return Response{}, fmt.Errorf("code exceeds maximum size of %d bytes", limit)
	}

	report := i.analyzer.Analyze(req.Code)

	if !report.Allowed {
		i.logger.Info("code blocked by security policy",
			zap.Int("violations", len(report.Violations)),
			zap.Int("complexity_score", report.ComplexityScore))

		return Response{
			Success:        false,
			Output:         "",
			Error:          BlockedMessage,
			ExitCode:       1,
			ExecutionTime:  0,
			SecurityReport: report,
		}, nil
	}

	timeoutSec := i.effectiveTimeout(req.TimeoutSec)

	i.logger.Info("executing accepted code",
		zap.Int("timeout_sec", timeoutSec),
		zap.Int("complexity_score", report.ComplexityScore))

	result, err := i.sandbox.Execute(ctx, sandbox.ExecuteRequest{
		Code:       req.Code,
		TimeoutSec: timeoutSec,
	})
	if err != nil {
		return Response{}, fmt.Errorf("sandbox execution failed: %w", err)
	}

	i.logger.Info("execution completed",
		zap.Bool("success", result.Success),
		zap.Int("exit_code", result.ExitCode),
		zap.Float64("elapsed_seconds", result.ElapsedSeconds))

	return Response{
		Success:        result.Success,
		Output:         result.Output,
		Error:          result.Error,
		ExitCode:       result.ExitCode,
		ExecutionTime:  result.ElapsedSeconds,
		SecurityReport: report,
	}, nil
}

// effectiveTimeout applies the configured cap to the caller's timeout; an
// omitted timeout gets the full default budget.
func (i *Interceptor) effectiveTimeout(requested int) int {
	ceiling := i.cfg.Sandbox.MaxExecutionTimeSec
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}
