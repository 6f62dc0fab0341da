// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the interceptor pipeline as tools. It uses the mark3labs/mcp-go library
// to handle the protocol details and provides the execute_code and
// analyze_code tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/analyzer"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/interceptor"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config      *config.Config
	logger      *zap.Logger
	analyzer    *analyzer.Analyzer
	interceptor *interceptor.Interceptor
	mcpServer   *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, a *analyzer.Analyzer, ic *interceptor.Interceptor) (*MCPServer, error) {
	s := &MCPServer{
		config:      cfg,
		logger:      logger,
		analyzer:    a,
		interceptor: ic,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("sandbox.backend", s.config.Sandbox.Backend),
		zap.Int("sandbox.max_execution_time_sec", s.config.Sandbox.MaxExecutionTimeSec),
		zap.Int("sandbox.max_output_bytes", s.config.Sandbox.MaxOutputBytes),
		zap.Int("security.violation_count_threshold", s.config.Security.ViolationCountThreshold),
		zap.Strings("security.blocking_severities", s.config.Security.BlockingSeverities),
		zap.Int("security.max_code_bytes", s.config.Security.MaxCodeBytes),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("code-interceptor", "A security-gated code execution server")

	s.registerExecuteCodeTool()
	s.registerAnalyzeCodeTool()

	return s, nil
}

// registerExecuteCodeTool registers the execute_code tool
func (s *MCPServer) registerExecuteCodeTool() {
	tool := mcp.Tool{
		Name:        "execute_code",
		Description: "Analyze untrusted JavaScript and, if allowed, execute it in a sandbox",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "User-provided source code",
				},
				"timeout_sec": map[string]any{
					"type":        "number",
					"description": "Wall-clock execution budget in seconds (optional, capped by configuration)",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteCode)
}

// registerAnalyzeCodeTool registers the analyze_code tool
func (s *MCPServer) registerAnalyzeCodeTool() {
	tool := mcp.Tool{
		Name:        "analyze_code",
		Description: "Run the static security analysis only, without executing anything",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "User-provided source code",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleAnalyzeCode)
}

// handleExecuteCode handles the execute_code tool
func (s *MCPServer) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("code execution requested")

	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	timeoutSec := request.GetInt("timeout_sec", 0)

	resp, err := s.interceptor.Run(ctx, interceptor.Request{
		Code:       code,
		TimeoutSec: timeoutSec,
	})
	if err != nil {
		s.logger.Error("interception failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	return jsonResult(resp)
}

// handleAnalyzeCode handles the analyze_code tool
func (s *MCPServer) handleAnalyzeCode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	report := s.analyzer.Analyze(code)

	s.logger.Info("analysis completed",
		zap.Bool("allowed", report.Allowed),
		zap.Int("violations", len(report.Violations)),
		zap.Int("complexity_score", report.ComplexityScore))

	return jsonResult(report)
}

// jsonResult marshals a payload into a text tool result
func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// errorResult builds an error-flagged text tool result
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
