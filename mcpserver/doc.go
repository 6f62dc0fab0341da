// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the interceptor pipeline as tools. It uses the mark3labs/mcp-go library
// to handle the protocol details and provides two tools: execute_code,
// which runs the full analyze-then-execute pipeline, and analyze_code,
// which returns the static security report without executing anything.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, analyzer, interceptor)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
