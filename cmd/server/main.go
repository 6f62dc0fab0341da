// Package main is the entry point for the code interceptor MCP server.
//
// The interceptor server accepts untrusted JavaScript, runs a static
// security pre-check against a pattern catalog, and executes accepted
// scripts inside a sandbox under a wall-clock timeout. The server supports
// both stdio and HTTP transports and pluggable sandbox backends
// (in-process interpreter, Node.js subprocess, container).
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/analyzer"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/config"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/interceptor"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/logger"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/mcpserver"
	"github.com/likhonsdevbd/hybrid-code-interceptor-sandbox/sandbox"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Security analyzer with catalog and policy from config
			analyzer.NewFromConfig,

			// Sandbox backend based on config
			sandbox.New,

			// Interceptor pipeline
			interceptor.New,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
