// Package main is the entry point for the code interceptor MCP server.
//
// The interceptor server accepts untrusted JavaScript, runs a static
// security pre-check against a pattern catalog, and executes accepted
// scripts inside a sandbox under a wall-clock timeout. The analyzer
// verdict is advisory pre-filtering; isolation strength depends on the
// configured sandbox backend.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main
