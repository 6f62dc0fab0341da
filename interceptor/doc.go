// Package interceptor composes the security analyzer and the sandbox into
// the per-request execution pipeline.
//
// For each request the interceptor validates the payload, analyzes the
// source, short-circuits with a block response when the analyzer
// disallows it, and otherwise executes the script under the configured
// timeout. Every script-originated failure mode is returned as data; the
// error return is reserved for invalid payloads and infrastructure
// faults.
//
// Usage:
//
//	ic := interceptor.New(cfg, logger, a, sb)
//	resp, err := ic.Run(ctx, interceptor.Request{Code: "console.log('hi')"})
package interceptor
