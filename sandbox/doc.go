// Package sandbox provides bounded execution of untrusted scripts.
//
// The sandbox package implements the execution engine that runs an accepted
// script under a wall-clock timeout and returns a normalized result
// regardless of how the run terminates. It supports multiple backends:
// an in-process JavaScript interpreter (fast, weak isolation), a Node.js
// subprocess, and a container runtime (slower, strong isolation through
// host-enforced termination).
//
// The package defines the Sandbox interface and provides concrete
// implementations for each backend. Every execution gets a fresh,
// restricted environment whose only engineered surface is a captured
// console and a ctx-aware sleep helper; there is no shared mutable state
// between concurrent executions.
//
// Usage:
//
//	sb, err := sandbox.New(logger, cfg)
//	result, err := sb.Execute(ctx, sandbox.ExecuteRequest{
//	    Code:       "console.log('Hello, World!')",
//	    TimeoutSec: 10,
//	})
package sandbox
