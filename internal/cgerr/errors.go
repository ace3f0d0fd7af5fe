// Package cgerr defines the sentinel error categories shared across
// cobot-guard's core packages, matching the error taxonomy the runtime
// dispatcher and history engine rely on to decide whether a failure is
// surfaced to the caller, logged and discarded, or treated as a
// not-yet-registered body.
package cgerr

import "errors"

var (
	// ErrPrecondition marks a violated precondition: an out-of-order
	// timestamp, an unknown timestamp lookup, a mode comparison across
	// differing key sets, geometric-median on empty input, or
	// reduce_between on an absent or out-of-order mode.
	ErrPrecondition = errors.New("cobot-guard: precondition violated")

	// ErrNonConvergence marks a numeric routine (Weiszfeld iteration)
	// that failed to converge within its iteration cap.
	ErrNonConvergence = errors.New("cobot-guard: failed to converge")

	// ErrRegistryMiss marks a state message referring to a body id the
	// registry has no record of and cannot auto-register (unknown
	// robot id).
	ErrRegistryMiss = errors.New("cobot-guard: unknown registry entry")

	// ErrParse marks a codec failure at the wire edge.
	ErrParse = errors.New("cobot-guard: failed to parse message")
)
