package generate

import "errors"

// Sentinel errors for mapping generation.
var (
	// ErrNoSchedulers indicates the platform has no non-empty scheduler a
	// process could be assigned to.
	ErrNoSchedulers = errors.New("generate: platform has no non-empty scheduler")

	// ErrNoSuitablePrimitive indicates a channel's induced (source,
	// sinks) processor tuple is not supported by any primitive in the
	// platform — a constraint-violation error per spec.md §7.2, raised by
	// the generator rather than deferred to the oracle.
	ErrNoSuitablePrimitive = errors.New("generate: no primitive suitable for induced processor tuple")

	// ErrProcessMissingAssignment indicates the channel stage ran before
	// one of a channel's endpoint processes was assigned — Com must
	// follow Proc in the Proc ∘ Com ∘ Random composition.
	ErrProcessMissingAssignment = errors.New("generate: channel endpoint process has no assignment yet")
)
