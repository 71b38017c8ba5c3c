// Package oracle is the memoized, optionally parallel mapping evaluator
// search engines drive (spec.md §4.3): it decomposes a mapping into the
// processor/primitive groups a trace graph needs, dispatches a Simulator
// across a worker pool, and guarantees at-most-one evaluation per distinct
// mapping key, persisting results to (and resuming from) a CSV cache.
package oracle
