// Package generate produces seed and completion mappings (spec.md §4.5):
// RandomMapper builds a total mapping from scratch, and a PartialMapper
// composes a process-assignment stage, a channel-primitive stage, and a
// random-fill stage (Proc ∘ Com ∘ Random) to complete whatever a caller's
// own stages left unmapped.
package generate
