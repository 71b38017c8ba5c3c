// Package trace defines trace segments and the Generator contract. See
// segment.go for the tagged union and replay.go for a fixed-log Generator
// implementation.
package trace
