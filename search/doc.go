// Package search defines the interfaces every search engine subpackage
// (randomwalk, genetic, anneal, graddescent, designcenter) shares: a
// narrow Oracle view onto oracle.Oracle.Evaluate, and an Engine that runs
// to completion and reports an Outcome (spec.md §4.4).
package search
