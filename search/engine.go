package search

import (
	"context"

	"github.com/kpnflow/dse/oracle"
	"github.com/kpnflow/dse/represent"
)

// Oracle is the view every search engine needs onto the cost oracle —
// satisfied directly by *oracle.Oracle.
type Oracle interface {
	Evaluate(ctx context.Context, vectors []represent.Vector) ([]oracle.Result, error)
}

// Outcome is what an Engine returns: the best mapping vector found, its
// evaluation, and how many evaluations the run requested from the oracle
// (repeats of the same vector are counted each time).
type Outcome struct {
	Best        represent.Vector
	BestResult  oracle.Result
	Evaluations int
}

// Engine runs one search strategy to completion.
type Engine interface {
	Run(ctx context.Context) (Outcome, error)
}

// Less reports whether a is a better single-objective result than b,
// i.e. strictly lower exec_time — the tie-break every engine here uses
// when only exec_time is enabled (spec.md §4.4's default objective).
func Less(a, b oracle.Result) bool {
	return a.ExecTime < b.ExecTime
}
