// Package klog provides the structured logger shared by every kpnflow
// component. It is a thin wrapper over log/slog: a single process-wide
// logger, configured once at startup, handed down by value (slog.Logger is
// safe for concurrent use) to every worker goroutine the oracle spawns.
package klog

import (
	"io"
	"log/slog"
	"os"
)

// New builds a leveled, text-handler logger writing to w. Passing a nil w
// defaults to os.Stderr.
func New(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(handler)
}

// Discard returns a logger that drops every record; used by tests and by
// components that were not handed an explicit logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
