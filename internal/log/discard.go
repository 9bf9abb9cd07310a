package log

import (
	"context"
	"log/slog"
)

// discardHandler mirrors slog.DiscardHandler (added in Go 1.24) so the
// module builds with the Go 1.21 toolchain.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
