// Package bootlog provides the bootloader's logging facade: a zero-heap
// slog.Handler that writes structured text to a single io.Writer (the
// debug UART on-device, stderr on the host), grounded on
// telemetry/slog.go's SlogHandler with the OTLP-queue half removed — a
// serial bootloader has no network path to ship logs over.
package bootlog

import (
	"context"
	"io"
	"log/slog"
)

// Handler wraps slog.NewTextHandler, matching SlogHandler's shape but
// without the telemetry queue: Handle only ever writes to textHandler.
type Handler struct {
	textHandler slog.Handler
}

// New creates a Logger that writes text-formatted records to w.
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(&Handler{textHandler: slog.NewTextHandler(w, opts)})
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.textHandler.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	return h.textHandler.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{textHandler: h.textHandler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{textHandler: h.textHandler.WithGroup(name)}
}

// Discard is a Logger that drops all records, used where a collaborator
// requires a non-nil *slog.Logger but the caller wants no output (e.g.
// in engine tests that don't want log noise).
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
