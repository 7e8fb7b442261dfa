package sandbox

import (
	"context"
	"log/slog"
	"strings"

	"go.trai.ch/guard/internal/core/ports"
)

// logHandler forwards agentbox warnings to the guard logger.
type logHandler struct {
	logger ports.Logger
	attrs  []slog.Attr
}

func newLogHandler(logger ports.Logger) *logHandler {
	return &logHandler{logger: logger}
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{r.Message}
	for _, a := range h.attrs {
		parts = append(parts, a.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	h.logger.Warn(strings.Join(parts, " "))
	return nil
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &logHandler{logger: h.logger, attrs: merged}
}

func (h *logHandler) WithGroup(_ string) slog.Handler {
	return h
}
