package logging

import (
	"context"
	"log/slog"
)

// contextHandler adds request, module and trace attributes carried by ctx.
type contextHandler struct {
	slog.Handler
	projectID     string
	defaultModule Module
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	module := h.defaultModule
	if m, ok := ModuleFromContext(ctx); ok {
		module = m
	}
	if module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}

	r.AddAttrs(traceAttrs(ctx, h.projectID)...)

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), projectID: h.projectID, defaultModule: h.defaultModule}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), projectID: h.projectID, defaultModule: h.defaultModule}
}

// replaceAttr renames the level and message keys to what Cloud Logging
// expects so the same JSON works locally and on Cloud Run.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
