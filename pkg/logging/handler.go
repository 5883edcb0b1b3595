package logging

import (
	"context"
	"log/slog"
)

// targetHandler gates records through a shared Filter before fanning them out.
// The filter is consulted once per record, not once per sink.
//
// next carries the bound target attribute; bare is the same chain without it
// and receives records that name their own target, so a target is written
// once.
type targetHandler struct {
	filter *Filter
	target string
	next   slog.Handler
	bare   slog.Handler
}

func newTargetHandler(filter *Filter, next slog.Handler) *targetHandler {
	return &targetHandler{filter: filter, next: next, bare: next}
}

// Enabled implements slog.Handler. A record may name its own target, so the
// exact decision waits for Handle; here any target admitting level passes.
func (h *targetHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.filter.Admits(level)
}

// Handle implements slog.Handler. A "target" attribute on the record itself
// overrides the bound target.
func (h *targetHandler) Handle(ctx context.Context, r slog.Record) error {
	target, own := recordTarget(r)
	if !own {
		target = h.target
	}
	if !h.filter.Enabled(target, r.Level) {
		return nil
	}
	if own {
		return h.bare.Handle(ctx, r)
	}
	return h.next.Handle(ctx, r)
}

func recordTarget(r slog.Record) (target string, ok bool) {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == TargetKey && a.Value.Kind() == slog.KindString {
			target, ok = a.Value.String(), true
			return false
		}
		return true
	})
	return target, ok
}

// WithAttrs implements slog.Handler.
func (h *targetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	target := h.target
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == TargetKey && a.Value.Kind() == slog.KindString {
			target = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	return &targetHandler{
		filter: h.filter,
		target: target,
		next:   h.next.WithAttrs(attrs),
		bare:   h.bare.WithAttrs(rest),
	}
}

// WithGroup implements slog.Handler.
func (h *targetHandler) WithGroup(name string) slog.Handler {
	return &targetHandler{
		filter: h.filter,
		target: h.target,
		next:   h.next.WithGroup(name),
		bare:   h.bare.WithGroup(name),
	}
}

// MultiHandler fans out log records to multiple handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that writes to all provided handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled implements slog.Handler.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler. Every sink is attempted; the first error
// is returned.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WithAttrs implements slog.Handler.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: handlers}
}

// WithGroup implements slog.Handler.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: handlers}
}
