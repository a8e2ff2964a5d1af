package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler is a slog.Handler whose destination can be replaced at
// runtime. Handlers derived through WithAttrs or WithGroup share the root,
// so loggers created before a Swap follow it.
type SwappableHandler struct {
	root  *atomic.Pointer[rootHandler]
	ops   []func(slog.Handler) slog.Handler
	cache atomic.Pointer[derivedHandler]
}

type rootHandler struct {
	h slog.Handler
}

type derivedHandler struct {
	base *rootHandler
	h    slog.Handler
}

// NewSwappableHandler creates a handler writing to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := new(atomic.Pointer[rootHandler])
	root.Store(&rootHandler{h: initial})
	return &SwappableHandler{root: root}
}

// Swap replaces the destination for this handler and every handler derived
// from the same root.
func (sh *SwappableHandler) Swap(next slog.Handler) {
	sh.root.Store(&rootHandler{h: next})
}

// current resolves the root and replays derived attributes and groups,
// caching the result until the next swap.
func (sh *SwappableHandler) current() slog.Handler {
	base := sh.root.Load()
	if len(sh.ops) == 0 {
		return base.h
	}
	if c := sh.cache.Load(); c != nil && c.base == base {
		return c.h
	}

	h := base.h
	for _, op := range sh.ops {
		h = op(h)
	}
	sh.cache.Store(&derivedHandler{base: base, h: h})
	return h
}

func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) derive(op func(slog.Handler) slog.Handler) *SwappableHandler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(sh.ops)+1)
	ops = append(ops, sh.ops...)
	ops = append(ops, op)
	return &SwappableHandler{root: sh.root, ops: ops}
}
