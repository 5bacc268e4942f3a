package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"parkassist/internal/llm"
)

// Handler executes one named tool. Execute always returns a
// human-readable outcome string; failures are rendered as text at this
// boundary and never abort the conversation turn.
type Handler interface {
	Name() string
	Definition() llm.Tool
	Execute(ctx context.Context, args json.RawMessage) string
}

// Registry maps tool names to handlers.
type Registry struct {
	handlers map[string]Handler
	order    []string
	logger   *zap.Logger
}

// NewRegistry builds a registry over the given handlers.
func NewRegistry(logger *zap.Logger, handlers ...Handler) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler, len(handlers)),
		logger:   logger,
	}
	for _, h := range handlers {
		if _, dup := r.handlers[h.Name()]; dup {
			continue
		}
		r.handlers[h.Name()] = h
		r.order = append(r.order, h.Name())
	}
	return r
}

// Definitions returns the tool schemas in registration order, ready to be
// declared to the model.
func (r *Registry) Definitions() []llm.Tool {
	defs := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Dispatch runs the named tool. An unrecognized name yields an explicit
// "not implemented" result instead of an error so the turn keeps going.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) string {
	handler, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("unknown tool requested", zap.String("tool", name))
		return fmt.Sprintf("tool %s is not implemented", name)
	}
	r.logger.Info("dispatching tool", zap.String("tool", name))
	return handler.Execute(ctx, args)
}
