package router

import (
	"context"

	"goa.design/toolcore/ident"
	"goa.design/toolcore/pending"
	"goa.design/toolcore/session"
	"goa.design/toolcore/tools"
)

// Handler executes one classified tool call. tracker is the pending-tool
// registry a handler may register itself into before returning a
// tools.PendingOutput (spec §4.3, §4.1 dispatch step 3: "Invoke the
// handler via the registry").
type Handler func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error)

// HandlerRegistry maps a tool name to the Handler that executes it.
type HandlerRegistry struct {
	handlers map[ident.ToolName]Handler
}

// NewHandlerRegistry constructs an empty HandlerRegistry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[ident.ToolName]Handler)}
}

// Register binds name to handler, replacing any prior binding.
func (h *HandlerRegistry) Register(name ident.ToolName, handler Handler) {
	h.handlers[name] = handler
}

// Lookup returns the handler bound to name, if any.
func (h *HandlerRegistry) Lookup(name ident.ToolName) (Handler, bool) {
	handler, ok := h.handlers[name]
	return handler, ok
}
