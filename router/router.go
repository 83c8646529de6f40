// Package router classifies model-emitted items into tool calls and
// dispatches them through hook mediation to registered handlers (spec
// §4.1).
package router

import (
	"goa.design/toolcore/ident"
	"goa.design/toolcore/modelio"
	"goa.design/toolcore/session"
	"goa.design/toolcore/toolerrors"
	"goa.design/toolcore/tools"
)

// Router owns the configured tool specs and classifies model items into
// tool calls (spec §4.1).
type Router struct {
	specs []tools.Spec
	// byName indexes specs for ToolSupportsParallel lookups.
	byName map[ident.ToolName][]tools.Spec
	// DefaultSandboxPermissions is applied to every LocalShell call
	// classified from a model item (spec §4.1: "sandbox_permissions set
	// to the configured default").
	DefaultSandboxPermissions tools.SandboxPermissions
}

// New constructs a Router from an ordered list of tool specs (spec §4.1
// Router.specs()).
func New(specs []tools.Spec, defaultSandboxPermissions tools.SandboxPermissions) *Router {
	byName := make(map[ident.ToolName][]tools.Spec, len(specs))
	for _, s := range specs {
		byName[s.Name] = append(byName[s.Name], s)
	}
	return &Router{
		specs:                     specs,
		byName:                    byName,
		DefaultSandboxPermissions: defaultSandboxPermissions,
	}
}

// Specs returns clones of the configured specs in configuration order
// (spec §4.1 specs()).
func (r *Router) Specs() []tools.Spec {
	out := make([]tools.Spec, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.Clone()
	}
	return out
}

// ToolSupportsParallel reports whether any configured spec with name has
// SupportsParallelToolCalls set (spec §4.1 tool_supports_parallel()).
func (r *Router) ToolSupportsParallel(name ident.ToolName) bool {
	for _, s := range r.byName[name] {
		if s.SupportsParallelToolCalls {
			return true
		}
	}
	return false
}

// BuildToolCall classifies a model-emitted item into a tool call (spec
// §4.1 build_tool_call()). It returns (nil, nil) for items that carry no
// tool call.
func (r *Router) BuildToolCall(sess session.Session, item modelio.Item) (*tools.Call, error) {
	switch it := item.(type) {
	case modelio.FunctionCall:
		if server, tool, ok := sess.ParseMCPToolName(it.Name); ok {
			return &tools.Call{
				ToolName: ident.ToolName(it.Name),
				CallID:   ident.CallID(it.CallID),
				Payload:  &tools.MCPPayload{Server: server, Tool: tool, RawArguments: it.Arguments},
			}, nil
		}
		return &tools.Call{
			ToolName: ident.ToolName(it.Name),
			CallID:   ident.CallID(it.CallID),
			Payload:  &tools.FunctionPayload{Arguments: it.Arguments},
		}, nil

	case modelio.CustomToolCall:
		return &tools.Call{
			ToolName: ident.ToolName(it.Name),
			CallID:   ident.CallID(it.CallID),
			Payload:  &tools.CustomPayload{Input: it.Input},
		}, nil

	case modelio.LocalShellCall:
		callID := it.CallID
		if callID == "" {
			callID = it.ID
		}
		if callID == "" {
			return nil, toolerrors.NewMissingLocalShellCallID()
		}
		switch action := it.Action.(type) {
		case modelio.ExecAction:
			return &tools.Call{
				ToolName: "local_shell",
				CallID:   ident.CallID(callID),
				Payload: &tools.LocalShellPayload{
					Command:            action.Command,
					Workdir:            action.Workdir,
					TimeoutMS:          action.TimeoutMS,
					SandboxPermissions: r.DefaultSandboxPermissions,
				},
			}, nil
		default:
			return nil, nil
		}

	default:
		return nil, nil
	}
}
