// Package session defines the narrow external-collaborator contracts
// the tool-dispatch core needs against Session, TurnContext, and the
// conversation object (spec §6). These are deliberately thin: the CLI
// frontend, model client, and sandbox implementation that back them
// are out of scope (spec §1).
package session

import (
	"context"

	"goa.design/toolcore/hooks"
	"goa.design/toolcore/ident"
	"goa.design/toolcore/tools"
)

// Session exposes the per-conversation facts the router needs to
// classify a model item (spec §6).
type Session interface {
	// ConversationID returns the identifier used to name the IPC socket
	// metadata file.
	ConversationID() ident.ConversationID
	// ParseMCPToolName reports whether name is an MCP-prefixed tool name
	// and, if so, splits it into its server and tool components (spec
	// §4.1: "if name matches a registered MCP tool prefix").
	ParseMCPToolName(name string) (server, tool string, ok bool)
}

// ShellEnvironmentPolicy describes the environment a local shell exec
// inherits. The sandbox implementation that enforces it is out of scope
// (spec §1); this module only threads the policy through TurnContext.
type ShellEnvironmentPolicy struct {
	InheritAll bool
	ExtraEnv   map[string]string
}

// TurnContext exposes the per-turn facts dispatch needs (spec §6).
type TurnContext interface {
	ShellEnvironmentPolicy() ShellEnvironmentPolicy
	Cwd() string
	SubID() ident.TurnID
	ToolHook() hooks.Hook
	// ResolvePath resolves an optional path against the turn's cwd,
	// returning the turn's cwd when path is nil.
	ResolvePath(path *string) string
}

// Conversation accepts operations from outside the turn loop, in
// particular the delivered pending-tool result submitted by the
// pending-result IPC endpoint (spec §4.5, §6).
type Conversation interface {
	SubmitOp(ctx context.Context, op Op) error
}

// Op is a conversation-level operation. Today only
// DeliverPendingToolResultOp is defined; the type is open-ended so
// future operations do not require changing the Conversation interface.
type Op interface {
	isOp()
}

// DeliverPendingToolResultOp carries the real result for a previously
// pending tool call, to be matched against the pending registry by
// CallID (spec §4.5: "Op::DeliverPendingToolResult").
type DeliverPendingToolResultOp struct {
	CallID ident.CallID
	Output tools.FunctionCallOutputPayload
}

func (DeliverPendingToolResultOp) isOp() {}

// mcpSeparator splits a fully qualified MCP tool name into its server
// and tool halves (SPEC_FULL §12: supplements the narrow spec's silence
// on the exact split rule with the original implementation's
// split/validate contract).
const mcpSeparator = "__"

// ParseMCPToolName implements the default MCP tool-name split/validate
// contract: name must contain mcpSeparator with a non-empty server
// prefix and a non-empty tool suffix. Sessions that use a different
// naming convention can implement Session.ParseMCPToolName directly
// instead of delegating here.
func ParseMCPToolName(name string) (server, tool string, ok bool) {
	idx := indexOfSeparator(name)
	if idx <= 0 || idx+len(mcpSeparator) >= len(name) {
		return "", "", false
	}
	server = name[:idx]
	tool = name[idx+len(mcpSeparator):]
	if server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}

func indexOfSeparator(name string) int {
	n := len(mcpSeparator)
	for i := 0; i+n <= len(name); i++ {
		if name[i:i+n] == mcpSeparator {
			return i
		}
	}
	return -1
}
