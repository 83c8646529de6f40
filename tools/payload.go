// Package tools defines the canonical tool-call and tool-output data
// model (spec §3): ToolCall, ToolPayload, ToolOutput, and ToolSpec. The
// model is deliberately independent of any particular model-protocol
// wire format; the router (package router) is responsible for
// classifying model items into this shape.
package tools

import "goa.design/toolcore/ident"

// PayloadKind tags which concrete Payload variant a Call carries.
type PayloadKind string

const (
	// KindFunction is a standard function-call tool invocation.
	KindFunction PayloadKind = "function"
	// KindCustom is a freeform custom tool invocation.
	KindCustom PayloadKind = "custom"
	// KindLocalShell is a local shell exec invocation.
	KindLocalShell PayloadKind = "local_shell"
	// KindMCP is an MCP server/tool invocation.
	KindMCP PayloadKind = "mcp"
)

// Payload is the tagged variant carried by a Call (spec §3 ToolPayload).
// Concrete implementations are pointer types so hook directive
// application (package hooks) can mutate fields such as TimeoutMS in
// place before dispatch.
type Payload interface {
	Kind() PayloadKind
	// Clone returns a deep copy, used to take the before_execution hook
	// snapshot before any directive mutates the call (spec §9: "the
	// snapshot passed to before_execution must be taken before directive
	// application ... must not alias mutable state").
	Clone() Payload
}

// FunctionPayload carries a standard function-call invocation.
type FunctionPayload struct {
	// Arguments is the raw JSON text of the model-supplied arguments.
	Arguments string
}

// Kind implements Payload.
func (*FunctionPayload) Kind() PayloadKind { return KindFunction }

// Clone implements Payload.
func (p *FunctionPayload) Clone() Payload {
	c := *p
	return &c
}

// CustomPayload carries a freeform custom tool invocation.
type CustomPayload struct {
	// Input is the raw model-supplied input text.
	Input string
}

// Kind implements Payload.
func (*CustomPayload) Kind() PayloadKind { return KindCustom }

// Clone implements Payload.
func (p *CustomPayload) Clone() Payload {
	c := *p
	return &c
}

// SandboxPermissions describes what a local shell exec is allowed to do.
// The zero value denies network access and grants no extra writable
// roots beyond the call's workdir.
type SandboxPermissions struct {
	NetworkAccess bool
	WritableRoots []string
}

// clone returns a deep copy of the permission set.
func (s SandboxPermissions) clone() SandboxPermissions {
	c := s
	if s.WritableRoots != nil {
		c.WritableRoots = append([]string(nil), s.WritableRoots...)
	}
	return c
}

// LocalShellPayload carries a local shell exec invocation (spec §3).
type LocalShellPayload struct {
	// Command is the ordered argv to execute.
	Command []string
	// Workdir is the working directory, or nil to use the turn's default.
	Workdir *string
	// TimeoutMS is the execution timeout in milliseconds, or nil for the
	// caller's default. A before_execution hook directive may overwrite
	// this field in place (spec §4.2).
	TimeoutMS *uint64
	// SandboxPermissions is the effective sandbox policy for this call.
	SandboxPermissions SandboxPermissions
	// Justification is an optional model-supplied rationale for why the
	// command needs to run (surfaced to approval UIs; never sent to the
	// hook snapshot, spec §4.2).
	Justification string
}

// Kind implements Payload.
func (*LocalShellPayload) Kind() PayloadKind { return KindLocalShell }

// Clone implements Payload.
func (p *LocalShellPayload) Clone() Payload {
	c := *p
	if p.Command != nil {
		c.Command = append([]string(nil), p.Command...)
	}
	if p.Workdir != nil {
		w := *p.Workdir
		c.Workdir = &w
	}
	if p.TimeoutMS != nil {
		t := *p.TimeoutMS
		c.TimeoutMS = &t
	}
	c.SandboxPermissions = p.SandboxPermissions.clone()
	return &c
}

// MCPPayload carries an MCP server/tool invocation (spec §4.1: produced
// when the router recognizes the model tool name as an MCP-prefixed
// name via session.ParseMCPToolName).
type MCPPayload struct {
	Server       string
	Tool         string
	RawArguments string
}

// Kind implements Payload.
func (*MCPPayload) Kind() PayloadKind { return KindMCP }

// Clone implements Payload.
func (p *MCPPayload) Clone() Payload {
	c := *p
	return &c
}

// Call is the canonical intermediate form the router produces from one
// model item and dispatch consumes exactly once (spec §3 ToolCall).
type Call struct {
	ToolName ident.ToolName
	CallID   ident.CallID
	Payload  Payload
}

// Clone returns a deep copy of the call, including its payload.
func (c *Call) Clone() *Call {
	if c == nil {
		return nil
	}
	clone := &Call{ToolName: c.ToolName, CallID: c.CallID}
	if c.Payload != nil {
		clone.Payload = c.Payload.Clone()
	}
	return clone
}
