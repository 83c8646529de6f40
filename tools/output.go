package tools

import "encoding/json"

// OutputKind tags which concrete Output variant a handler produced.
type OutputKind string

const (
	// OutputFunction is a standard function-call result.
	OutputFunction OutputKind = "function"
	// OutputCustom is a freeform custom tool result.
	OutputCustom OutputKind = "custom"
	// OutputPending means the value is a placeholder; the real result
	// may arrive later, possibly after a session restart (spec §3).
	OutputPending OutputKind = "pending"
)

// Output is the tagged variant a handler returns (spec §3 ToolOutput).
type Output interface {
	Kind() OutputKind
}

// FunctionCallOutputPayload is the wire shape exchanged over the
// pending-result IPC endpoint and stored in FunctionCallOutput rollout
// entries (spec §3, §6). ContentItems carries an optional multipart
// body; Success is a tri-state (present/absent) because delivered
// results do not always know success up front.
type FunctionCallOutputPayload struct {
	Content      string          `json:"content"`
	ContentItems json.RawMessage `json:"content_items,omitempty"`
	Success      *bool           `json:"success,omitempty"`
}

// FunctionOutput is the result of a standard function-call tool.
type FunctionOutput struct {
	Content      string
	ContentItems json.RawMessage
	Success      bool
}

// Kind implements Output.
func (FunctionOutput) Kind() OutputKind { return OutputFunction }

// CustomOutput is the result of a freeform custom tool.
type CustomOutput struct {
	Output string
}

// Kind implements Output.
func (CustomOutput) Kind() OutputKind { return OutputCustom }

// PendingOutput means the handler could not produce a result
// synchronously. The session may be asked to shut down after emitting
// this placeholder (spec §3); ShutdownReason supplements the narrow
// spec with the original implementation's operator-facing reason string
// (SPEC_FULL §12).
type PendingOutput struct {
	Content        string
	ContentItems   json.RawMessage
	Success        bool
	Shutdown       bool
	ShutdownReason string
}

// Kind implements Output.
func (PendingOutput) Kind() OutputKind { return OutputPending }
