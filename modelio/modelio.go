// Package modelio defines the model-emitted input items the router
// classifies (spec §4.1) and the response items dispatch produces /
// the rollout log persists (spec §3 RolloutLine, §4.4). Both ends of
// the tool-dispatch pipeline share this vocabulary so the router's
// output and the rollout-edit procedure's input line up exactly.
package modelio

import "goa.design/toolcore/tools"

// Item is a single model-emitted response item. The router classifies
// exactly the variants below into a tools.Call; every other item
// classifies to "no tool call" (spec §4.1).
type Item interface {
	isItem()
}

// FunctionCall is a model-emitted standard function-call item.
type FunctionCall struct {
	Name      string
	Arguments string
	CallID    string
}

func (FunctionCall) isItem() {}

// CustomToolCall is a model-emitted freeform custom tool-call item.
type CustomToolCall struct {
	Name   string
	Input  string
	CallID string
}

func (CustomToolCall) isItem() {}

// LocalShellAction tags the action a LocalShellCall requests. Only
// Exec is classified into a tools.Call today (spec §4.1); other
// actions are reserved for future protocol growth.
type LocalShellAction interface {
	isLocalShellAction()
}

// ExecAction requests execution of a local shell command.
type ExecAction struct {
	Command   []string
	Workdir   *string
	TimeoutMS *uint64
}

func (ExecAction) isLocalShellAction() {}

// LocalShellCall is a model-emitted local shell exec item. ID and
// CallID are both optional on the wire; the router requires at least
// one (spec §4.1, toolerrors.MissingLocalShellCallID).
type LocalShellCall struct {
	ID     string
	CallID string
	Action LocalShellAction
}

func (LocalShellCall) isItem() {}

// OtherItem wraps any model item the router does not classify (e.g.
// assistant text, reasoning blocks). BuildToolCall returns (nil, nil)
// for these (spec §4.1).
type OtherItem struct {
	Kind string
}

func (OtherItem) isItem() {}

// ResponseItem is either session metadata (opaque to this module) or a
// ResponseInputItem persisted to the rollout log (spec §3 RolloutLine).
// Dispatch's successful return value and the rollout-edit procedure's
// input both speak this vocabulary.
type ResponseItem interface {
	isResponseItem()
}

// FunctionCallOutput is the ResponseItem persisted for a standard
// function-call tool result.
type FunctionCallOutput struct {
	CallID string
	Output tools.FunctionCallOutputPayload
}

func (FunctionCallOutput) isResponseItem() {}

// CustomToolCallOutput is the ResponseItem persisted for a freeform
// custom tool result.
type CustomToolCallOutput struct {
	CallID string
	Output string
}

func (CustomToolCallOutput) isResponseItem() {}

// OtherResponseItem wraps any ResponseItem variant irrelevant to the
// rollout-edit procedure (assistant messages, reasoning, etc.). It
// round-trips opaquely through JSON via its Raw payload.
type OtherResponseItem struct {
	Kind string
	Raw  []byte
}

func (OtherResponseItem) isResponseItem() {}
