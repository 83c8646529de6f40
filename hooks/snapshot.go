package hooks

import (
	"encoding/json"
	"fmt"

	"goa.design/toolcore/tools"
)

// functionSnapshot is the JSON shape of a function payload snapshot
// (spec §4.2): the raw arguments text plus, best-effort, its parsed
// form so hook authors do not all have to re-parse JSON themselves.
type functionSnapshot struct {
	Kind            string          `json:"kind"`
	Arguments       string          `json:"arguments"`
	ParsedArguments json.RawMessage `json:"parsed_arguments,omitempty"`
}

type customSnapshot struct {
	Kind  string `json:"kind"`
	Input string `json:"input"`
}

type localShellSnapshot struct {
	Kind      string   `json:"kind"`
	Command   []string `json:"command"`
	Workdir   *string  `json:"workdir,omitempty"`
	TimeoutMS *uint64  `json:"timeout_ms,omitempty"`
}

type mcpSnapshot struct {
	Kind         string `json:"kind"`
	Server       string `json:"server"`
	Tool         string `json:"tool"`
	RawArguments string `json:"raw_arguments"`
}

// encodeCallSnapshot renders the "payload" field of a hook event for
// call, in one of the four snapshot forms from spec §4.2. Justification
// is deliberately omitted from the local_shell snapshot: it is a
// model-facing rationale, not something the hook needs to make a
// decision (spec §4.2).
func encodeCallSnapshot(call *tools.Call) (json.RawMessage, error) {
	switch p := call.Payload.(type) {
	case *tools.FunctionPayload:
		snap := functionSnapshot{Kind: "function", Arguments: p.Arguments}
		var parsed any
		if err := json.Unmarshal([]byte(p.Arguments), &parsed); err == nil {
			if b, err := json.Marshal(parsed); err == nil {
				snap.ParsedArguments = b
			}
		}
		return json.Marshal(snap)
	case *tools.CustomPayload:
		return json.Marshal(customSnapshot{Kind: "custom", Input: p.Input})
	case *tools.LocalShellPayload:
		return json.Marshal(localShellSnapshot{
			Kind:      "local_shell",
			Command:   p.Command,
			Workdir:   p.Workdir,
			TimeoutMS: p.TimeoutMS,
		})
	case *tools.MCPPayload:
		return json.Marshal(mcpSnapshot{Kind: "mcp", Server: p.Server, Tool: p.Tool, RawArguments: p.RawArguments})
	default:
		return nil, fmt.Errorf("unsupported payload type %T", call.Payload)
	}
}
