package hooks

import (
	"context"
	"encoding/json"
	"fmt"

	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/tools"
)

const shellCommandToolName = "shell_command"

// timeoutMillis converts a parsed Timeout into the stored form: 0 for
// Infinite, else the finite millisecond value (spec §4.2 mapping).
func timeoutMillis(t *Timeout) uint64 {
	if t == nil || t.Infinite {
		return 0
	}
	return t.Millis
}

// ApplyDirective applies a before_execution directive to call in place
// (spec §4.2 "apply_tool_hook_directive"). Only local_shell.timeout_ms
// is honored today:
//
//   - Payload is LocalShell: params.timeout_ms is set directly.
//   - Payload is Function and tool_name == "shell_command": arguments
//     is parsed as a JSON object and its "timeout_ms" key is
//     inserted/overwritten, then re-serialized.
//   - Any other payload/name combination is ignored.
//
// Parse or serialize failures are logged via log and the call proceeds
// unchanged, matching spec §4.2's "Parse/serialize failures are logged
// and the call proceeds unchanged."
func ApplyDirective(ctx context.Context, log telemetry.Logger, directive *Directive, call *tools.Call) {
	log.Debug(ctx, "tool hook: applying before_execution directive", "directive", directiveSummary(directive))
	if directive == nil || directive.LocalShell == nil || call == nil || call.Payload == nil {
		return
	}
	ms := timeoutMillis(directive.LocalShell.TimeoutMS)

	switch payload := call.Payload.(type) {
	case *tools.LocalShellPayload:
		v := ms
		payload.TimeoutMS = &v
	case *tools.FunctionPayload:
		if call.ToolName != shellCommandToolName {
			return
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(payload.Arguments), &args); err != nil {
			log.Warn(ctx, "tool hook directive: failed to parse shell_command arguments as JSON object", "call_id", call.CallID, "error", err)
			return
		}
		if args == nil {
			log.Warn(ctx, "tool hook directive: shell_command arguments are not a JSON object", "call_id", call.CallID)
			return
		}
		args["timeout_ms"] = ms
		encoded, err := json.Marshal(args)
		if err != nil {
			log.Warn(ctx, "tool hook directive: failed to re-serialize shell_command arguments", "call_id", call.CallID, "error", err)
			return
		}
		payload.Arguments = string(encoded)
	default:
		// ignored
	}
}

// directiveSummary formats a directive for the debug log line in
// ApplyDirective; it avoids printing a nil *Directive as a non-nil
// interface value.
func directiveSummary(d *Directive) string {
	if d == nil {
		return "<none>"
	}
	return fmt.Sprintf("%+v", *d)
}
