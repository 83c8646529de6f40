// Package hooks implements the tool hook protocol (spec §4.2): an
// external subprocess observer invoked once per phase per tool call,
// with the power to mutate the pending call via a directive on
// before_execution, plus the once-per-turn stop hook (spec §4.2 "Stop
// hook").
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"goa.design/toolcore/modelio"
	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/tools"
)

// Phase names the two tool-hook lifecycle events (spec §4.2).
type Phase string

const (
	PhaseBefore Phase = "before_execution"
	PhaseAfter  Phase = "after_execution"
)

// Outcome reports the handler result passed to after_execution (spec
// §4.2 event JSON shape): exactly one of Response or Err is set.
type Outcome struct {
	Response modelio.ResponseItem
	Err      error
}

// Hook is the tool hook contract dispatch invokes around every tool
// call (spec §4.1 steps 1-2, §4.2). Implementations must never
// propagate subprocess failures to the caller: a failing hook logs a
// warning and behaves as if it were absent (spec §4.2, §7).
type Hook interface {
	// BeforeExecution snapshots call, invokes the hook, and returns the
	// parsed directive (nil if the hook emitted none, exited non-zero,
	// or printed something that failed to parse).
	BeforeExecution(ctx context.Context, call *tools.Call) *Directive
	// AfterExecution invokes the hook with the call's outcome. Any
	// subprocess failure is swallowed.
	AfterExecution(ctx context.Context, call *tools.Call, outcome Outcome)
}

// Config configures a SubprocessHook.
type Config struct {
	// Argv is the hook command and its arguments.
	Argv []string
	// Timeout bounds each subprocess invocation's wall-clock time. Zero
	// means no timeout, matching the narrow spec's behavior (spec §9
	// open question: "a hanging hook hangs the turn"). SPEC_FULL §12
	// adds this as an opt-in higher-layer control; it does not change
	// default semantics when left unset.
	Timeout time.Duration
	Logger  telemetry.Logger
	Tracer  telemetry.Tracer
}

// SubprocessHook invokes a configured external command as a subprocess
// once per phase per call (spec §4.2).
type SubprocessHook struct {
	cfg Config
}

// NewSubprocessHook constructs a SubprocessHook. A nil Logger/Tracer in
// cfg is replaced with a Noop implementation.
func NewSubprocessHook(cfg Config) *SubprocessHook {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NewNoopLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.NewNoopTracer()
	}
	return &SubprocessHook{cfg: cfg}
}

// BeforeExecution implements Hook.
func (h *SubprocessHook) BeforeExecution(ctx context.Context, call *tools.Call) *Directive {
	ctx, span := h.cfg.Tracer.Start(ctx, "hooks.before_execution")
	defer span.End()

	event, err := encodeEvent(PhaseBefore, call, nil)
	if err != nil {
		h.cfg.Logger.Warn(ctx, "tool hook: failed to encode before_execution event", "call_id", call.CallID, "error", err)
		return nil
	}

	stdout, err := h.run(ctx, event, true)
	if err != nil {
		h.cfg.Logger.Warn(ctx, "tool hook: before_execution subprocess failed", "call_id", call.CallID, "error", err)
		return nil
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return nil
	}
	directive, err := ParseDirective(stdout)
	if err != nil {
		h.cfg.Logger.Warn(ctx, "tool hook: failed to parse before_execution directive", "call_id", call.CallID, "error", err)
		return nil
	}
	return directive
}

// AfterExecution implements Hook.
func (h *SubprocessHook) AfterExecution(ctx context.Context, call *tools.Call, outcome Outcome) {
	ctx, span := h.cfg.Tracer.Start(ctx, "hooks.after_execution")
	defer span.End()

	event, err := encodeEvent(PhaseAfter, call, &outcome)
	if err != nil {
		h.cfg.Logger.Warn(ctx, "tool hook: failed to encode after_execution event", "call_id", call.CallID, "error", err)
		return
	}
	if _, err := h.run(ctx, event, false); err != nil {
		h.cfg.Logger.Warn(ctx, "tool hook: after_execution subprocess failed", "call_id", call.CallID, "error", err)
	}
}

// run spawns exactly one child process, writes event to its stdin once,
// and waits once (spec §5: "each hook invocation spawns exactly one
// child, writes once, waits once; no process leaks on any exit path").
// When captureStdout is true, stdout is piped and returned; otherwise it
// is left to inherit the parent's stdout (spec §4.2: "for after_execution,
// stdout=inherit").
func (h *SubprocessHook) run(ctx context.Context, event []byte, captureStdout bool) ([]byte, error) {
	if len(h.cfg.Argv) == 0 {
		return nil, fmt.Errorf("tool hook: no command configured")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if h.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, h.cfg.Argv[0], h.cfg.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(event)

	var stdout bytes.Buffer
	if captureStdout {
		cmd.Stdout = &stdout
	} else {
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run hook command: %w", err)
	}
	if !captureStdout {
		return nil, nil
	}
	return stdout.Bytes(), nil
}

// callEnvelope is the "call" field of the hook event JSON (spec §4.2).
type callEnvelope struct {
	ToolName string          `json:"tool_name"`
	CallID   string          `json:"call_id"`
	Payload  json.RawMessage `json:"payload"`
}

type successOutcome struct {
	Response json.RawMessage `json:"response"`
}

type errorOutcome struct {
	Message string `json:"message"`
}

type outcomeEnvelope struct {
	Success *successOutcome `json:"success,omitempty"`
	Error   *errorOutcome   `json:"error,omitempty"`
}

type eventEnvelope struct {
	Phase   Phase            `json:"phase"`
	Call    callEnvelope     `json:"call"`
	Outcome *outcomeEnvelope `json:"outcome,omitempty"`
}

// encodeEvent renders the JSON object written to the hook's stdin (spec
// §4.2 event JSON shape).
func encodeEvent(phase Phase, call *tools.Call, outcome *Outcome) ([]byte, error) {
	payload, err := encodeCallSnapshot(call)
	if err != nil {
		return nil, fmt.Errorf("encode call snapshot: %w", err)
	}
	env := eventEnvelope{
		Phase: phase,
		Call: callEnvelope{
			ToolName: string(call.ToolName),
			CallID:   string(call.CallID),
			Payload:  payload,
		},
	}
	if outcome != nil {
		oc := &outcomeEnvelope{}
		if outcome.Err != nil {
			oc.Error = &errorOutcome{Message: outcome.Err.Error()}
		} else {
			respJSON, err := modelio.EncodeResponseItem(outcome.Response)
			if err != nil {
				return nil, fmt.Errorf("encode outcome response: %w", err)
			}
			oc.Success = &successOutcome{Response: respJSON}
		}
		env.Outcome = oc
	}
	return json.Marshal(env)
}
