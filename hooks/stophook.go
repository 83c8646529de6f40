package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"goa.design/toolcore/ident"
	"goa.design/toolcore/modelio"
	"goa.design/toolcore/telemetry"
)

// TokenUsage is the optional token accounting included in a stop hook
// payload, when the session tracks it (spec §4.2 "Stop hook").
type TokenUsage struct {
	InputTokens  uint64 `json:"input_tokens"`
	OutputTokens uint64 `json:"output_tokens"`
}

// stopPayload is the JSON object written to a stop hook's stdin, once
// per turn (spec §4.2: "{conversation_id, turn_id, cwd, final_message?,
// response_items, token_usage?}").
type stopPayload struct {
	ConversationID string          `json:"conversation_id"`
	TurnID         string          `json:"turn_id"`
	Cwd            string          `json:"cwd"`
	FinalMessage   *string         `json:"final_message,omitempty"`
	ResponseItems  json.RawMessage `json:"response_items"`
	TokenUsage     *TokenUsage     `json:"token_usage,omitempty"`
}

// StopHookInput collects the facts a stop hook invocation needs.
type StopHookInput struct {
	ConversationID ident.ConversationID
	TurnID         ident.TurnID
	Cwd            string
	FinalMessage   *string
	ResponseItems  []modelio.ResponseItem
	TokenUsage     *TokenUsage
}

// StopHook invokes a configured external command once per turn after
// the turn's response items are final. Unlike the tool hook, it reads
// no directive back; its stdout is not interpreted (spec §4.2: "no
// directive is read back from a stop hook").
type StopHook struct {
	cfg Config
}

// NewStopHook constructs a StopHook. A nil Logger/Tracer in cfg is
// replaced with a Noop implementation.
func NewStopHook(cfg Config) *StopHook {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NewNoopLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.NewNoopTracer()
	}
	return &StopHook{cfg: cfg}
}

// Run invokes the stop hook once. A non-zero exit, or any failure to
// spawn, is logged as a warning and otherwise ignored: a stop hook can
// never fail a turn that has already produced its final response (spec
// §4.2, §7).
func (h *StopHook) Run(ctx context.Context, in StopHookInput) {
	if len(h.cfg.Argv) == 0 {
		return
	}
	ctx, span := h.cfg.Tracer.Start(ctx, "hooks.stop")
	defer span.End()

	payload, err := encodeStopPayload(in)
	if err != nil {
		h.cfg.Logger.Warn(ctx, "stop hook: failed to encode payload", "turn_id", in.TurnID, "error", err)
		return
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if h.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, h.cfg.Argv[0], h.cfg.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	if err := cmd.Run(); err != nil {
		h.cfg.Logger.Warn(ctx, "stop hook: subprocess failed", "turn_id", in.TurnID, "error", err)
	}
}

func encodeStopPayload(in StopHookInput) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(in.ResponseItems))
	for _, item := range in.ResponseItems {
		encoded, err := modelio.EncodeResponseItem(item)
		if err != nil {
			return nil, fmt.Errorf("encode response item: %w", err)
		}
		items = append(items, encoded)
	}
	responseItems, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal response items: %w", err)
	}
	return json.Marshal(stopPayload{
		ConversationID: string(in.ConversationID),
		TurnID:         string(in.TurnID),
		Cwd:            in.Cwd,
		FinalMessage:   in.FinalMessage,
		ResponseItems:  responseItems,
		TokenUsage:     in.TokenUsage,
	})
}
