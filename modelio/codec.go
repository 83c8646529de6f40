package modelio

import (
	"encoding/json"
	"fmt"

	"goa.design/toolcore/tools"
)

const (
	typeFunctionCallOutput = "function_call_output"
	typeCustomToolCallOutput = "custom_tool_call_output"
)

// responseItemEnvelope is the wire shape used for every ResponseItem.
// Unknown "type" values round-trip via Raw so the rollout-edit
// procedure can rewrite one line's output without disturbing any
// other line's exact on-disk shape (spec §4.4 step 5: "Re-serialize
// all parsed lines in order").
type responseItemEnvelope struct {
	Type   string          `json:"type"`
	CallID string          `json:"call_id,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
}

// EncodeResponseItem serializes a ResponseItem to its canonical JSON
// form.
func EncodeResponseItem(item ResponseItem) ([]byte, error) {
	switch it := item.(type) {
	case FunctionCallOutput:
		out, err := json.Marshal(it.Output)
		if err != nil {
			return nil, fmt.Errorf("marshal function call output: %w", err)
		}
		return json.Marshal(responseItemEnvelope{Type: typeFunctionCallOutput, CallID: it.CallID, Output: out})
	case CustomToolCallOutput:
		out, err := json.Marshal(it.Output)
		if err != nil {
			return nil, fmt.Errorf("marshal custom tool call output: %w", err)
		}
		return json.Marshal(responseItemEnvelope{Type: typeCustomToolCallOutput, CallID: it.CallID, Output: out})
	case OtherResponseItem:
		if len(it.Raw) > 0 {
			return it.Raw, nil
		}
		return json.Marshal(responseItemEnvelope{Type: it.Kind})
	default:
		return nil, fmt.Errorf("unsupported response item type %T", item)
	}
}

// DecodeResponseItem parses a single ResponseItem from its canonical
// JSON form. Types not relevant to the rollout-edit procedure are kept
// opaquely in OtherResponseItem.Raw so re-serialization is byte-stable
// (spec §8: "all other lines byte-identical after a round trip").
func DecodeResponseItem(data []byte) (ResponseItem, error) {
	var env responseItemEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response item: %w", err)
	}
	switch env.Type {
	case typeFunctionCallOutput:
		var payload tools.FunctionCallOutputPayload
		if len(env.Output) > 0 {
			if err := json.Unmarshal(env.Output, &payload); err != nil {
				return nil, fmt.Errorf("decode function call output: %w", err)
			}
		}
		return FunctionCallOutput{CallID: env.CallID, Output: payload}, nil
	case typeCustomToolCallOutput:
		var output string
		if len(env.Output) > 0 {
			if err := json.Unmarshal(env.Output, &output); err != nil {
				return nil, fmt.Errorf("decode custom tool call output: %w", err)
			}
		}
		return CustomToolCallOutput{CallID: env.CallID, Output: output}, nil
	default:
		return OtherResponseItem{Kind: env.Type, Raw: append([]byte(nil), data...)}, nil
	}
}
