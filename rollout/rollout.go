// Package rollout implements the rollout-edit procedure (spec §4.4): a
// post-restart fixup that replaces the most recent placeholder tool
// output in the persistent JSONL conversation log with the real one.
package rollout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"goa.design/toolcore/modelio"
)

// Kind reports which ResponseItem variant was replaced (spec §4.4 step
// 3, return shape `{ call_id, kind }`).
type Kind string

const (
	KindFunction Kind = "function"
	KindCustom   Kind = "custom"
)

// Result reports what ReplaceLastToolResult changed.
type Result struct {
	CallID string
	Kind   Kind
}

// line is one JSONL record: a timestamp plus an opaque item. The item's
// "type" discriminates session metadata from a ResponseItem; only the
// few ResponseItem variants relevant to this procedure are decoded
// further (spec §3 RolloutLine, §6 "Rollout log format").
type line struct {
	Timestamp string          `json:"timestamp"`
	Item      json.RawMessage `json:"item"`
}

// ReplaceLastToolResult reads the JSONL file at path, rewrites the most
// recent tool output (scanning in reverse) with newOutput, and overwrites
// the file in one whole-file write (spec §4.4 replace_last_tool_result).
func ReplaceLastToolResult(path string, newOutput string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read rollout file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Result{}, fmt.Errorf("rollout file is empty")
	}

	lines, err := parseLines(raw)
	if err != nil {
		return Result{}, err
	}

	result, err := replaceInPlace(lines, newOutput)
	if err != nil {
		return Result{}, err
	}

	out, err := serializeLines(lines)
	if err != nil {
		return Result{}, fmt.Errorf("serialize rollout lines: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("write rollout file: %w", err)
	}
	return result, nil
}

// parsedLine is one decoded JSONL record, retaining the original line
// object for re-serialization and a best-effort decode into a
// modelio.ResponseItem when the item looks like one. changed is set only
// on the single line replaceInPlace mutates; every other line, touched
// or not, must round-trip through its original raw bytes.
type parsedLine struct {
	raw      line
	response modelio.ResponseItem
	changed  bool
}

func parseLines(raw []byte) ([]parsedLine, error) {
	var out []parsedLine
	for i, text := range bytes.Split(raw, []byte("\n")) {
		trimmed := bytes.TrimSpace(text)
		if len(trimmed) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return nil, fmt.Errorf("parse rollout line %d: %w (line: %s)", i+1, err, trimmed)
		}
		resp, decodeErr := modelio.DecodeResponseItem(l.Item)
		pl := parsedLine{raw: l}
		if decodeErr == nil {
			pl.response = resp
		}
		out = append(out, pl)
	}
	return out, nil
}

// replaceInPlace scans lines in reverse order for the first
// FunctionCallOutput or CustomToolCallOutput and mutates it with
// newOutput (spec §4.4 step 3).
func replaceInPlace(lines []parsedLine, newOutput string) (Result, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		switch item := lines[i].response.(type) {
		case modelio.FunctionCallOutput:
			item.Output.Content = newOutput
			item.Output.ContentItems = nil
			lines[i].response = item
			lines[i].changed = true
			return Result{CallID: item.CallID, Kind: KindFunction}, nil
		case modelio.CustomToolCallOutput:
			item.Output = newOutput
			lines[i].response = item
			lines[i].changed = true
			return Result{CallID: item.CallID, Kind: KindCustom}, nil
		}
	}
	return Result{}, fmt.Errorf("no tool call output found in rollout")
}

// serializeLines re-renders every line in order, one JSON object per
// line with a trailing newline (spec §4.4 step 5). Only the one line
// replaceInPlace mutated is re-encoded from its decoded ResponseItem;
// every other line — including ones that happened to decode into a
// recognized ResponseItem but were never touched — is written back
// byte-identical via its original raw item bytes, so untouched lines
// survive the round trip regardless of the producer's original key
// order or any fields this module doesn't model (spec §4.4 "all other
// lines byte-identical").
func serializeLines(lines []parsedLine) ([]byte, error) {
	var buf bytes.Buffer
	for _, pl := range lines {
		item := pl.raw.Item
		if pl.changed {
			encoded, err := modelio.EncodeResponseItem(pl.response)
			if err != nil {
				return nil, fmt.Errorf("encode response item for call_id: %w", err)
			}
			item = encoded
		}
		out, err := json.Marshal(line{Timestamp: pl.raw.Timestamp, Item: item})
		if err != nil {
			return nil, fmt.Errorf("marshal rollout line: %w", err)
		}
		buf.Write(out)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
