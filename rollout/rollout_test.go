package rollout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRolloutFile(t *testing.T, dir string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, "rollout.jsonl")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func marshalLine(t *testing.T, timestamp string, item any) string {
	t.Helper()
	itemJSON, err := json.Marshal(item)
	require.NoError(t, err)
	out, err := json.Marshal(line{Timestamp: timestamp, Item: itemJSON})
	require.NoError(t, err)
	return string(out)
}

func TestReplaceLastToolResult_Function(t *testing.T) {
	dir := t.TempDir()
	sessionMeta := marshalLine(t, "2026-01-01T00:00:00Z", map[string]any{"type": "session_meta", "id": "abc"})
	functionOutput := marshalLine(t, "2026-01-01T00:00:01Z", map[string]any{
		"type":    "function_call_output",
		"call_id": "call_func",
		"output":  map[string]any{"content": "pending", "content_items": nil, "success": false},
	})
	path := writeRolloutFile(t, dir, []string{sessionMeta, functionOutput})

	result, err := ReplaceLastToolResult(path, "final output")
	require.NoError(t, err)
	assert.Equal(t, "call_func", result.CallID)
	assert.Equal(t, KindFunction, result.Kind)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, sessionMeta, lines[0], "unrelated line must be byte-identical")

	var second line
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(second.Item, &payload))
	output := payload["output"].(map[string]any)
	assert.Equal(t, "final output", output["content"])
	assert.Nil(t, output["content_items"])
	assert.Equal(t, false, output["success"])
}

func TestReplaceLastToolResult_Custom(t *testing.T) {
	dir := t.TempDir()
	customOutput := marshalLine(t, "2026-01-01T00:00:01Z", map[string]any{
		"type":    "custom_tool_call_output",
		"call_id": "call_custom",
		"output":  "pending",
	})
	path := writeRolloutFile(t, dir, []string{customOutput})

	result, err := ReplaceLastToolResult(path, "delivered")
	require.NoError(t, err)
	assert.Equal(t, "call_custom", result.CallID)
	assert.Equal(t, KindCustom, result.Kind)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	var l line
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 1)
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &l))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(l.Item, &payload))
	assert.Equal(t, "delivered", payload["output"])
}

func TestReplaceLastToolResult_StopsOnFirstMatchInReverse(t *testing.T) {
	dir := t.TempDir()
	older := marshalLine(t, "2026-01-01T00:00:00Z", map[string]any{
		"type": "function_call_output", "call_id": "older",
		"output": map[string]any{"content": "old", "success": true},
	})
	newer := marshalLine(t, "2026-01-01T00:00:01Z", map[string]any{
		"type": "function_call_output", "call_id": "newer",
		"output": map[string]any{"content": "new", "success": true},
	})
	path := writeRolloutFile(t, dir, []string{older, newer})

	result, err := ReplaceLastToolResult(path, "replaced")
	require.NoError(t, err)
	assert.Equal(t, "newer", result.CallID)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	assert.Equal(t, older, lines[0])
	assert.Contains(t, lines[1], "replaced")
}

func TestReplaceLastToolResult_EmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rollout.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

	_, err := ReplaceLastToolResult(path, "x")
	assert.Error(t, err)
}

func TestReplaceLastToolResult_NoMatchFails(t *testing.T) {
	dir := t.TempDir()
	sessionMeta := marshalLine(t, "2026-01-01T00:00:00Z", map[string]any{"type": "session_meta"})
	path := writeRolloutFile(t, dir, []string{sessionMeta})

	_, err := ReplaceLastToolResult(path, "x")
	assert.Error(t, err)
}

func TestReplaceLastToolResult_MalformedLineFails(t *testing.T) {
	dir := t.TempDir()
	path := writeRolloutFile(t, dir, []string{"not json"})

	_, err := ReplaceLastToolResult(path, "x")
	assert.Error(t, err)
}
