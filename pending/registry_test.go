package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/toolcore/tools"
)

func payload(content string) tools.FunctionCallOutputPayload {
	return tools.FunctionCallOutputPayload{Content: content}
}

func TestRegistry_ResolveThenTake(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "note")

	meta, ok := r.Resolve("call-1", payload("ok"))
	require.True(t, ok)
	assert.Equal(t, "call-1", string(meta.CallID))

	meta, ch, ok := r.TakeReceiver("call-1")
	require.True(t, ok)
	assert.Equal(t, "call-1", string(meta.CallID))
	select {
	case got := <-ch:
		assert.Equal(t, "ok", got.Content)
	case <-time.After(time.Second):
		t.Fatal("expected delivered payload")
	}

	_, ok = r.Cancel("call-1")
	assert.False(t, ok)
}

func TestRegistry_TakeThenResolve(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "note")

	meta, ch, ok := r.TakeReceiver("call-1")
	require.True(t, ok)
	assert.Equal(t, "call-1", string(meta.CallID))

	meta, ok = r.Resolve("call-1", payload("ok"))
	require.True(t, ok)
	assert.Equal(t, "call-1", string(meta.CallID))

	select {
	case got := <-ch:
		assert.Equal(t, "ok", got.Content)
	case <-time.After(time.Second):
		t.Fatal("expected delivered payload")
	}

	_, ok = r.Cancel("call-1")
	assert.False(t, ok)
}

func TestRegistry_CancelAbortsDelivery(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "note")

	meta, ok := r.Cancel("call-1")
	require.True(t, ok)
	assert.Equal(t, "call-1", string(meta.CallID))

	_, _, ok = r.TakeReceiver("call-1")
	assert.False(t, ok)

	_, ok = r.Resolve("call-1", payload("ok"))
	assert.False(t, ok)
}

func TestRegistry_DoubleTakeReceiverFails(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "note")

	_, _, ok := r.TakeReceiver("call-1")
	require.True(t, ok)

	_, _, ok = r.TakeReceiver("call-1")
	assert.False(t, ok)
}

func TestRegistry_DoubleResolveFails(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "note")

	_, ok := r.Resolve("call-1", payload("first"))
	require.True(t, ok)

	_, ok = r.Resolve("call-1", payload("second"))
	assert.False(t, ok, "sender half may only be taken once")
}

func TestRegistry_ReRegisterReplacesPriorEntry(t *testing.T) {
	r := NewRegistry()
	r.Register("call-1", "shell_command", "turn-1", "first registration")
	meta := r.Register("call-1", "shell_command", "turn-1", "second registration")
	assert.Equal(t, "second registration", meta.Note)

	_, ch, ok := r.TakeReceiver("call-1")
	require.True(t, ok)
	select {
	case <-ch:
		t.Fatal("fresh channel must not carry a stale delivery")
	default:
	}
}

func TestRegistry_UnknownCallIDNoop(t *testing.T) {
	r := NewRegistry()
	_, _, ok := r.TakeReceiver("missing")
	assert.False(t, ok)
	_, ok = r.Resolve("missing", payload("x"))
	assert.False(t, ok)
	_, ok = r.Cancel("missing")
	assert.False(t, ok)
}
