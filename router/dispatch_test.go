package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/toolcore/hooks"
	"goa.design/toolcore/ident"
	"goa.design/toolcore/modelio"
	"goa.design/toolcore/pending"
	"goa.design/toolcore/session"
	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/toolerrors"
	"goa.design/toolcore/tools"
)

type recordingHook struct {
	directive   *hooks.Directive
	beforeCalls int
	afterCalls  int
	lastOutcome hooks.Outcome
}

func (h *recordingHook) BeforeExecution(ctx context.Context, call *tools.Call) *hooks.Directive {
	h.beforeCalls++
	return h.directive
}

func (h *recordingHook) AfterExecution(ctx context.Context, call *tools.Call, outcome hooks.Outcome) {
	h.afterCalls++
	h.lastOutcome = outcome
}

type fakeTurn struct {
	hook hooks.Hook
}

func (f fakeTurn) ShellEnvironmentPolicy() session.ShellEnvironmentPolicy {
	return session.ShellEnvironmentPolicy{}
}
func (f fakeTurn) Cwd() string         { return "/work" }
func (f fakeTurn) SubID() ident.TurnID { return "turn-1" }
func (f fakeTurn) ToolHook() hooks.Hook {
	return f.hook
}
func (f fakeTurn) ResolvePath(path *string) string {
	if path != nil {
		return *path
	}
	return f.Cwd()
}

func TestDispatch_SuccessEmitsBeforeAndAfter(t *testing.T) {
	hook := &recordingHook{}
	turn := fakeTurn{hook: hook}
	handlers := NewHandlerRegistry()
	handlers.Register("read_file", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		return tools.FunctionOutput{Content: "file contents", Success: true}, nil
	})
	call := &tools.Call{ToolName: "read_file", CallID: "c1", Payload: &tools.FunctionPayload{Arguments: `{}`}}

	resp, shutdown, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	require.NoError(t, err)
	assert.False(t, shutdown)
	assert.Equal(t, 1, hook.beforeCalls)
	assert.Equal(t, 1, hook.afterCalls)
	out, ok := resp.(modelio.FunctionCallOutput)
	require.True(t, ok)
	assert.Equal(t, "file contents", out.Output.Content)
	require.NotNil(t, out.Output.Success)
	assert.True(t, *out.Output.Success)
}

func TestDispatch_DirectiveMutatesCallBeforeHandler(t *testing.T) {
	hook := &recordingHook{directive: &hooks.Directive{LocalShell: &hooks.LocalShellDirective{TimeoutMS: &hooks.Timeout{Millis: 999}}}}
	turn := fakeTurn{hook: hook}
	handlers := NewHandlerRegistry()
	var observedTimeout *uint64
	handlers.Register("local_shell", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		observedTimeout = call.Payload.(*tools.LocalShellPayload).TimeoutMS
		return tools.FunctionOutput{Content: "ran", Success: true}, nil
	})
	call := &tools.Call{ToolName: "local_shell", CallID: "c1", Payload: &tools.LocalShellPayload{Command: []string{"ls"}}}

	_, _, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	require.NoError(t, err)
	require.NotNil(t, observedTimeout)
	assert.Equal(t, uint64(999), *observedTimeout)
}

func TestDispatch_FatalErrorPropagates(t *testing.T) {
	turn := fakeTurn{}
	handlers := NewHandlerRegistry()
	handlers.Register("read_file", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		return nil, toolerrors.NewFatal("disk is on fire")
	})
	call := &tools.Call{ToolName: "read_file", CallID: "c1", Payload: &tools.FunctionPayload{Arguments: `{}`}}

	resp, shutdown, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	assert.Nil(t, resp)
	assert.False(t, shutdown)
	require.Error(t, err)
	var fatal *toolerrors.Fatal
	assert.ErrorAs(t, err, &fatal)
}

func TestDispatch_RespondToModelSynthesizesFunctionFailure(t *testing.T) {
	turn := fakeTurn{}
	handlers := NewHandlerRegistry()
	handlers.Register("read_file", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		return nil, toolerrors.NewRespondToModel("file not found")
	})
	call := &tools.Call{ToolName: "read_file", CallID: "c1", Payload: &tools.FunctionPayload{Arguments: `{}`}}

	resp, _, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	require.NoError(t, err)
	out, ok := resp.(modelio.FunctionCallOutput)
	require.True(t, ok)
	assert.Equal(t, "file not found", out.Output.Content)
	require.NotNil(t, out.Output.Success)
	assert.False(t, *out.Output.Success)
}

func TestDispatch_RespondToModelSynthesizesCustomFailure(t *testing.T) {
	turn := fakeTurn{}
	handlers := NewHandlerRegistry()
	handlers.Register("scratch", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		return nil, toolerrors.NewRespondToModel("scratch tool failed")
	})
	call := &tools.Call{ToolName: "scratch", CallID: "c1", Payload: &tools.CustomPayload{Input: "x"}}

	resp, _, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	require.NoError(t, err)
	out, ok := resp.(modelio.CustomToolCallOutput)
	require.True(t, ok)
	assert.Equal(t, "scratch tool failed", out.Output)
}

func TestDispatch_UnregisteredToolSynthesizesFailure(t *testing.T) {
	turn := fakeTurn{}
	handlers := NewHandlerRegistry()
	call := &tools.Call{ToolName: "missing", CallID: "c1", Payload: &tools.FunctionPayload{Arguments: `{}`}}

	resp, _, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, pending.NewRegistry(), handlers, call)

	require.NoError(t, err)
	out, ok := resp.(modelio.FunctionCallOutput)
	require.True(t, ok)
	require.NotNil(t, out.Output.Success)
	assert.False(t, *out.Output.Success)
}

func TestDispatch_PendingOutputSignalsShutdown(t *testing.T) {
	turn := fakeTurn{}
	handlers := NewHandlerRegistry()
	handlers.Register("long_task", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		tracker.Register(call.CallID, call.ToolName, turn.SubID(), "awaiting deferred delivery")
		return tools.PendingOutput{Content: "queued", Shutdown: true, ShutdownReason: "long_task requires shutdown_after_call"}, nil
	})
	call := &tools.Call{ToolName: "long_task", CallID: "c1", Payload: &tools.FunctionPayload{Arguments: `{}`}}
	tracker := pending.NewRegistry()

	resp, shutdown, err := Dispatch(context.Background(), telemetry.NewNoopLogger(), fakeSession{}, turn, tracker, handlers, call)

	require.NoError(t, err)
	assert.True(t, shutdown)
	out, ok := resp.(modelio.FunctionCallOutput)
	require.True(t, ok)
	assert.Equal(t, "queued", out.Output.Content)

	_, _, ok = tracker.TakeReceiver("c1")
	assert.True(t, ok)
}
