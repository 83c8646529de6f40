package router

import (
	"context"
	"errors"

	"goa.design/toolcore/hooks"
	"goa.design/toolcore/modelio"
	"goa.design/toolcore/pending"
	"goa.design/toolcore/session"
	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/toolerrors"
	"goa.design/toolcore/tools"
)

// Dispatch mediates one tool call through hook before/after events and a
// registered handler (spec §4.1 dispatch()). Fatal handler errors
// propagate as err; every other outcome returns a ResponseItem the model
// should see. shutdown reports whether the handler's output asked the
// session to shut down after emitting its placeholder (spec §3 ToolOutput
// Pending variant).
func Dispatch(
	ctx context.Context,
	log telemetry.Logger,
	sess session.Session,
	turn session.TurnContext,
	tracker *pending.Registry,
	handlers *HandlerRegistry,
	call *tools.Call,
) (response modelio.ResponseItem, shutdown bool, err error) {
	hook := turn.ToolHook()

	if hook != nil {
		snapshot := call.Clone()
		if directive := hook.BeforeExecution(ctx, snapshot); directive != nil {
			hooks.ApplyDirective(ctx, log, directive, call)
		}
	}

	handler, ok := handlers.Lookup(call.ToolName)
	if !ok {
		handlerErr := toolerrors.NewRespondToModel("no handler registered for tool " + string(call.ToolName))
		return finishWithError(ctx, hook, call, handlerErr)
	}

	output, handlerErr := handler(ctx, sess, turn, tracker, call)
	if handlerErr != nil {
		return finishWithError(ctx, hook, call, handlerErr)
	}

	response = responseFromOutput(call, output)
	if hook != nil {
		hook.AfterExecution(ctx, call, hooks.Outcome{Response: response})
	}
	if po, ok := output.(tools.PendingOutput); ok {
		shutdown = po.Shutdown
	}
	return response, shutdown, nil
}

// finishWithError emits the after_execution error outcome and either
// propagates a Fatal error or synthesizes a failure response item (spec
// §4.1 dispatch steps 5-6).
func finishWithError(ctx context.Context, hook hooks.Hook, call *tools.Call, handlerErr error) (modelio.ResponseItem, bool, error) {
	if hook != nil {
		hook.AfterExecution(ctx, call, hooks.Outcome{Err: handlerErr})
	}

	var fatal *toolerrors.Fatal
	if errors.As(handlerErr, &fatal) {
		return nil, false, fatal
	}
	return failureResponse(call, handlerErr), false, nil
}

// failureResponse synthesizes the model-visible failure response for a
// non-fatal handler error (spec §4.1 "Failure-response synthesis").
func failureResponse(call *tools.Call, handlerErr error) modelio.ResponseItem {
	if call.Payload != nil && call.Payload.Kind() == tools.KindCustom {
		return modelio.CustomToolCallOutput{CallID: string(call.CallID), Output: handlerErr.Error()}
	}
	success := false
	return modelio.FunctionCallOutput{
		CallID: string(call.CallID),
		Output: tools.FunctionCallOutputPayload{Content: handlerErr.Error(), Success: &success},
	}
}

// responseFromOutput converts a handler's tools.Output into the
// ResponseItem persisted to the rollout log and returned to the model.
func responseFromOutput(call *tools.Call, output tools.Output) modelio.ResponseItem {
	switch o := output.(type) {
	case tools.FunctionOutput:
		success := o.Success
		return modelio.FunctionCallOutput{
			CallID: string(call.CallID),
			Output: tools.FunctionCallOutputPayload{Content: o.Content, ContentItems: o.ContentItems, Success: &success},
		}
	case tools.CustomOutput:
		return modelio.CustomToolCallOutput{CallID: string(call.CallID), Output: o.Output}
	case tools.PendingOutput:
		success := o.Success
		return modelio.FunctionCallOutput{
			CallID: string(call.CallID),
			Output: tools.FunctionCallOutputPayload{Content: o.Content, ContentItems: o.ContentItems, Success: &success},
		}
	default:
		success := false
		return modelio.FunctionCallOutput{
			CallID: string(call.CallID),
			Output: tools.FunctionCallOutputPayload{Content: "unrecognized tool output", Success: &success},
		}
	}
}
