// Command toolhostd wires part of the tool-dispatch core together end to
// end: a router with one demo tool, a handler registry, and a
// pending-tool registry. It classifies and dispatches one model-emitted
// function call and prints the resulting response item. It does not
// start the pending-result IPC endpoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"goa.design/toolcore/hooks"
	"goa.design/toolcore/ident"
	"goa.design/toolcore/modelio"
	"goa.design/toolcore/pending"
	"goa.design/toolcore/router"
	"goa.design/toolcore/session"
	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/tools"
)

// demoSession is the minimal Session implementation this demo needs. It
// delegates MCP name parsing to session.ParseMCPToolName, so only a name
// containing "__" classifies as an MCP call; the demo's read_file
// classifies as a plain function call (spec §4.1).
type demoSession struct {
	conversationID ident.ConversationID
}

func (s demoSession) ConversationID() ident.ConversationID { return s.conversationID }

func (s demoSession) ParseMCPToolName(name string) (string, string, bool) {
	return session.ParseMCPToolName(name)
}

// demoTurn is the minimal TurnContext implementation this demo needs: no
// hook is configured, so dispatch runs the handler directly.
type demoTurn struct {
	turnID ident.TurnID
	cwd    string
}

func (t demoTurn) ShellEnvironmentPolicy() session.ShellEnvironmentPolicy {
	return session.ShellEnvironmentPolicy{InheritAll: true}
}
func (t demoTurn) Cwd() string          { return t.cwd }
func (t demoTurn) SubID() ident.TurnID  { return t.turnID }
func (t demoTurn) ToolHook() hooks.Hook { return nil }
func (t demoTurn) ResolvePath(path *string) string {
	if path != nil {
		return *path
	}
	return t.cwd
}

func main() {
	log := telemetry.NewNoopLogger()

	specs := []tools.Spec{
		{Name: "read_file", Description: "Read a file from the workspace", JSONSchema: []byte(`{"type":"object"}`)},
	}
	r := router.New(specs, tools.SandboxPermissions{})

	handlers := router.NewHandlerRegistry()
	handlers.Register("read_file", func(ctx context.Context, sess session.Session, turn session.TurnContext, tracker *pending.Registry, call *tools.Call) (tools.Output, error) {
		payload := call.Payload.(*tools.FunctionPayload)
		return tools.FunctionOutput{Content: fmt.Sprintf("read_file handler received: %s", payload.Arguments), Success: true}, nil
	})

	conversationID := ident.ConversationID(uuid.NewString())
	turnID := ident.TurnID(uuid.NewString())

	sess := demoSession{conversationID: conversationID}
	turn := demoTurn{turnID: turnID, cwd: mustCwd()}

	item := modelio.FunctionCall{Name: "read_file", Arguments: `{"path":"README.md"}`, CallID: uuid.NewString()}
	call, err := r.BuildToolCall(sess, item)
	if err != nil {
		fmt.Fprintln(os.Stderr, "classify:", err)
		os.Exit(1)
	}
	if call == nil {
		fmt.Println("item carried no tool call")
		return
	}

	tracker := pending.NewRegistry()
	response, shutdown, err := router.Dispatch(context.Background(), log, sess, turn, tracker, handlers, call)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dispatch:", err)
		os.Exit(1)
	}

	if out, ok := response.(modelio.FunctionCallOutput); ok {
		fmt.Println("call_id:", out.CallID)
		fmt.Println("content: ", out.Output.Content)
	}
	fmt.Println("shutdown requested:", shutdown)
}

func mustCwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
