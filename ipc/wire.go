// Package ipc implements the pending-result IPC endpoint (spec §4.5): a
// loopback-only TCP transport that lets an out-of-process deliverer
// inject a real tool result into a live session.
package ipc

import "goa.design/toolcore/tools"

// request is the JSON body of a single pending-result delivery (spec
// §6 "Pending-result wire protocol").
type request struct {
	CallID string                          `json:"call_id"`
	Output tools.FunctionCallOutputPayload `json:"output"`
}

// okResponse is the literal response body on success (spec §6: "the
// literal bytes `ok`").
const okResponse = "ok"
