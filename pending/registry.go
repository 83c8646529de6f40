// Package pending implements the pending-tool registry (spec §4.3): a
// rendezvous table between a handler waiting on a deferred result and a
// later deliverer, in either arrival order, surviving across process
// restarts only insofar as the rollout-edit procedure (package rollout)
// repairs the on-disk log once a new process re-registers the call.
package pending

import (
	"sync"

	"goa.design/toolcore/ident"
	"goa.design/toolcore/tools"
)

// Metadata is the immutable snapshot of a registered call (spec §4.3
// PendingToolMetadata).
type Metadata struct {
	CallID   ident.CallID
	ToolName ident.ToolName
	TurnID   ident.TurnID
	Note     string
}

// entry is the internal registry record: metadata plus a one-shot
// delivery channel split into sender and receiver halves, each
// removable exactly once (spec §4.3 PendingToolEntry). The table invariant
// is enforced by Registry's methods, never by entry itself: an entry
// exists in the map iff at least one of {senderTaken, receiverTaken} is
// false.
type entry struct {
	metadata     Metadata
	ch           chan tools.FunctionCallOutputPayload
	senderTaken  bool
	receiverTaken bool
}

// Registry is the mutex-guarded call_id -> entry table (spec §4.3).
type Registry struct {
	mu      sync.Mutex
	entries map[ident.CallID]*entry
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ident.CallID]*entry)}
}

// Register creates a fresh one-shot channel and indexes it by call_id,
// replacing any prior entry for the same id (spec §4.3 register():
// "newer registration wins").
func (r *Registry) Register(callID ident.CallID, toolName ident.ToolName, turnID ident.TurnID, note string) Metadata {
	meta := Metadata{CallID: callID, ToolName: toolName, TurnID: turnID, Note: note}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[callID] = &entry{
		metadata: meta,
		ch:       make(chan tools.FunctionCallOutputPayload, 1),
	}
	return meta
}

// TakeReceiver removes the receiver half if present (spec §4.3
// take_receiver()). If, after removal, the sender half has already been
// taken, the entry is dropped from the table.
func (r *Registry) TakeReceiver(callID ident.CallID) (Metadata, <-chan tools.FunctionCallOutputPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[callID]
	if !ok || e.receiverTaken {
		return Metadata{}, nil, false
	}
	e.receiverTaken = true
	if e.senderTaken {
		delete(r.entries, callID)
	}
	return e.metadata, e.ch, true
}

// Resolve removes the sender half if present and delivers payload on it,
// ignoring a full channel (the receiver may never arrive, spec §4.3
// resolve(): "ignoring send failure"). If, after removal, the receiver
// half has already been taken, the entry is dropped from the table.
func (r *Registry) Resolve(callID ident.CallID, payload tools.FunctionCallOutputPayload) (Metadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[callID]
	if !ok || e.senderTaken {
		return Metadata{}, false
	}
	e.senderTaken = true
	select {
	case e.ch <- payload:
	default:
	}
	if e.receiverTaken {
		delete(r.entries, callID)
	}
	return e.metadata, true
}

// Cancel removes the entry outright without delivering anything.
// Subsequent Resolve and TakeReceiver for callID return false (spec
// §4.3 cancel()).
func (r *Registry) Cancel(callID ident.CallID) (Metadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[callID]
	if !ok {
		return Metadata{}, false
	}
	delete(r.entries, callID)
	return e.metadata, true
}
