// Package ident defines the small identifier types shared across the
// tool-dispatch core so call sites do not mix free-form strings across
// unrelated ID spaces.
package ident

// ToolName is the strong type for a registered tool's name (e.g.
// "shell_command"). Router specs and dispatch both key on this type.
type ToolName string

// CallID is the strong type for a model-assigned tool call identifier.
// Call IDs are unique within a turn and are the rendezvous key used by
// the pending-tool registry.
type CallID string

// TurnID is the strong type for a conversational turn identifier.
type TurnID string

// ConversationID is the strong type for a conversation/session identifier,
// used to name the IPC socket metadata file.
type ConversationID string
