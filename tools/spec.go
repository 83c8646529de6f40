package tools

import "goa.design/toolcore/ident"

// Spec enumerates the metadata the router and model-facing tool list
// need for one configured tool (spec §4.1: Router.specs()).
type Spec struct {
	// Name is the tool identifier the model invokes by.
	Name ident.ToolName
	// Description is shown to the model as tool-use guidance.
	Description string
	// JSONSchema is the argument schema shown to the model, rendered at
	// configuration time.
	JSONSchema []byte
	// SupportsParallelToolCalls, when true, allows the router to report
	// this tool as safe for concurrent dispatch within a single turn
	// (spec §4.1 tool_supports_parallel, §5 concurrency model).
	SupportsParallelToolCalls bool
}

// Clone returns a deep copy of the spec.
func (s Spec) Clone() Spec {
	c := s
	if s.JSONSchema != nil {
		c.JSONSchema = append([]byte(nil), s.JSONSchema...)
	}
	return c
}
