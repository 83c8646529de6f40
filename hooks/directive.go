package hooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// directiveSchemaJSON constrains the shape of a before_execution
// directive before it is accepted. It does not enforce the keyword set
// for string timeouts (that is case-insensitive and trimmed, spec §3,
// which JSON Schema cannot express directly) but it does reject
// structurally invalid shapes such as a negative numeric timeout,
// mirroring the teacher's registry.validatePayloadJSONAgainstSchema
// compile-and-validate pattern (SPEC_FULL §11).
const directiveSchemaJSON = `{
  "type": "object",
  "properties": {
    "local_shell": {
      "type": "object",
      "properties": {
        "timeout_ms": {
          "oneOf": [
            {"type": "integer", "minimum": 0},
            {"type": "string", "minLength": 1}
          ]
        }
      }
    }
  }
}`

var (
	directiveSchemaOnce sync.Once
	directiveSchema     *jsonschema.Schema
	directiveSchemaErr  error
)

func compiledDirectiveSchema() (*jsonschema.Schema, error) {
	directiveSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(directiveSchemaJSON), &doc); err != nil {
			directiveSchemaErr = fmt.Errorf("unmarshal directive schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("tool_hook_directive.json", doc); err != nil {
			directiveSchemaErr = fmt.Errorf("add directive schema resource: %w", err)
			return
		}
		schema, err := c.Compile("tool_hook_directive.json")
		if err != nil {
			directiveSchemaErr = fmt.Errorf("compile directive schema: %w", err)
			return
		}
		directiveSchema = schema
	})
	return directiveSchema, directiveSchemaErr
}

// validateDirectiveJSON checks raw stdout bytes against directiveSchemaJSON
// before unmarshaling into a typed Directive.
func validateDirectiveJSON(raw []byte) error {
	schema, err := compiledDirectiveSchema()
	if err != nil {
		return fmt.Errorf("load directive schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal directive: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("directive failed schema validation: %w", err)
	}
	return nil
}

// timeoutKeywords map case-insensitively (after trimming) to an
// infinite timeout (spec §3 ToolHookDirective).
var timeoutKeywords = map[string]bool{
	"infinite":   true,
	"no_timeout": true,
	"none":       true,
	"unlimited":  true,
}

// Timeout is the parsed form of a local_shell.timeout_ms directive
// value: either a finite number of milliseconds or Infinite (spec §3).
type Timeout struct {
	Infinite bool
	Millis   uint64
}

// UnmarshalJSON accepts either a JSON number (milliseconds) or a JSON
// string keyword (spec §3: "Keywords ... map to Infinite; a numeric
// value maps to Millis").
func (t *Timeout) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return fmt.Errorf("timeout_ms must not be null")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode timeout_ms string: %w", err)
		}
		keyword := strings.ToLower(strings.TrimSpace(s))
		if !timeoutKeywords[keyword] {
			return fmt.Errorf("unrecognized timeout_ms keyword %q", s)
		}
		t.Infinite = true
		t.Millis = 0
		return nil
	}
	ms, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return fmt.Errorf("decode timeout_ms number: %w", err)
	}
	t.Infinite = false
	t.Millis = ms
	return nil
}

// LocalShellDirective carries the only directive subtree defined today
// (spec §3, §9: "today only local_shell.timeout_ms exists").
type LocalShellDirective struct {
	TimeoutMS *Timeout `json:"timeout_ms,omitempty"`
}

// Directive is the structured JSON a before_execution hook may emit on
// stdout to mutate the pending call (spec §3 ToolHookDirective). It is
// an open-ended record: the JSON Schema gate in validateDirectiveJSON
// has no additionalProperties restriction, and encoding/json's default
// unmarshal behavior silently drops any key with no matching struct
// field, so unknown top-level keys are ignored rather than rejected
// (spec §9: "Implement the directive as an open-ended record with
// optional keyed subtrees; unknown keys are ignored").
type Directive struct {
	LocalShell *LocalShellDirective `json:"local_shell,omitempty"`
}

// ParseDirective validates and decodes raw stdout bytes from a
// before_execution hook. Empty (after trimming) input means "no
// directive"; any parse or validation failure is reported to the
// caller, which per spec §4.2 must log it and proceed as if no
// directive were present.
func ParseDirective(raw []byte) (*Directive, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}
	if err := validateDirectiveJSON([]byte(trimmed)); err != nil {
		return nil, err
	}
	var d Directive
	if err := json.Unmarshal([]byte(trimmed), &d); err != nil {
		return nil, fmt.Errorf("unmarshal directive: %w", err)
	}
	return &d, nil
}
