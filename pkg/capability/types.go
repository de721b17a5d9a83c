// Package capability implements the registry of externally callable methods.
package capability

import "context"

// Kind classifies the value a parameter accepts at the JSON boundary.
type Kind string

// Parameter kinds.
const (
	String  Kind = "string"
	Number  Kind = "number"
	Boolean Kind = "boolean"
	// Any passes the decoded value through untouched, including objects,
	// arrays and null. Interpretation is deferred to the handler.
	Any Kind = "any"
)

// ReturnKind classifies what a capability method hands back.
type ReturnKind string

// Return kinds.
const (
	ReturnNone     ReturnKind = "none"
	ReturnValue    ReturnKind = "value"
	ReturnSequence ReturnKind = "sequence"
	ReturnBoolean  ReturnKind = "boolean"
)

// Param describes one declared parameter of a capability method.
type Param struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Optional parameters are filled with Default when the caller omits
	// them. Optional params must be trailing.
	Optional bool        `json:"optional,omitempty"`
	Default  interface{} `json:"default,omitempty"`
}

// Descriptor describes one externally callable method: its unique name,
// ordered parameter list and return kind. Immutable once registered.
type Descriptor struct {
	Name    string     `json:"name"`
	Params  []Param    `json:"params"`
	Returns ReturnKind `json:"returns"`
}

// Target is the object a capability method operates on. Concrete
// capability sets assert it to their own target type inside handlers.
type Target interface{}

// Handler executes a capability method against a resolved target.
// Arguments arrive already coerced to each Param's declared kind, in
// declared order.
type Handler func(ctx context.Context, target Target, args []interface{}) (interface{}, error)
