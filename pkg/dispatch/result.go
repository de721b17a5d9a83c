// Package dispatch resolves, coerces, invokes and classifies commands.
package dispatch

// Error kind codes. Exactly one per failed command; the structural
// DecodeError is deliberately absent because it aborts the run instead
// of producing a Result.
const (
	KindTargetNotFound   = "TARGET_NOT_FOUND"
	KindMethodNotExposed = "METHOD_NOT_EXPOSED"
	KindArgumentMismatch = "ARGUMENT_MISMATCH"
	KindInvocationFailed = "INVOCATION_FAILED"
)

// ErrorDetail holds structured failure information for one command.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Code carries a platform-style numeric diagnostic when the
	// underlying failure exposed one; zero means none was available.
	Code int `json:"code,omitempty"`
}

// Result is the per-command outcome: either a success value or a
// classified error. Exactly one Result exists per Command, in input
// order.
type Result struct {
	Target string
	Method string
	Ok     bool
	Value  interface{}
	Error  *ErrorDetail
}

func success(target, method string, value interface{}) *Result {
	return &Result{Target: target, Method: method, Ok: true, Value: value}
}

func failure(target, method, kind, message string) *Result {
	return &Result{
		Target: target,
		Method: method,
		Error:  &ErrorDetail{Kind: kind, Message: message},
	}
}
