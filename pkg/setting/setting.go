// Package setting provides the concrete settings target the dispatch engine operates on.
package setting

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Platform-style diagnostic codes carried on OpError. The numbering
// follows the classic system error codes the native settings layer
// reports.
const (
	CodeValueNotFound    = 2
	CodeAccessDenied     = 5
	CodeNotSupported     = 50
	CodeInvalidParameter = 87
)

// OpError is the typed failure channel for setting operations. The
// dispatcher surfaces Code on invocation failures.
type OpError struct {
	Code    int
	Op      string
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Op, e.Message, e.Code)
}

// ErrorCode returns the platform-style diagnostic code.
func (e *OpError) ErrorCode() int {
	return e.Code
}

// Setting is one named settings target: a set of named values, an
// optional list of admissible values, enabled/applicable flags and an
// optional invokable action. Values are guarded because serve mode
// resolves targets from concurrent message handlers.
type Setting struct {
	id   string
	kind string

	mu         sync.RWMutex
	values     map[string]interface{}
	possible   []interface{}
	enabled    bool
	applicable bool
	action     func(ctx context.Context) error
}

// SettingParams holds parameters for NewSetting.
type SettingParams struct {
	ID   string
	Kind string
	// Values maps value names to current values; the conventional
	// primary value name is "Value".
	Values map[string]interface{}
	// Possible lists admissible values for the primary value; nil means
	// unconstrained.
	Possible   []interface{}
	Enabled    bool
	Applicable bool
	// Action runs on Invoke. Nil is allowed only for kind "action"
	// targets with no behavior; other kinds report not-supported.
	Action func(ctx context.Context) error
}

// NewSetting creates a Setting.
func NewSetting(params SettingParams) *Setting {
	values := params.Values
	if values == nil {
		values = make(map[string]interface{})
	}
	return &Setting{
		id:         params.ID,
		kind:       params.Kind,
		values:     values,
		possible:   params.Possible,
		enabled:    params.Enabled,
		applicable: params.Applicable,
		action:     params.Action,
	}
}

// ID returns the target identifier.
func (s *Setting) ID() string { return s.id }

// Kind returns the declared target kind (toggle, range, choice, action,
// composite, custom).
func (s *Setting) Kind() string { return s.kind }

// GetValue returns the named value.
func (s *Setting) GetValue(_ context.Context, valueName string) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[valueName]
	if !ok {
		return nil, &OpError{Code: CodeValueNotFound, Op: "GetValue",
			Message: fmt.Sprintf("target %q has no value %q", s.id, valueName)}
	}
	return v, nil
}

// SetValue stores the named value. A disabled target rejects writes;
// when an admissible-value list exists, the primary value must be on it.
func (s *Setting) SetValue(_ context.Context, valueName string, newValue interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return &OpError{Code: CodeAccessDenied, Op: "SetValue",
			Message: fmt.Sprintf("target %q is disabled", s.id)}
	}
	if valueName == PrimaryValueName && s.possible != nil && !s.admits(newValue) {
		return &OpError{Code: CodeInvalidParameter, Op: "SetValue",
			Message: fmt.Sprintf("value %v is not admissible for target %q", newValue, s.id)}
	}
	s.values[valueName] = newValue
	return nil
}

// ListValues returns the admissible values for the primary value.
func (s *Setting) ListValues(_ context.Context) ([]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]interface{}, len(s.possible))
	copy(out, s.possible)
	return out, nil
}

// Invoke runs the target's action.
func (s *Setting) Invoke(ctx context.Context) error {
	s.mu.RLock()
	action := s.action
	kind := s.kind
	enabled := s.enabled
	s.mu.RUnlock()

	if !enabled {
		return &OpError{Code: CodeAccessDenied, Op: "Invoke",
			Message: fmt.Sprintf("target %q is disabled", s.id)}
	}
	if action == nil {
		if kind == KindAction {
			return nil
		}
		return &OpError{Code: CodeNotSupported, Op: "Invoke",
			Message: fmt.Sprintf("target %q does not support invocation", s.id)}
	}
	return action(ctx)
}

// IsEnabled reports whether the target accepts mutations.
func (s *Setting) IsEnabled(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled, nil
}

// IsApplicable reports whether the target applies on this system.
func (s *Setting) IsApplicable(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicable, nil
}

// admits reports whether v is on the admissible-value list. Caller
// holds the lock. DeepEqual because decoded JSON values may be
// structured.
func (s *Setting) admits(v interface{}) bool {
	for _, p := range s.possible {
		if reflect.DeepEqual(p, v) {
			return true
		}
	}
	return false
}
