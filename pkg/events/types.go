// Package events defines event types and publisher interfaces for setting change events.
package events

// SettingChangedEvent is emitted after a mutating capability (set a
// value, invoke an action) succeeds against a target.
type SettingChangedEvent struct {
	Target    string `json:"target"`
	Method    string `json:"method"`
	ValueName string `json:"valueName,omitempty"`
	Timestamp string `json:"timestamp"`
}
