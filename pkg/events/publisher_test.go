package events

import (
	"context"
	"testing"
)

func TestNoOpPublisher(t *testing.T) {
	pub := &NoOpPublisher{}
	err := pub.PublishChanged(context.Background(), &SettingChangedEvent{
		Target: "system.display.brightness",
		Method: "SetValue",
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var captured *SettingChangedEvent

	pub := NewCallbackPublisher(func(_ context.Context, event *SettingChangedEvent) error {
		captured = event
		return nil
	})

	event := &SettingChangedEvent{
		Target:    "system.audio.volume",
		Method:    "SetValue",
		ValueName: "Value",
		Timestamp: "2025-01-01T00:00:00Z",
	}

	err := pub.PublishChanged(context.Background(), event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if captured == nil {
		t.Fatal("expected callback to be called")
	}
	if captured.Target != "system.audio.volume" {
		t.Errorf("expected target system.audio.volume, got %s", captured.Target)
	}
	if captured.Method != "SetValue" {
		t.Errorf("expected method SetValue, got %s", captured.Method)
	}
}
