package commsutil

import "testing"

func TestBuildChangeSubject(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"dotted target", "system.display.brightness", "settings.changed.system.display.brightness"},
		{"short target", "user.theme", "settings.changed.user.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildChangeSubject(tt.target)
			if got != tt.want {
				t.Errorf("BuildChangeSubject(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestDefaultSubjects(t *testing.T) {
	if SubjectDispatch != "settings.dispatch.v1" {
		t.Errorf("SubjectDispatch = %q, want settings.dispatch.v1", SubjectDispatch)
	}
	if SubjectDescribe != "settings.describe.v1" {
		t.Errorf("SubjectDescribe = %q, want settings.describe.v1", SubjectDescribe)
	}
	if SubjectChangeEvent != "settings.changed" {
		t.Errorf("SubjectChangeEvent = %q, want settings.changed", SubjectChangeEvent)
	}
}
