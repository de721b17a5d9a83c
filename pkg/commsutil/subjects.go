package commsutil

import "fmt"

// Default COMMS subjects.
const (
	SubjectDispatch    = "settings.dispatch.v1"
	SubjectDescribe    = "settings.describe.v1"
	SubjectChangeEvent = "settings.changed"
)

// BuildChangeSubject builds a granular change event subject for one target.
func BuildChangeSubject(target string) string {
	return fmt.Sprintf("settings.changed.%s", target)
}
