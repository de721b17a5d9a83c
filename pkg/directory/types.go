package directory

// TargetInfo is the directory's public view of a declared target.
type TargetInfo struct {
	ID          string  `json:"id"`
	Namespace   string  `json:"namespace"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Version     string  `json:"version"`
	Description *string `json:"description,omitempty"`
	Enabled     bool    `json:"enabled"`
}
