package db

import "time"

// Target represents a row in the targets table: one declared settings
// target the directory knows about.
type Target struct {
	ID          string    `json:"id"`
	Namespace   string    `json:"namespace"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Version     string    `json:"version"`
	Description *string   `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Applicable  bool      `json:"applicable"`
	State       []byte    `json:"state,omitempty"`
	Possible    []byte    `json:"possible,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}
