package setting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/morezero/settings-dispatch/pkg/capability"
)

const storeLogPrefix = "setting:store"

// Store resolves opaque target identifiers to live Setting objects. It
// satisfies the dispatcher's Resolver contract and is safe for
// concurrent resolution.
type Store struct {
	mu       sync.RWMutex
	settings map[string]*Setting
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{settings: make(map[string]*Setting)}
}

// Add registers a setting under its identifier, replacing any previous
// entry with the same id.
func (st *Store) Add(s *Setting) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.settings[s.ID()] = s
}

// Resolve returns the target for id, or an error when no such target
// exists.
func (st *Store) Resolve(_ context.Context, id string) (capability.Target, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.settings[id]
	if !ok {
		return nil, fmt.Errorf("no target %q", id)
	}
	return s, nil
}

// Len reports the number of targets.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.settings)
}

// IDs returns the target identifiers in sorted order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.settings))
	for id := range st.settings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// targetsFile is the on-disk shape of a targets file.
type targetsFile struct {
	Targets []targetEntry `json:"targets"`
}

type targetEntry struct {
	ID         string                 `json:"id"`
	Kind       string                 `json:"kind"`
	Values     map[string]interface{} `json:"values,omitempty"`
	Possible   []interface{}          `json:"possibleValues,omitempty"`
	Enabled    *bool                  `json:"enabled,omitempty"`
	Applicable *bool                  `json:"applicable,omitempty"`
}

// LoadFile seeds a Store from a targets JSON file. Enabled and
// applicable default to true when absent.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read targets file %s: %w", storeLogPrefix, path, err)
	}

	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s - failed to parse targets file %s: %w", storeLogPrefix, path, err)
	}

	st := NewStore()
	for _, entry := range file.Targets {
		if entry.ID == "" {
			return nil, fmt.Errorf("%s - targets file %s contains an entry without id", storeLogPrefix, path)
		}
		enabled, applicable := true, true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		if entry.Applicable != nil {
			applicable = *entry.Applicable
		}
		st.Add(NewSetting(SettingParams{
			ID:         entry.ID,
			Kind:       entry.Kind,
			Values:     entry.Values,
			Possible:   entry.Possible,
			Enabled:    enabled,
			Applicable: applicable,
		}))
	}

	slog.Info(fmt.Sprintf("%s - Loaded %d targets from %s", storeLogPrefix, st.Len(), path))
	return st, nil
}
