package capability

import "fmt"

const logPrefix = "capability:registry"

// Registry is an explicit registration table mapping method names to
// descriptors and handlers. It is built once at startup, then read-only:
// Resolve and Describe are safe for concurrent use after registration.
// There is no hidden global registry; tests build their own.
type Registry struct {
	entries []entry
	byName  map[string]int
}

type entry struct {
	desc    Descriptor
	handler Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds a capability method to the table. Duplicate names are
// rejected outright: there is no overload resolution, and silently
// keeping the first (or last) registration would hide a programming
// error.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	if desc.Name == "" {
		return fmt.Errorf("%s - capability name is required", logPrefix)
	}
	if handler == nil {
		return fmt.Errorf("%s - capability %q requires a handler", logPrefix, desc.Name)
	}
	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("%s - capability %q already registered", logPrefix, desc.Name)
	}
	optionalSeen := false
	for _, p := range desc.Params {
		if p.Name == "" {
			return fmt.Errorf("%s - capability %q has an unnamed parameter", logPrefix, desc.Name)
		}
		if p.Optional {
			optionalSeen = true
		} else if optionalSeen {
			return fmt.Errorf("%s - capability %q declares required parameter %q after an optional one",
				logPrefix, desc.Name, p.Name)
		}
	}
	r.byName[desc.Name] = len(r.entries)
	r.entries = append(r.entries, entry{desc: desc, handler: handler})
	return nil
}

// MustRegister is Register for static table construction; it panics on
// registration errors, which are programming errors.
func (r *Registry) MustRegister(desc Descriptor, handler Handler) {
	if err := r.Register(desc, handler); err != nil {
		panic(err)
	}
}

// Resolve looks up a capability by exact, case-sensitive name.
func (r *Registry) Resolve(name string) (Descriptor, Handler, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Descriptor{}, nil, false
	}
	return r.entries[i].desc, r.entries[i].handler, true
}

// Describe returns the descriptors in registration order. The returned
// slice is a copy, so callers may range it repeatedly or hold it across
// calls; descriptors themselves are read-only by convention.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.desc
	}
	return out
}

// Len reports the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.entries)
}
