package county

import (
	"fmt"
	"slices"
)

// UnknownJurisdictionError reports a lookup for a jurisdiction key with no
// registered profile. It is batch-fatal: the orchestrator checks the key
// before any row is processed.
type UnknownJurisdictionError struct {
	Key string
}

func (e *UnknownJurisdictionError) Error() string {
	return fmt.Sprintf("unknown jurisdiction %q", e.Key)
}

// Registry maps jurisdiction keys to their profiles. It is populated once at
// startup and read-only afterwards, so concurrent reads need no locking.
// No other component may hold jurisdiction-specific logic: adding a county is
// a Register call with a new Profile value, never a new code path.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// Register adds or replaces a profile keyed by its jurisdiction ID.
func (r *Registry) Register(p Profile) {
	r.profiles[p.ID] = p
}

// Get returns the profile for a jurisdiction key.
func (r *Registry) Get(key string) (Profile, error) {
	p, ok := r.profiles[key]
	if !ok {
		return Profile{}, &UnknownJurisdictionError{Key: key}
	}
	return p, nil
}

// All returns every registered profile in stable key order.
func (r *Registry) All() []Profile {
	keys := make([]string, 0, len(r.profiles))
	for key := range r.profiles {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	out := make([]Profile, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.profiles[key])
	}
	return out
}
