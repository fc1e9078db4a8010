// Package session holds the per-request state bag that rides along with a
// reasoning run and is echoed back to the client in every outbound frame.
package session

import (
	"encoding/json"
	"sync"
)

// GUIDKey is the client-supplied logical identity key, when present.
const GUIDKey = "guid"

// Session is a mapping from string keys to JSON-shaped values (strings,
// numbers, bools, maps, slices). One Session is created per inbound request
// and shared by every node activation of that request's traversal; it is
// never shared across concurrent requests. Writes are last-writer-wins.
type Session struct {
	mu     sync.RWMutex
	values map[string]any
}

// New returns an empty session.
func New() *Session {
	return &Session{values: make(map[string]any)}
}

// NewFromMap wraps the decoded request session object. A nil map is treated
// as empty. The session takes ownership of the map.
func NewFromMap(values map[string]any) *Session {
	if values == nil {
		values = make(map[string]any)
	}
	return &Session{values: values}
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// GetString returns the string under key, or "" when the key is absent or
// holds a non-string value.
func (s *Session) GetString(key string) string {
	value, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key from the session.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Snapshot returns a copy of the session map safe to hand to an encoder.
// Top-level entries are copied; frames are marshaled immediately after
// snapshotting, so nested values are not cloned.
func (s *Session) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the current session contents as a JSON object.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
