package metadata

import "sync"

// Key identifies a kind of metadata attached to a target
type Key string

const (
	KeyRoutes          Key = "routes"
	KeyRouteArgs       Key = "route-args"
	KeyVerb            Key = "verb"
	KeyMiddlewares     Key = "middlewares"
	KeyRouter          Key = "router"
	KeySchema          Key = "schema"
	KeySchemaLocation  Key = "schema-location"
	KeyOneOfSchema     Key = "oneof-schema"
	KeyStaticMethods   Key = "static-methods"
	KeyResponseHandled Key = "response-handled"
)

// Scope selects between the class itself and its instances
type Scope int

const (
	// ScopeStatic targets the class (static members)
	ScopeStatic Scope = iota
	// ScopeInstance targets the instance prototype
	ScopeInstance
)

// String returns the scope name
func (s Scope) String() string {
	if s == ScopeInstance {
		return "instance"
	}
	return "static"
}

// Target is a class in a given scope. Each target owns an independent
// metadata table.
type Target struct {
	Class *Class
	Scope Scope
}

// Static returns the static target of c
func Static(c *Class) Target {
	return Target{Class: c, Scope: ScopeStatic}
}

// Instance returns the instance target of c
func Instance(c *Class) Target {
	return Target{Class: c, Scope: ScopeInstance}
}

// String returns a readable representation of the target
func (t Target) String() string {
	if t.Class == nil {
		return "<nil>." + t.Scope.String()
	}
	return t.Class.Name() + "." + t.Scope.String()
}

// Store attaches arbitrary values to targets. Lookups are exact-target and
// never climb the class hierarchy.
type Store struct {
	mu   sync.RWMutex
	data map[Target]map[Key]interface{}
}

// NewStore creates an empty metadata store
func NewStore() *Store {
	return &Store{data: make(map[Target]map[Key]interface{})}
}

// Get returns the value stored under key for target. When nothing is stored
// the first default is returned, or nil without one.
func (s *Store) Get(key Key, target Target, def ...interface{}) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if values, ok := s.data[target]; ok {
		if v, ok := values[key]; ok {
			return v
		}
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// Has reports whether a value is stored under key for target
func (s *Store) Has(key Key, target Target) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[target][key]
	return ok
}

// Set stores value under key for target
func (s *Store) Set(key Key, target Target, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.data[target]
	if !ok {
		values = make(map[Key]interface{})
		s.data[target] = values
	}
	values[key] = value
}

// Delete removes the value stored under key for target
func (s *Store) Delete(key Key, target Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[target], key)
}

// Reset drops every stored value
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[Target]map[Key]interface{})
}

// Lookup returns the value under key for target asserted to T
func Lookup[T any](s *Store, key Key, target Target) (T, bool) {
	var zero T
	v := s.Get(key, target)
	if v == nil {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

var (
	defaultMu    sync.RWMutex
	defaultStore = NewStore()
)

// Default returns the process wide store that registrations write to
func Default() *Store {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultStore
}

// SetDefault replaces the process wide store and returns the previous one
func SetDefault(s *Store) *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultStore
	defaultStore = s
	return prev
}
