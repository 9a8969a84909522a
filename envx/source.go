package envx

import (
	"os"
	"sync"
)

//go:generate go run go.uber.org/mock/mockgen@v0.3.0 -source source.go -destination ./mock/source.go

// Source is an interface for any data source that can be used to lookup configuration values.
type Source interface {
	// Lookup retrieves a value by name from the source.
	// It returns the value as a string, a boolean flag indicating if the value was found,
	// and an error if there was a problem accessing the source.
	Lookup(name string) (value string, found bool, err error)

	// Name returns a human-readable name of the source for debugging or logging purposes.
	Name() string
}

// EnvSource implements the Source interface for process environment variables.
type EnvSource struct{}

// Lookup retrieves an environment variable by name.
func (EnvSource) Lookup(key string) (string, bool, error) {
	val, found := os.LookupEnv(key)
	return val, found, nil
}

// Name returns the source name.
func (EnvSource) Name() string {
	return "Environment"
}

// MapSource implements Source for a map[string]string.
// Useful for testing or in-memory configuration.
type MapSource struct {
	mu sync.RWMutex

	// SourceName identifies this source for logging/debugging
	SourceName string
	// Data holds the key-value pairs
	Data map[string]string
}

// NewMapSource creates a new MapSource with an optional name.
func NewMapSource(data map[string]string, name string) *MapSource {
	if name == "" {
		name = "Map"
	}
	if data == nil {
		data = make(map[string]string)
	}
	return &MapSource{
		SourceName: name,
		Data:       data,
	}
}

// Lookup retrieves a value from the map.
func (s *MapSource) Lookup(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.Data[key]
	return val, found, nil
}

// Set stores a value, replacing the previous one.
func (s *MapSource) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data[key] = value
}

// Unset removes a key from the map.
func (s *MapSource) Unset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Data, key)
}

// Name returns the source name for logging purposes.
func (s *MapSource) Name() string {
	return s.SourceName
}

// ResolverSource exposes a Resolver as a Source, so resolvers can be layered.
type ResolverSource struct {
	Resolver   Resolver
	SourceName string
}

// Lookup queries the wrapped resolver.
func (s ResolverSource) Lookup(name string) (string, bool, error) {
	v, err := s.Resolver.Get(name)
	if err != nil {
		return "", false, err
	}
	return v.Val, v.Exist, nil
}

// Name returns the source name.
func (s ResolverSource) Name() string {
	if s.SourceName == "" {
		return "Resolver"
	}
	return s.SourceName
}
