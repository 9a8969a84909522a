package envx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// DotenvSource implements Source on top of a .env file.
// The file is parsed once on creation and again on every Reload.
type DotenvSource struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]string
}

// NewDotenvSource creates a DotenvSource that loads variables from the given file.
// It immediately reads and parses the file during initialization.
func NewDotenvSource(filePath string) (*DotenvSource, error) {
	source := &DotenvSource{filePath: filePath}
	if err := source.Reload(); err != nil {
		return nil, err
	}
	return source, nil
}

// Lookup retrieves a value by name from the loaded file.
func (s *DotenvSource) Lookup(name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.values[name]
	return value, found, nil
}

// Name returns the name of this source including the file path.
func (s *DotenvSource) Name() string {
	return fmt.Sprintf("dotenv[%s]", s.filePath)
}

// Path returns the file the source was created from.
func (s *DotenvSource) Path() string {
	return s.filePath
}

// Keys returns the names defined in the file.
func (s *DotenvSource) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Reload reads the file again and replaces the loaded values.
func (s *DotenvSource) Reload() error {
	values, err := readDotenv(s.filePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// LoadDotenv seeds the process environment from a dotenv file.
// Variables that already exist in the environment are left untouched.
// It returns the names that were actually set.
func LoadDotenv(filePath string) ([]string, error) {
	values, err := readDotenv(filePath)
	if err != nil {
		return nil, err
	}

	var set []string
	for k, v := range values {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return set, fmt.Errorf("cannot set %s from %s: %w", k, filePath, err)
		}
		set = append(set, k)
	}
	return set, nil
}

func readDotenv(filePath string) (map[string]string, error) {
	values, err := godotenv.Read(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDotenvNotFound, filePath)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDotenvMalformed, filePath, err)
	}
	return values, nil
}
