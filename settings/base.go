package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type baseReader struct {
	name string
	data []byte
}

// loadBase merges base defaults in order: maps, then files, then readers.
// Later sources override earlier ones key by key.
func (c *Configuration) loadBase() (map[string]any, error) {
	k := koanf.New(".")

	for _, m := range c.baseDefaults {
		if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
			return nil, fmt.Errorf("load base defaults: %w", err)
		}
	}
	for _, path := range c.baseFiles {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}
	for _, r := range c.baseReaders {
		if err := loadReader(k, r.name, r.data); err != nil {
			return nil, err
		}
	}

	return k.Raw(), nil
}

func loadFile(k *koanf.Koanf, path string) error {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("stat base file %q: %w", cleanPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("base file %q is a directory", cleanPath)
	}

	parser, err := parserForPath(cleanPath)
	if err != nil {
		return err
	}
	if err = k.Load(file.Provider(cleanPath), parser); err != nil {
		return fmt.Errorf("load base file %q: %w", cleanPath, err)
	}
	return nil
}

func loadReader(k *koanf.Koanf, name string, data []byte) error {
	parser, err := parserForPath(name)
	if err != nil {
		return err
	}
	if err = k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("load base reader %q: %w", name, err)
	}
	return nil
}

func parserForPath(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		if ext == "" {
			ext = "unknown"
		}

		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
