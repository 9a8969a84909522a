package settings

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Namespace holds the published settings of a configuration.
// Late-bound values are resolved on first access.
type Namespace struct {
	name string

	mu       sync.RWMutex
	settings map[string]any
	lazy     map[string]*lazySetting
}

type lazySetting struct {
	once     sync.Once
	resolve  func() (any, map[string]any, error)
	value    any
	siblings map[string]any
	err      error
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		name:     name,
		settings: make(map[string]any),
		lazy:     make(map[string]*lazySetting),
	}
}

// Name returns the name of the configuration the namespace belongs to.
func (ns *Namespace) Name() string {
	return ns.name
}

// publish replaces name with value. A pending late-bound entry of the same name is dropped.
func (ns *Namespace) publish(name string, value any) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	delete(ns.settings, name)
	delete(ns.lazy, name)
	ns.settings[name] = value
}

func (ns *Namespace) publishAll(entries map[string]any) {
	for name, value := range entries {
		ns.publish(name, value)
	}
}

func (ns *Namespace) deferResolve(name string, resolve func() (any, map[string]any, error)) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	delete(ns.settings, name)
	ns.lazy[name] = &lazySetting{resolve: resolve}
}

// Get returns the setting called name, resolving it first when it is late-bound.
func (ns *Namespace) Get(name string) (any, error) {
	ns.mu.RLock()
	value, ok := ns.settings[name]
	entry, pending := ns.lazy[name]
	ns.mu.RUnlock()

	if ok {
		return value, nil
	}
	if !pending {
		return nil, fmt.Errorf("%w %q in configuration '%s'", ErrUnknownSetting, name, ns.name)
	}

	entry.once.Do(func() {
		entry.value, entry.siblings, entry.err = entry.resolve()
	})
	if entry.err != nil {
		return nil, entry.err
	}

	ns.mu.Lock()
	if ns.lazy[name] == entry {
		delete(ns.lazy, name)
		ns.settings[name] = entry.value
		for k, v := range entry.siblings {
			ns.settings[k] = v
		}
	}
	ns.mu.Unlock()

	return entry.value, nil
}

// Lookup is like Get but reports failures as a missing setting.
func (ns *Namespace) Lookup(name string) (any, bool) {
	v, err := ns.Get(name)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Names returns every published name in sorted order, including pending late-bound ones.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	names := make([]string, 0, len(ns.settings)+len(ns.lazy))
	for name := range ns.settings {
		names = append(names, name)
	}
	for name := range ns.lazy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All resolves every pending setting and returns a copy of the namespace.
func (ns *Namespace) All() (map[string]any, error) {
	ns.mu.RLock()
	pending := make([]string, 0, len(ns.lazy))
	for name := range ns.lazy {
		pending = append(pending, name)
	}
	ns.mu.RUnlock()

	sort.Strings(pending)
	for _, name := range pending {
		if _, err := ns.Get(name); err != nil {
			return nil, err
		}
	}

	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make(map[string]any, len(ns.settings))
	for k, v := range ns.settings {
		out[k] = v
	}
	return out, nil
}

// Decode copies the settings into target, a pointer to a struct.
// Fields are matched by the "setting" tag, falling back to a case-insensitive name match.
func (ns *Namespace) Decode(target any) error {
	all, err := ns.All()
	if err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "setting",
		Result:     target,
		DecodeHook: decodeHook(),
	})
	if err != nil {
		return err
	}
	if err = decoder.Decode(all); err != nil {
		return fmt.Errorf("decode configuration '%s': %w", ns.name, err)
	}
	return nil
}
