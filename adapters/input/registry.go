// Package input loads channel metric summaries from JSON, YAML or HCL files.
package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// Loader decodes channel inputs from one file format
type Loader interface {
	// Name returns the format name
	Name() string

	// Extensions lists the file extensions this loader handles, with the dot
	Extensions() []string

	// Decode parses file contents; filename is used in diagnostics only
	Decode(src []byte, filename string) ([]types.ChannelInput, error)
}

// Registry maps file extensions to loaders
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	byExt   map[string]Loader
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
		byExt:   make(map[string]Loader),
	}
}

// Register adds a loader to the registry
func (r *Registry) Register(l Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := l.Name()
	if _, exists := r.loaders[name]; exists {
		return fmt.Errorf("loader already registered: %s", name)
	}
	r.loaders[name] = l
	r.order = append(r.order, name)
	for _, ext := range l.Extensions() {
		r.byExt[strings.ToLower(ext)] = l
	}
	return nil
}

// Get returns a loader by format name
func (r *Registry) Get(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	return l, ok
}

// Formats returns registered format names in registration order
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// ForPath picks a loader from the file extension
func (r *Registry) ForPath(path string) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.byExt[ext]
	if !ok {
		return nil, errors.NotSupported(fmt.Sprintf("channel file extension %q", ext))
	}
	return l, nil
}

// LoadFile reads path and decodes it with the loader matching its extension
func (r *Registry) LoadFile(path string) ([]types.ChannelInput, error) {
	l, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "read channel file", err).WithContext("path", path)
	}
	channels, err := l.Decode(src, path)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, errors.Inputf("no channels found in %s", path)
	}
	return channels, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry with the JSON, YAML and HCL loaders
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		_ = defaultRegistry.Register(JSONLoader{})
		_ = defaultRegistry.Register(YAMLLoader{})
		_ = defaultRegistry.Register(HCLLoader{})
	})
	return defaultRegistry
}

// LoadFile loads path with the default registry
func LoadFile(path string) ([]types.ChannelInput, error) {
	return Default().LoadFile(path)
}
