package core

import (
	"context"
	"sort"
	"sync"

	"go.trai.ch/zerr"
	"go.uber.org/zap"
)

// Source is the interface implemented by every version lookup backend.
type Source interface {
	// Name returns the identifier the source was registered under (e.g., "pnpm", "npm").
	Name() string

	// RegistryVersion resolves a distribution tag such as "latest" or "canary"
	// to a version number on the package registry.
	RegistryVersion(ctx context.Context, name, tag string) Result

	// InstalledVersion reports the version of name installed in the project.
	InstalledVersion(ctx context.Context, name string) Result
}

// Options carries the settings shared by all sources.
type Options struct {
	// Dir is the project directory holding package.json and node_modules.
	Dir string

	// RegistryURL overrides the source's default registry. Empty means default.
	RegistryURL string

	// Client is used by HTTP backed sources. Nil means DefaultClient().
	Client *Client

	Logger *zap.Logger
}

// Factory creates a source from options.
type Factory func(opts Options) Source

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a source factory under name. defaultURL is the registry the
// source talks to when Options.RegistryURL is empty.
func Register(name string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
	defaults[name] = defaultURL
}

// New creates the source registered under name.
func New(name string, opts Options) (Source, error) {
	mu.RLock()
	factory, ok := factories[name]
	defaultURL := defaults[name]
	mu.RUnlock()

	if !ok {
		return nil, zerr.With(ErrUnknownSource, "source", name)
	}

	if opts.RegistryURL == "" {
		opts.RegistryURL = defaultURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return factory(opts), nil
}

// SupportedSources returns all registered source names, sorted.
func SupportedSources() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultURL returns the default registry URL for a source.
func DefaultURL(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[name]
}
