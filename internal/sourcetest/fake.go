// Package sourcetest provides an in-memory core.Source for tests.
package sourcetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/git-pkgs/versioncheck/internal/core"
)

// ErrUnavailable is returned for names with no configured answer.
var ErrUnavailable = errors.New("unavailable")

// Fake answers lookups from maps. Missing entries fail with ErrUnavailable.
type Fake struct {
	// Tags maps package name to dist-tag to version.
	Tags map[string]map[string]string

	// Installed maps package name to installed version.
	Installed map[string]string

	// Delay is applied to every lookup; lookups honour ctx while waiting.
	Delay time.Duration

	mu    sync.Mutex
	calls []string
}

// Name implements core.Source.
func (f *Fake) Name() string { return "fake" }

// RegistryVersion implements core.Source.
func (f *Fake) RegistryVersion(ctx context.Context, name, tag string) core.Result {
	f.record("view " + name + "@" + tag)
	if err := f.wait(ctx); err != nil {
		return core.Failed(err)
	}
	if v, ok := f.Tags[name][tag]; ok {
		return core.Found(v)
	}
	return core.Failed(&core.LookupError{Source: f.Name(), Name: name, Tag: tag, Err: ErrUnavailable})
}

// InstalledVersion implements core.Source.
func (f *Fake) InstalledVersion(ctx context.Context, name string) core.Result {
	f.record("ls " + name)
	if err := f.wait(ctx); err != nil {
		return core.Failed(err)
	}
	if v, ok := f.Installed[name]; ok {
		return core.Found(v)
	}
	return core.Failed(&core.LookupError{Source: f.Name(), Name: name, Err: ErrUnavailable})
}

// Calls returns the lookups made so far in order of arrival.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(f.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
