// Package npm provides a version source that talks to an npm registry over
// HTTP and reads installed versions from node_modules.
package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/git-pkgs/versioncheck/internal/core"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	name       = "npm"
)

func init() {
	core.Register(name, DefaultURL, func(opts core.Options) core.Source {
		return New(opts)
	})
}

type Registry struct {
	baseURL string
	dir     string
	client  *core.Client
	logger  *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	tags  map[string]map[string]string
}

func New(opts core.Options) *Registry {
	baseURL := opts.RegistryURL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	client := opts.Client
	if client == nil {
		client = core.DefaultClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dir:     opts.Dir,
		client:  client,
		logger:  logger,
		tags:    make(map[string]map[string]string),
	}
}

func (r *Registry) Name() string {
	return name
}

// RegistryVersion resolves tag from the package's dist-tags. All tags of a
// package come from a single request that is shared by concurrent callers
// and remembered for the lifetime of the Registry.
func (r *Registry) RegistryVersion(ctx context.Context, pkg, tag string) core.Result {
	tags, err := r.distTags(ctx, pkg)
	if err != nil {
		return r.fail(pkg, tag, err)
	}
	version, ok := tags[tag]
	if !ok || version == "" {
		return r.fail(pkg, tag, &core.NotFoundError{Source: name, Name: pkg, Tag: tag})
	}
	return core.Found(version)
}

func (r *Registry) distTags(ctx context.Context, pkg string) (map[string]string, error) {
	r.mu.Lock()
	tags, ok := r.tags[pkg]
	r.mu.Unlock()
	if ok {
		return tags, nil
	}

	v, err, _ := r.group.Do(pkg, func() (any, error) {
		var tags map[string]string
		if err := r.client.GetJSON(ctx, r.distTagsURL(pkg), &tags); err != nil {
			var httpErr *core.HTTPError
			if errors.As(err, &httpErr) && httpErr.IsNotFound() {
				return nil, &core.NotFoundError{Source: name, Name: pkg}
			}
			return nil, err
		}

		r.mu.Lock()
		r.tags[pkg] = tags
		r.mu.Unlock()
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

func (r *Registry) distTagsURL(pkg string) string {
	return fmt.Sprintf("%s/-/package/%s/dist-tags", r.baseURL, url.PathEscape(pkg))
}

type installedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InstalledVersion reads node_modules/<pkg>/package.json under the project
// directory.
func (r *Registry) InstalledVersion(ctx context.Context, pkg string) core.Result {
	if err := ctx.Err(); err != nil {
		return r.fail(pkg, "", err)
	}

	path := filepath.Join(r.dir, "node_modules", filepath.FromSlash(pkg), "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.fail(pkg, "", &core.NotFoundError{Source: name, Name: pkg})
		}
		return r.fail(pkg, "", err)
	}

	var installed installedPackage
	if err := json.Unmarshal(data, &installed); err != nil {
		return r.fail(pkg, "", fmt.Errorf("parsing %s: %w", path, err))
	}
	if installed.Version == "" {
		return r.fail(pkg, "", fmt.Errorf("%s has no version", path))
	}
	return core.Found(installed.Version)
}

func (r *Registry) fail(pkg, tag string, err error) core.Result {
	r.logger.Debug("lookup failed", zap.String("pkg", pkg), zap.String("tag", tag), zap.Error(err))
	return core.Failed(&core.LookupError{Source: name, Name: pkg, Tag: tag, Err: err})
}
