// Package pnpm provides a version source backed by the pnpm command line.
package pnpm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/git-pkgs/versioncheck/internal/core"
)

const (
	// DefaultURL is empty: pnpm uses whatever registry its own config names.
	DefaultURL = ""
	name       = "pnpm"
)

func init() {
	core.Register(name, DefaultURL, func(opts core.Options) core.Source {
		return New(opts, nil)
	})
}

// Runner executes a command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir string, command string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", command, strings.Join(args, " "), err, firstLine(msg))
		}
		return nil, fmt.Errorf("%s %s: %w", command, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

type Source struct {
	dir      string
	registry string
	runner   Runner
	logger   *zap.Logger
}

// New creates a pnpm source. A nil runner uses ExecRunner.
func New(opts core.Options, runner Runner) *Source {
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		dir:      opts.Dir,
		registry: opts.RegistryURL,
		runner:   runner,
		logger:   logger,
	}
}

func (s *Source) Name() string {
	return name
}

// RegistryVersion runs `pnpm view <name>@<tag> version`.
func (s *Source) RegistryVersion(ctx context.Context, pkg, tag string) core.Result {
	args := []string{"view", pkg + "@" + tag, "version"}
	if s.registry != "" {
		args = append(args, "--registry", s.registry)
	}

	out, err := s.runner.Run(ctx, s.dir, name, args...)
	if err != nil {
		return s.fail(pkg, tag, err)
	}

	version := strings.TrimSpace(string(out))
	if version == "" {
		return s.fail(pkg, tag, &core.NotFoundError{Source: name, Name: pkg, Tag: tag})
	}
	// Ranges matching several versions print one line per match.
	if strings.Contains(version, "\n") {
		return s.fail(pkg, tag, fmt.Errorf("ambiguous output for %s@%s", pkg, tag))
	}
	return core.Found(version)
}

type lsProject struct {
	Dependencies    map[string]lsDependency `json:"dependencies"`
	DevDependencies map[string]lsDependency `json:"devDependencies"`
}

type lsDependency struct {
	Version string `json:"version"`
}

// InstalledVersion runs `pnpm ls <name> --depth=0 --json` and reads the
// version from the first project listed.
func (s *Source) InstalledVersion(ctx context.Context, pkg string) core.Result {
	out, err := s.runner.Run(ctx, s.dir, name, "ls", pkg, "--depth=0", "--json")
	if err != nil {
		return s.fail(pkg, "", err)
	}

	var projects []lsProject
	if err := json.Unmarshal(out, &projects); err != nil {
		return s.fail(pkg, "", fmt.Errorf("parsing pnpm ls output: %w", err))
	}
	if len(projects) == 0 {
		return s.fail(pkg, "", &core.NotFoundError{Source: name, Name: pkg})
	}

	// The output is filtered to pkg, so at most one section is populated.
	deps := projects[0].Dependencies
	if len(deps) == 0 {
		deps = projects[0].DevDependencies
	}
	if dep, ok := deps[pkg]; ok && dep.Version != "" {
		return core.Found(dep.Version)
	}
	return s.fail(pkg, "", &core.NotFoundError{Source: name, Name: pkg})
}

func (s *Source) fail(pkg, tag string, err error) core.Result {
	lookupErr := &core.LookupError{Source: name, Name: pkg, Tag: tag, Err: err}
	s.logger.Debug("lookup failed", zap.String("pkg", pkg), zap.String("tag", tag), zap.Error(err))
	return core.Failed(lookupErr)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
