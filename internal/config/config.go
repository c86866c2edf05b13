// Package config loads the audit policy: which packages are tracked, which
// families must move in lockstep and how lookups are made.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/versioncheck/internal/consistency"
	"github.com/git-pkgs/versioncheck/internal/core"
)

// FileName is the config file looked up in the project directory.
const FileName = ".versioncheck.yaml"

var (
	// ErrInvalid is returned for config files that cannot be parsed or fail
	// validation.
	ErrInvalid = zerr.New("invalid config")
	// ErrNotFound is returned when an explicitly named config file is missing.
	ErrNotFound = zerr.New("config file not found")
)

// Config is the audit policy.
type Config struct {
	Source        string              `yaml:"source"`
	Registry      string              `yaml:"registry"`
	Timeout       time.Duration       `yaml:"timeout"`
	Concurrency   int                 `yaml:"concurrency"`
	UpdateCommand string              `yaml:"update_command"`
	Packages      []Tracked           `yaml:"packages"`
	Summary       []string            `yaml:"summary"`
	Groups        []consistency.Group `yaml:"groups"`
	ReleasePages  []ReleasePage       `yaml:"release_pages"`
}

// Tracked is a package reported in its own block. Canary packages also have
// their "canary" dist-tag looked up and are left out of the prerelease scan.
type Tracked struct {
	Name   string `yaml:"name"`
	Canary bool   `yaml:"canary,omitempty"`
}

// ReleasePage is a link printed at the end of a full report.
type ReleasePage struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Default returns the built-in policy.
func Default() *Config {
	return &Config{
		Source:        "pnpm",
		Timeout:       core.DefaultTimeout,
		Concurrency:   core.DefaultConcurrency,
		UpdateCommand: "pnpm update <package>@latest",
		Packages: []Tracked{
			{Name: "payload"},
			{Name: "next", Canary: true},
			{Name: "react", Canary: true},
			{Name: "react-dom", Canary: true},
			{Name: "typescript"},
		},
		Summary: []string{"typescript", "payload", "react", "next"},
		Groups: []consistency.Group{
			{Name: "Payload packages", Prefix: "@payloadcms/", Base: "payload"},
			{Name: "React packages", Packages: []string{"react", "react-dom", "@types/react", "@types/react-dom"}},
			{Name: "Next.js packages", Packages: []string{"next", "eslint-config-next", "@next/eslint-plugin-next"}},
			{Name: "Lexical packages", Prefix: "@lexical/", Base: "lexical"},
		},
		ReleasePages: []ReleasePage{
			{Label: "Payload", URL: "https://github.com/payloadcms/payload/releases"},
			{Label: "Next.js", URL: "https://github.com/vercel/next.js/releases"},
			{Label: "React", URL: "https://github.com/facebook/react/releases"},
			{Label: "TypeScript", URL: "https://github.com/microsoft/TypeScript/releases"},
		},
	}
}

// Load reads the config file at path. Keys present in the file replace the
// defaults; lists are replaced as a whole.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, ErrNotFound.Error()), "path", path)
		}
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// LoadDir loads FileName from dir, falling back to Default when the file
// does not exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, ErrInvalid.Error())
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize turns package references written as npm PURLs into plain names.
func (c *Config) normalize() error {
	var err error
	for i := range c.Packages {
		if c.Packages[i].Name, err = packageName(c.Packages[i].Name); err != nil {
			return err
		}
	}
	for i := range c.Summary {
		if c.Summary[i], err = packageName(c.Summary[i]); err != nil {
			return err
		}
	}
	for i := range c.Groups {
		g := &c.Groups[i]
		for j := range g.Packages {
			if g.Packages[j], err = packageName(g.Packages[j]); err != nil {
				return err
			}
		}
		if g.Base, err = packageName(g.Base); err != nil {
			return err
		}
	}
	return nil
}

func packageName(ref string) (string, error) {
	name, err := core.PackageName(ref)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, ErrInvalid.Error()), "package", ref)
	}
	return name, nil
}

// Validate checks the config for contradictions.
func (c *Config) Validate() error {
	if c.Source == "" {
		return invalid("source is required", "source", c.Source)
	}
	if c.Timeout < 0 {
		return invalid("timeout must not be negative", "timeout", c.Timeout.String())
	}
	if c.Concurrency < 0 {
		return invalid("concurrency must not be negative", "concurrency", c.Concurrency)
	}

	tracked := make(map[string]bool, len(c.Packages))
	for _, p := range c.Packages {
		if p.Name == "" {
			return invalid("tracked package without a name", "packages", len(c.Packages))
		}
		if tracked[p.Name] {
			return invalid("package tracked twice", "package", p.Name)
		}
		tracked[p.Name] = true
	}
	for _, name := range c.Summary {
		if !tracked[name] {
			return invalid("summary names an untracked package", "package", name)
		}
	}

	for _, g := range c.Groups {
		switch {
		case g.Name == "":
			return invalid("group without a name", "groups", len(c.Groups))
		case g.IsPrefix() && len(g.Packages) > 0:
			return invalid("group sets both prefix and packages", "group", g.Name)
		case g.IsPrefix() && g.Base == "":
			return invalid("prefix group without a base package", "group", g.Name)
		case !g.IsPrefix() && len(g.Packages) == 0:
			return invalid("group has no packages", "group", g.Name)
		}
	}

	for _, p := range c.ReleasePages {
		if p.Label == "" || p.URL == "" {
			return invalid("release page needs a label and url", "label", p.Label)
		}
	}
	return nil
}

// CanaryPackages returns the tracked packages whose canary tag is looked up.
func (c *Config) CanaryPackages() []string {
	var names []string
	for _, p := range c.Packages {
		if p.Canary {
			names = append(names, p.Name)
		}
	}
	return names
}

func invalid(msg, key string, value any) error {
	return zerr.With(zerr.Wrap(errors.New(msg), ErrInvalid.Error()), key, value)
}
