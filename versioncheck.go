// Package versioncheck audits the JavaScript dependencies declared in a
// package.json manifest.
//
// It compares tracked packages with the registry's latest and canary
// releases, finds prerelease dependencies whose stable release has shipped,
// and checks that families of related packages are pinned to one version.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/versioncheck"
//		_ "github.com/git-pkgs/versioncheck/all"
//	)
//
//	m, err := versioncheck.LoadManifest("package.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := versioncheck.DefaultClient()
//	defer client.Close()
//
//	src, err := versioncheck.New("npm", versioncheck.Options{Dir: ".", Client: client})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rep := versioncheck.Audit(context.Background(), src, versioncheck.DefaultConfig(), m, versioncheck.Full)
//	os.Exit(rep.ExitCode())
//
// Version classification needs no source at all:
//
//	versioncheck.Compare("16.1.0-canary.16", "16.0.10", "16.1.0-canary.20") // StatusCanaryAvailable
package versioncheck

import (
	"context"

	"github.com/git-pkgs/versioncheck/client"
	"github.com/git-pkgs/versioncheck/internal/audit"
	"github.com/git-pkgs/versioncheck/internal/config"
	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/manifest"
	"github.com/git-pkgs/versioncheck/internal/report"
	"github.com/git-pkgs/versioncheck/internal/semver"
)

// Re-export types from internal/core
type (
	// Source is the interface implemented by all version lookup backends.
	Source = core.Source

	// Options configures a Source.
	Options = core.Options

	// Result is the outcome of a single lookup.
	Result = core.Result

	// Manifest holds the dependencies declared in a package.json.
	Manifest = core.Manifest

	// Dependency is a single manifest declaration.
	Dependency = core.Dependency

	// Scope indicates which manifest section declared a dependency.
	Scope = core.Scope

	// Status is the upgrade classification of an installed version.
	Status = core.Status

	// VersionInfo is everything known about a tracked package.
	VersionInfo = core.VersionInfo

	// ConsistencyCheck is the outcome of checking one package group.
	ConsistencyCheck = core.ConsistencyCheck

	// ParsedVersion is a version split into its components.
	ParsedVersion = semver.ParsedVersion
)

// Re-export report and config types
type (
	Report = report.Report
	Mode   = report.Mode
	Config = config.Config
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// Option configures a Client.
	Option = client.Option
)

// Re-export constants
const (
	Runtime     = core.Runtime
	Development = core.Development

	StatusUpToDate         = core.StatusUpToDate
	StatusUpgradeAvailable = core.StatusUpgradeAvailable
	StatusStableAvailable  = core.StatusStableAvailable
	StatusCanaryAvailable  = core.StatusCanaryAvailable
	StatusNewer            = core.StatusNewer

	Full = report.Full
	Fast = report.Fast
)

// Re-export errors
var (
	ErrNotFound      = client.ErrNotFound
	ErrUnknownSource = core.ErrUnknownSource
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
	LookupError    = core.LookupError
)

// New creates the source registered under name ("pnpm" or "npm").
// Sources must be imported to be registered; see the all package.
func New(name string, opts Options) (Source, error) {
	return core.New(name, opts)
}

// SupportedSources returns all registered source names.
func SupportedSources() []string {
	return core.SupportedSources()
}

// DefaultURL returns the default registry URL for a source.
func DefaultURL(name string) string {
	return core.DefaultURL(name)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout per attempt
// - 3 retries with exponential backoff
// - Retry on 429, 5xx and transport errors
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// Parse splits a version such as "16.1.0-canary.16" into its components.
func Parse(version string) (ParsedVersion, bool) {
	return semver.Parse(version)
}

// StripRange removes leading range operators: "^19.2.3" becomes "19.2.3".
func StripRange(version string) string {
	return semver.StripRange(version)
}

// Compare classifies installed against the registry's latest and, when not
// empty, canary versions.
func Compare(installed, latest, canary string) Status {
	return semver.Compare(installed, latest, canary)
}

// LoadManifest reads a package.json file.
func LoadManifest(path string) (*Manifest, error) {
	return manifest.Load(path)
}

// ParseManifest decodes package.json content.
func ParseManifest(data []byte) (*Manifest, error) {
	return manifest.Parse(data)
}

// DefaultConfig returns the built-in audit policy.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a config file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Audit runs the checks for m. src may be nil in Fast mode.
func Audit(ctx context.Context, src Source, cfg *Config, m *Manifest, mode Mode) *Report {
	return audit.New(src, cfg).Run(ctx, m, mode)
}
