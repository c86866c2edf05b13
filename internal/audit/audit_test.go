package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/git-pkgs/versioncheck/internal/audit"
	"github.com/git-pkgs/versioncheck/internal/config"
	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/manifest"
	"github.com/git-pkgs/versioncheck/internal/report"
	"github.com/git-pkgs/versioncheck/internal/sourcetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const packageJSON = `{
  "dependencies": {
    "payload": "3.68.5",
    "@payloadcms/next": "3.68.5",
    "@payloadcms/ui": "3.68.4",
    "next": "16.1.0-canary.16",
    "react": "19.2.1",
    "react-dom": "19.2.1",
    "@lexical/react": "0.40.0-rc.1"
  },
  "devDependencies": {
    "typescript": "^5.9.3",
    "@types/react": "19.2.1"
  }
}`

func loadManifest(t *testing.T) *core.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(packageJSON))
	require.NoError(t, err)
	return m
}

func newFake() *sourcetest.Fake {
	return &sourcetest.Fake{
		Installed: map[string]string{
			"payload":   "3.68.5",
			"next":      "16.1.0-canary.16",
			"react":     "19.2.1",
			"react-dom": "19.2.1",
		},
		Tags: map[string]map[string]string{
			"payload":        {"latest": "3.68.5"},
			"next":           {"latest": "16.0.10", "canary": "16.1.0-canary.20"},
			"react":          {"latest": "19.2.3", "canary": "19.3.0-canary.1"},
			"react-dom":      {"latest": "19.2.3", "canary": "19.3.0-canary.1"},
			"typescript":     {"latest": "5.9.3"},
			"@lexical/react": {"latest": "0.40.0"},
		},
	}
}

func ptr(s string) *string { return &s }

func TestRun_Full(t *testing.T) {
	src := newFake()
	rep := audit.New(src, config.Default()).Run(context.Background(), loadManifest(t), report.Full)

	wantPackages := []report.Package{
		{
			Name:        "payload",
			VersionInfo: core.VersionInfo{Declared: ptr("3.68.5"), Installed: ptr("3.68.5"), Latest: ptr("3.68.5")},
			Status:      core.StatusUpToDate,
			PURL:        "pkg:npm/payload@3.68.5",
		},
		{
			Name: "next",
			VersionInfo: core.VersionInfo{
				Declared:  ptr("16.1.0-canary.16"),
				Installed: ptr("16.1.0-canary.16"),
				Latest:    ptr("16.0.10"),
				Canary:    ptr("16.1.0-canary.20"),
			},
			Status:     core.StatusCanaryAvailable,
			ShowCanary: true,
			PURL:       "pkg:npm/next@16.1.0-canary.16",
		},
		{
			Name: "react",
			VersionInfo: core.VersionInfo{
				Declared:  ptr("19.2.1"),
				Installed: ptr("19.2.1"),
				Latest:    ptr("19.2.3"),
				Canary:    ptr("19.3.0-canary.1"),
			},
			Status:     core.StatusUpgradeAvailable,
			ShowCanary: true,
			PURL:       "pkg:npm/react@19.2.1",
		},
		{
			Name: "react-dom",
			VersionInfo: core.VersionInfo{
				Declared:  ptr("19.2.1"),
				Installed: ptr("19.2.1"),
				Latest:    ptr("19.2.3"),
				Canary:    ptr("19.3.0-canary.1"),
			},
			Status:     core.StatusUpgradeAvailable,
			ShowCanary: true,
			PURL:       "pkg:npm/react-dom@19.2.1",
		},
		{
			Name:        "typescript",
			VersionInfo: core.VersionInfo{Declared: ptr("^5.9.3"), Latest: ptr("5.9.3")},
			Status:      core.StatusUpToDate,
			PURL:        "pkg:npm/typescript",
		},
	}
	if diff := cmp.Diff(wantPackages, rep.Packages); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}

	wantPrereleases := []core.PrereleaseCheckResult{{
		Name:            "@lexical/react",
		Installed:       "0.40.0-rc.1",
		Latest:          ptr("0.40.0"),
		PrereleaseType:  "rc",
		StableAvailable: true,
		Status:          core.StatusStableAvailable,
	}}
	if diff := cmp.Diff(wantPrereleases, rep.PrereleaseResults); diff != "" {
		t.Errorf("prerelease results mismatch (-want +got):\n%s", diff)
	}

	wantSummary := report.Summary{
		Stable:         []report.Upgrade{{Name: "react", From: "19.2.1", To: "19.2.3"}},
		FromPrerelease: []report.Upgrade{{Name: "@lexical/react", From: "0.40.0-rc.1", To: "0.40.0", Suffix: "(stable)"}},
	}
	if diff := cmp.Diff(wantSummary, rep.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rep.Consistency, 4)
	assert.False(t, rep.Consistency[0].Consistent, "payload group mixes 3.68.5 and 3.68.4")
	assert.True(t, rep.Consistency[1].Consistent)
	assert.True(t, rep.Consistency[2].Consistent)
	assert.True(t, rep.Consistency[3].Consistent)
	assert.Equal(t, 1, rep.ExitCode())

	assert.Len(t, rep.ReleasePages, 4)
	assert.Equal(t, "pnpm update <package>@latest", rep.UpdateCommand)
}

func TestRun_CanaryOnlyForCanaryPackages(t *testing.T) {
	src := newFake()
	audit.New(src, config.Default()).Run(context.Background(), loadManifest(t), report.Full)

	calls := src.Calls()
	assert.Contains(t, calls, "view next@canary")
	assert.Contains(t, calls, "view react-dom@canary")
	assert.NotContains(t, calls, "view payload@canary")
	assert.NotContains(t, calls, "view typescript@canary")
	assert.Contains(t, calls, "view @lexical/react@latest")
}

func TestRun_Fast(t *testing.T) {
	src := newFake()
	rep := audit.New(src, config.Default()).Run(context.Background(), loadManifest(t), report.Fast)

	assert.Empty(t, src.Calls(), "fast mode makes no lookups")
	assert.Nil(t, rep.Packages)
	assert.Nil(t, rep.PrereleaseResults)
	assert.True(t, rep.Summary.Empty())

	want := []core.PrereleasePackage{
		{Name: "next", Version: "16.1.0-canary.16", PrereleaseType: "canary"},
		{Name: "@lexical/react", Version: "0.40.0-rc.1", PrereleaseType: "rc"},
	}
	if diff := cmp.Diff(want, rep.Prereleases); diff != "" {
		t.Errorf("prereleases mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, rep.ExitCode())
}

func TestRun_FastWithoutSource(t *testing.T) {
	rep := audit.New(nil, nil).Run(context.Background(), loadManifest(t), report.Fast)
	assert.Len(t, rep.Consistency, 4)
}

func TestRun_LookupsTimeOut(t *testing.T) {
	src := newFake()
	src.Delay = time.Second

	a := audit.New(src, config.Default(), audit.WithTimeout(20*time.Millisecond), audit.WithConcurrency(4))
	start := time.Now()
	rep := a.Run(context.Background(), loadManifest(t), report.Full)
	assert.Less(t, time.Since(start), 900*time.Millisecond)

	for _, p := range rep.Packages {
		assert.Nil(t, p.Installed, p.Name)
		assert.Nil(t, p.Latest, p.Name)
		assert.Equal(t, core.StatusUpToDate, p.Status, p.Name)
	}
	require.Len(t, rep.PrereleaseResults, 1)
	assert.Nil(t, rep.PrereleaseResults[0].Latest)
	assert.False(t, rep.PrereleaseResults[0].StableAvailable)
	assert.True(t, rep.Summary.Empty())

	// Consistency does not depend on lookups.
	assert.Equal(t, 1, rep.ExitCode())
}

func TestRun_ConsistentManifestExitsZero(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"dependencies": {"payload": "3.68.5", "@payloadcms/next": "^3.68.5", "react": "19.2.3"},
		"devDependencies": {"@types/react": "~19.2.3"}
	}`))
	require.NoError(t, err)

	rep := audit.New(newFake(), config.Default()).Run(context.Background(), m, report.Full)
	assert.True(t, rep.Consistent())
	assert.Equal(t, 0, rep.ExitCode())
}

func TestRun_CustomConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
packages:
  - name: react
summary: [react]
groups:
  - name: React packages
    packages: [react, "@types/react"]
release_pages: []
`))
	require.NoError(t, err)

	rep := audit.New(newFake(), cfg).Run(context.Background(), loadManifest(t), report.Full)

	require.Len(t, rep.Packages, 1)
	assert.False(t, rep.Packages[0].ShowCanary)
	assert.Nil(t, rep.Packages[0].Canary)
	assert.Empty(t, rep.ReleasePages)

	// next is no longer canary-tracked, so the prerelease scan picks it up.
	names := make([]string, 0, len(rep.PrereleaseResults))
	for _, r := range rep.PrereleaseResults {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"next", "@lexical/react"}, names)
	assert.Equal(t, 0, rep.ExitCode())
}
