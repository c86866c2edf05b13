package npm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/git-pkgs/versioncheck/client"
	"github.com/git-pkgs/versioncheck/internal/core"
)

func newTestRegistry(t *testing.T, baseURL, dir string) *Registry {
	t.Helper()
	c := client.NewClient(client.WithBaseDelay(time.Millisecond), client.WithMaxRetries(1))
	t.Cleanup(c.Close)
	return New(core.Options{RegistryURL: baseURL, Dir: dir, Client: c})
}

func TestRegistryVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/-/package/next/dist-tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"latest": "16.0.10",
			"canary": "16.1.0-canary.20",
			"beta":   "16.0.0-beta.0",
		})
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")

	res := reg.RegistryVersion(context.Background(), "next", "latest")
	if !res.OK() {
		t.Fatalf("RegistryVersion failed: %v", res.Err)
	}
	if res.Value != "16.0.10" {
		t.Errorf("expected latest '16.0.10', got %q", res.Value)
	}

	res = reg.RegistryVersion(context.Background(), "next", "canary")
	if res.Value != "16.1.0-canary.20" {
		t.Errorf("expected canary '16.1.0-canary.20', got %q", res.Value)
	}
}

func TestRegistryVersionScoped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path can be encoded in different ways depending on the URL library
		path := r.URL.EscapedPath()
		if path != "/-/package/@payloadcms%2Fnext/dist-tags" && path != "/-/package/%40payloadcms%2Fnext/dist-tags" {
			t.Errorf("unexpected path: %s", path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"latest": "3.68.5"})
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")
	res := reg.RegistryVersion(context.Background(), "@payloadcms/next", "latest")
	if res.Value != "3.68.5" {
		t.Errorf("expected '3.68.5', got %q (err %v)", res.Value, res.Err)
	}
}

func TestRegistryVersionSharesRequest(t *testing.T) {
	var requests int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{"latest": "19.2.3", "canary": "19.3.0-canary.1"})
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")

	var wg sync.WaitGroup
	results := make([]core.Result, 4)
	for i, tag := range []string{"latest", "canary", "latest", "canary"} {
		wg.Add(1)
		go func(i int, tag string) {
			defer wg.Done()
			results[i] = reg.RegistryVersion(context.Background(), "react", tag)
		}(i, tag)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, res := range results {
		if !res.OK() {
			t.Errorf("result %d failed: %v", i, res.Err)
		}
	}

	// Served from the memo after the first round.
	_ = reg.RegistryVersion(context.Background(), "react", "latest")

	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestRegistryVersionMissingTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"latest": "5.9.3"})
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")
	res := reg.RegistryVersion(context.Background(), "typescript", "canary")
	if res.OK() {
		t.Fatalf("expected failure, got %q", res.Value)
	}
	if !errors.Is(res.Err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", res.Err)
	}
}

func TestRegistryVersionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")
	res := reg.RegistryVersion(context.Background(), "nonexistent", "latest")

	var nf *core.NotFoundError
	if !errors.As(res.Err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", res.Err)
	}
	if nf.Name != "nonexistent" {
		t.Errorf("expected name 'nonexistent', got %q", nf.Name)
	}
}

func TestRegistryVersionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reg := newTestRegistry(t, server.URL, "")
	res := reg.RegistryVersion(context.Background(), "react", "latest")
	if res.OK() || res.Ptr() != nil {
		t.Fatalf("expected failure, got %q", res.Value)
	}
}

func writePackage(t *testing.T, dir, name, body string) {
	t.Helper()
	pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInstalledVersion(t *testing.T) {
	dir := t.TempDir()
	writePackage(t, dir, "react", `{"name": "react", "version": "19.2.3"}`)
	writePackage(t, dir, "@types/react", `{"name": "@types/react", "version": "19.2.7"}`)
	writePackage(t, dir, "broken", `{`)
	writePackage(t, dir, "unversioned", `{"name": "unversioned"}`)

	reg := New(core.Options{Dir: dir})

	tests := []struct {
		pkg  string
		want string
		ok   bool
	}{
		{"react", "19.2.3", true},
		{"@types/react", "19.2.7", true},
		{"broken", "", false},
		{"unversioned", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			res := reg.InstalledVersion(context.Background(), tt.pkg)
			if res.OK() != tt.ok {
				t.Fatalf("OK() = %v, want %v (err %v)", res.OK(), tt.ok, res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("expected %q, got %q", tt.want, res.Value)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	c := client.DefaultClient()
	defer c.Close()

	src, err := core.New("npm", core.Options{Client: c})
	if err != nil {
		t.Fatalf("core.New failed: %v", err)
	}
	reg, ok := src.(*Registry)
	if !ok {
		t.Fatalf("expected *Registry, got %T", src)
	}
	if reg.baseURL != DefaultURL {
		t.Errorf("expected default URL %q, got %q", DefaultURL, reg.baseURL)
	}
}
