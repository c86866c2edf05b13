// Package manifest loads the dependency declarations of a package.json file.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/git-pkgs/versioncheck/internal/core"
)

// FileName is the manifest looked up in a project directory.
const FileName = "package.json"

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = zerr.New("manifest not found")

	// ErrInvalid is returned when the manifest is not a valid package.json.
	ErrInvalid = zerr.New("invalid manifest")
)

var sections = []struct {
	key   string
	scope core.Scope
}{
	{"dependencies", core.Runtime},
	{"devDependencies", core.Development},
}

// Load reads and parses the manifest at path.
func Load(path string) (*core.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(ErrNotFound, "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	m.Path = path
	return m, nil
}

// LoadDir reads package.json from dir.
func LoadDir(dir string) (*core.Manifest, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse decodes a package.json document. Dependencies keep the order they are
// written in; a name repeated within one section keeps its first position and
// its last value.
func Parse(data []byte) (*core.Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.Wrap(err, ErrInvalid.Error())
	}

	m := &core.Manifest{}
	for _, section := range sections {
		body, ok := raw[section.key]
		if !ok || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
			continue
		}
		deps, err := decodeOrdered(body, section.scope)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, ErrInvalid.Error()), "section", section.key)
		}
		m.Dependencies = append(m.Dependencies, deps...)
	}
	return m, nil
}

// decodeOrdered decodes a JSON object of name to range strings, preserving
// key order.
func decodeOrdered(body json.RawMessage, scope core.Scope) ([]core.Dependency, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	index := make(map[string]int)
	var deps []core.Dependency
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected dependency name, got %v", tok)
		}

		var version string
		if err := dec.Decode(&version); err != nil {
			return nil, fmt.Errorf("dependency %s: %w", name, err)
		}

		if i, seen := index[name]; seen {
			deps[i].Requirements = version
			continue
		}
		index[name] = len(deps)
		deps = append(deps, core.Dependency{Name: name, Requirements: version, Scope: scope})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return deps, nil
}
