package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		manifest     string
		args         []string
		expectedExit int
		stderr       string
	}{
		{
			name:         "Consistent manifest",
			manifest:     `{"dependencies": {"react": "19.2.3", "react-dom": "^19.2.3"}}`,
			args:         []string{"--consistency-only", "--no-color"},
			expectedExit: 0,
		},
		{
			name:         "Version mismatch",
			manifest:     `{"dependencies": {"react": "19.2.3", "react-dom": "19.2.1"}}`,
			args:         []string{"--consistency-only", "--no-color"},
			expectedExit: 1,
		},
		{
			name:         "Invalid manifest",
			manifest:     `{"dependencies": [}`,
			args:         []string{"--consistency-only"},
			expectedExit: 1,
			stderr:       "❌ Failed to load package.json:",
		},
		{
			name:         "Unknown flag",
			manifest:     `{}`,
			args:         []string{"--frobnicate"},
			expectedExit: 1,
			stderr:       "Error: unknown flag: --frobnicate",
		},
		{
			name:         "Compare",
			args:         []string{"compare", "1.0.0", "1.0.1"},
			expectedExit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.manifest != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(tt.manifest), 0o600))
			}

			var stdout, stderr bytes.Buffer
			args := append([]string{}, tt.args...)
			if len(args) == 0 || args[0] != "compare" {
				args = append(args, "--dir", dir)
			}

			code := run(context.Background(), args, &stdout, &stderr)
			assert.Equal(t, tt.expectedExit, code, "stderr: %s", stderr.String())
			if tt.stderr != "" {
				assert.Contains(t, stderr.String(), tt.stderr)
			}
		})
	}
}

func TestRun_InconsistencyIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"dependencies": {"payload": "3.68.5", "@payloadcms/ui": "3.68.4"}}`), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--consistency-only", "--no-color", "--dir", dir}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stderr.String(), "the report explains the failure")
	assert.Contains(t, stdout.String(), "VERSION MISMATCH")
}
