package core

import (
	"encoding/json"
	"testing"
)

func TestManifestDeclared(t *testing.T) {
	m := &Manifest{Dependencies: []Dependency{
		{Name: "react", Requirements: "19.2.1", Scope: Development},
		{Name: "react", Requirements: "19.2.3", Scope: Runtime},
		{Name: "empty", Requirements: "", Scope: Runtime},
		{Name: "empty", Requirements: "1.0.0", Scope: Development},
		{Name: "blank", Requirements: "", Scope: Runtime},
	}}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"react", "19.2.3", true},
		{"empty", "1.0.0", true},
		{"blank", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		got, ok := m.Declared(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Declared(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestManifestAll(t *testing.T) {
	m := &Manifest{Dependencies: []Dependency{
		{Name: "typescript", Requirements: "5.9.3", Scope: Development},
		{Name: "next", Requirements: "16.0.10", Scope: Runtime},
		{Name: "react", Requirements: "19.2.3", Scope: Runtime},
		{Name: "react", Requirements: "19.2.1", Scope: Development},
	}}

	all := m.All()
	want := []Dependency{
		{Name: "next", Requirements: "16.0.10", Scope: Runtime},
		{Name: "react", Requirements: "19.2.1", Scope: Development},
		{Name: "typescript", Requirements: "5.9.3", Scope: Development},
	}

	if len(all) != len(want) {
		t.Fatalf("All() returned %d dependencies, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %+v, want %+v", i, all[i], want[i])
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUpToDate, "up-to-date"},
		{StatusUpgradeAvailable, "upgrade-available"},
		{StatusStableAvailable, "stable-available"},
		{StatusCanaryAvailable, "canary-available"},
		{StatusNewer, "newer"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(PrereleaseCheckResult{Name: "x", Status: StatusStableAvailable})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["status"] != "stable-available" {
		t.Errorf("status = %v, want %q", decoded["status"], "stable-available")
	}
}
