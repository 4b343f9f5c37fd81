package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testTiersYAML = `services:
  items:
    core:
      - list_drive_items
      - get_drive_item_metadata
    extended:
      - upload_drive_file
    complete:
      - delete_drive_item
  search:
    extended:
      - search_drive_items
`

func writeTiersFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool_tiers.yaml")
	if err := os.WriteFile(path, []byte(testTiersYAML), 0o644); err != nil {
		t.Fatalf("writing tiers file: %v", err)
	}
	return path
}

func TestLoadTiers(t *testing.T) {
	tiers, err := LoadTiers(writeTiersFile(t))
	if err != nil {
		t.Fatalf("LoadTiers() error: %v", err)
	}

	if len(tiers) != 5 {
		t.Errorf("len(tiers) = %d, want 5", len(tiers))
	}

	tests := []struct {
		tool    string
		tier    string
		service string
	}{
		{"list_drive_items", "core", "items"},
		{"upload_drive_file", "extended", "items"},
		{"delete_drive_item", "complete", "items"},
		{"search_drive_items", "extended", "search"},
	}
	for _, tt := range tests {
		info, ok := tiers[tt.tool]
		if !ok {
			t.Errorf("tool %q missing from tier map", tt.tool)
			continue
		}
		if info.Tier != tt.tier || info.Service != tt.service {
			t.Errorf("%q = %+v, want tier %q service %q", tt.tool, info, tt.tier, tt.service)
		}
	}
}

func TestLoadTiersMissingFile(t *testing.T) {
	if _, err := LoadTiers(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing tier file")
	}
}

func TestLoadTiersInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("services: [not: a: map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTiers(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestTierLevel(t *testing.T) {
	if TierLevel("core") >= TierLevel("extended") {
		t.Error("core should rank below extended")
	}
	if TierLevel("extended") >= TierLevel("complete") {
		t.Error("extended should rank below complete")
	}
	if TierLevel("bogus") != 0 {
		t.Errorf("TierLevel(bogus) = %d, want 0", TierLevel("bogus"))
	}
}
