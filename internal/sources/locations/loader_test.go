package locations

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `locations:
  - name: "ANKARA, TURKEY"
    aliases: ["ankara", "ank"]
  - name: "LONDON, ENGLAND"
    aliases: ["london"]
  - name: "MUMBAI, INDIA"
`

func writeTempLocations(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeTempLocations(t, sampleYAML)

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Name != "ANKARA, TURKEY" {
		t.Errorf("name = %q", entries[0].Name)
	}
	if len(entries[0].Aliases) != 2 {
		t.Errorf("aliases = %v", entries[0].Aliases)
	}
}

func TestLoaderErrors(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeTempLocations(t, "locations: {not a list}")
	if _, err := NewLoader(bad).Load(); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestIndexResolve(t *testing.T) {
	idx := NewIndex()

	// Empty index passes anything through.
	if got, ok := idx.Resolve("anywhere"); !ok || got != "anywhere" {
		t.Errorf("empty index Resolve = %q, %v", got, ok)
	}

	path := writeTempLocations(t, sampleYAML)
	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	idx.Update(entries)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ANKARA, TURKEY", "ANKARA, TURKEY", true}, // exact
		{"ankara", "ANKARA, TURKEY", true},         // alias
		{"Ank", "ANKARA, TURKEY", true},            // alias, mixed case
		{"LONDON", "LONDON, ENGLAND", true},        // alias
		{"mumbai", "MUMBAI, INDIA", true},          // name substring
		{"ATLANTIS", "", false},
	}
	for _, tc := range tests {
		got, ok := idx.Resolve(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
