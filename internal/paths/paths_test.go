package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg", "utils")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "helpers.py")
	if err := os.WriteFile(file, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(file, root)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got != "pkg/utils/helpers.py" {
		t.Errorf("Canonicalize = %q, want pkg/utils/helpers.py", got)
	}
}

func TestCanonicalizeNonexistent(t *testing.T) {
	root := t.TempDir()
	got, err := Canonicalize(filepath.Join(root, "missing.py"), root)
	if err != nil {
		t.Fatalf("Canonicalize should tolerate missing files: %v", err)
	}
	if got != "missing.py" {
		t.Errorf("Canonicalize = %q, want missing.py", got)
	}
}

func TestIsWithinRepo(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a.py")
	outside := filepath.Join(root, "..", "escape.py")

	if !IsWithinRepo(inside, root) {
		t.Error("path inside repo reported as outside")
	}
	if IsWithinRepo(outside, root) {
		t.Error("path outside repo reported as inside")
	}
}

func TestDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"pkg/utils/helpers.py", "pkg/utils"},
		{"main.py", ""},
		{"a/b.py", "a"},
	}
	for _, tt := range tests {
		if got := Dir(tt.path); got != tt.want {
			t.Errorf("Dir(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"pkg/utils/helpers.py", "helpers"},
		{"main.py", "main"},
		{"pkg/__init__.py", "__init__"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
