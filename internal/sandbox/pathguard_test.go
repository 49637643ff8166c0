package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveContainment(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "data.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name      string
		candidate string
		wantErr   bool
	}{
		{
			name:      "simple relative file",
			candidate: "agent.R",
			wantErr:   false,
		},
		{
			name:      "nested existing file",
			candidate: "sub/data.csv",
			wantErr:   false,
		},
		{
			name:      "nonexistent nested path",
			candidate: "out/plots/fig1.png",
			wantErr:   false,
		},
		{
			name:      "dot resolves to root itself",
			candidate: ".",
			wantErr:   false,
		},
		{
			name:      "single parent escape",
			candidate: "../escape.R",
			wantErr:   true,
		},
		{
			name:      "many parent segments",
			candidate: "../../../../../../etc/passwd",
			wantErr:   true,
		},
		{
			name:      "traversal in the middle",
			candidate: "sub/../../outside.R",
			wantErr:   true,
		},
		{
			name:      "absolute path override",
			candidate: "/etc/passwd",
			wantErr:   true,
		},
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("EvalSymlinks(root): %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := Resolve(root, tt.candidate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.candidate, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if resolved != realRoot && !strings.HasPrefix(resolved, realRoot+string(filepath.Separator)) {
				t.Errorf("Resolve(%q) = %q, not a descendant of %q", tt.candidate, resolved, realRoot)
			}
		})
	}
}

func TestResolveNoRoot(t *testing.T) {
	if _, err := Resolve("", "agent.R"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("Resolve with empty root: error = %v, want ErrNoRoot", err)
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	outside := filepath.Join(base, "outside")
	for _, dir := range []string{root, outside} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	// A path through the symlink realizes outside root and must be rejected.
	if _, err := Resolve(root, "link/secret.txt"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Resolve through escaping symlink: error = %v, want ErrOutsideRoot", err)
	}
	if _, err := Resolve(root, "link"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Resolve of escaping symlink itself: error = %v, want ErrOutsideRoot", err)
	}
}

func TestResolveSymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(root, "alias")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	resolved, err := Resolve(root, "alias/file.R")
	if err != nil {
		t.Fatalf("Resolve through internal symlink: %v", err)
	}
	realRoot, _ := filepath.EvalSymlinks(root)
	want := filepath.Join(realRoot, "real", "file.R")
	if resolved != want {
		t.Errorf("Resolve = %q, want %q", resolved, want)
	}
}
