package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "opt", "codex")
	tests := []struct {
		candidate string
		want      bool
	}{
		{root, true},
		{filepath.Join(root, "bin", "codex"), true},
		{filepath.Join(root, "..codex"), true},
		{filepath.Dir(root), false},
		{filepath.Join(filepath.Dir(root), "codex-other"), false},
		{filepath.Join(root, "..", "..", "etc"), false},
	}
	for _, tt := range tests {
		if got := Within(root, tt.candidate); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", root, tt.candidate, got, tt.want)
		}
	}
}

func TestResolvePathMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "deeper")
	got, err := ResolvePath(missing)
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "deeper" {
		t.Errorf("ResolvePath = %q", got)
	}
}

func TestResolvePathFollowsLinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need developer mode on Windows")
	}
	tmp := t.TempDir()
	realDir := filepath.Join(tmp, "realDir")
	if err := os.Mkdir(realDir, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePath(link)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(realDir)
	if got != want {
		t.Errorf("ResolvePath(link) = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/codex-cli", filepath.Join(home, "codex-cli")},
		{"/opt/codex", "/opt/codex"},
		{"relative/dir", "relative/dir"},
		{"~other/dir", "~other/dir"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
