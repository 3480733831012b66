package target

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

// populate creates a small tree with a nested file and a dotfile.
func populate(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"codex":             "old binary",
		".hidden":           "dot",
		"bin/nested/tool":   "nested",
		"codex-launcher.sh": "#!/usr/bin/env bash\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func listTree(t *testing.T, dir string) []string {
	t.Helper()
	var entries []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(entries)
	return entries
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat %s: %v", dir, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%s has %d entries, want 0", dir, len(entries))
	}
}

func TestPrepareCreatesMissingDirWithParents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "codex-cli")

	if err := Prepare(dir, false); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestPrepareExistingEmptyDirIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		if err := Prepare(dir, false); err != nil {
			t.Fatalf("Prepare #%d failed: %v", i+1, err)
		}
	}
	assertEmptyDir(t, dir)
}

func TestPrepareNonEmptyWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir)
	before := listTree(t, dir)

	err := Prepare(dir, false)
	if err == nil {
		t.Fatal("expected DirectoryNotEmpty error")
	}
	if !errors.Is(err, installerr.DirectoryNotEmpty) {
		t.Errorf("error kind = %v, want DirectoryNotEmpty", installerr.KindOf(err))
	}
	if installerr.HintOf(err) == "" {
		t.Error("expected a --force hint")
	}

	after := listTree(t, dir)
	if len(before) != len(after) {
		t.Fatalf("tree changed: before %v, after %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("tree changed at %d: %q != %q", i, before[i], after[i])
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "codex"))
	if err != nil || string(data) != "old binary" {
		t.Errorf("file content changed: %q, %v", data, err)
	}
}

func TestPrepareOnlyDotfileCountsAsNonEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".keep"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := Prepare(dir, false); !errors.Is(err, installerr.DirectoryNotEmpty) {
		t.Errorf("Prepare = %v, want DirectoryNotEmpty", err)
	}
}

func TestPrepareOverwritePurges(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir)

	if err := Prepare(dir, true); err != nil {
		t.Fatalf("Prepare(overwrite) failed: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestPrepareOverwriteEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := Prepare(dir, true); err != nil {
		t.Fatalf("Prepare(overwrite) failed: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestPrepareRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codex-cli")
	if err := os.WriteFile(path, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Prepare(path, false)
	if err == nil {
		t.Fatal("expected error for regular file")
	}
	if errors.Is(err, installerr.DirectoryNotEmpty) {
		t.Error("a regular file should not be reported as DirectoryNotEmpty")
	}

	if err := Prepare(path, true); err != nil {
		t.Fatalf("Prepare(overwrite) on file failed: %v", err)
	}
	assertEmptyDir(t, path)
}
