//go:build integration

package integration_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// member is one file in a synthetic release package.
type member struct {
	name string
	body string
	mode int64
}

// loginScript is a stand-in for the real binary. It records its arguments
// next to itself and exits with $FAKE_LOGIN_EXIT.
const loginScript = `#!/bin/sh
echo "$@" > "$(dirname "$0")/login-args"
exit "${FAKE_LOGIN_EXIT:-0}"
`

// testEnv holds an isolated install location and a package server.
type testEnv struct {
	Parent     string // holds InstallDir; escapes land here
	InstallDir string
	Server     *httptest.Server
	packages   map[string][]byte
}

// setupTestEnv creates temp directories and a server publishing packages
// registered with env.publish. HOME points into the sandbox.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("integration tests run the packaged shell script")
	}

	parent := t.TempDir()
	env := &testEnv{
		Parent:     parent,
		InstallDir: filepath.Join(parent, "codex-cli"),
		packages:   make(map[string][]byte),
	}
	t.Setenv("HOME", t.TempDir())

	env.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := env.packages[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(env.Server.Close)
	return env
}

// publish serves body under name and returns its URL.
func (e *testEnv) publish(name string, body []byte) string {
	e.packages[name] = body
	return e.Server.URL + "/" + name
}

func buildTarGz(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: m.mode, Size: int64(len(m.body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(m.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildZip(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		hdr := &zip.FileHeader{Name: m.name, Method: zip.Deflate}
		hdr.SetMode(os.FileMode(m.mode))
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(m.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// assertEmptyDir fails unless path is an existing, empty directory.
func assertEmptyDir(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected %s to be empty, found %v", path, names)
	}
}
