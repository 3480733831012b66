package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

func TestFetch(t *testing.T) {
	payload := bytes.Repeat([]byte("codex"), 10000)
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	var progress bytes.Buffer
	f := New(WithHTTPClient(server.Client()), WithProgress(&progress))

	dest := filepath.Join(t.TempDir(), "codex.tar.gz")
	if err := f.Fetch(context.Background(), server.URL+"/codex.tar.gz", dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(payload))
	}
	if gotUA != defaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, defaultUserAgent)
	}
	if !strings.Contains(progress.String(), "100%") {
		t.Errorf("progress output = %q, want 100%%", progress.String())
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("temporary .part file left behind")
	}
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "codex.zip")
	err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL+"/codex.zip", dest)
	if !errors.Is(err, installerr.FetchFailed) {
		t.Fatalf("Fetch = %v, want FetchFailed", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination created on failure")
	}
}

func TestFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(WithHTTPClient(server.Client())).Fetch(ctx, server.URL+"/codex.zip", filepath.Join(t.TempDir(), "codex.zip"))
	if !errors.Is(err, installerr.FetchFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch = %v, want FetchFailed wrapping context.Canceled", err)
	}
}

func TestFetchCustomUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	f := New(WithHTTPClient(server.Client()), WithUserAgent("test-agent/1.0"))
	if err := f.Fetch(context.Background(), server.URL+"/a.zip", filepath.Join(t.TempDir(), "a.zip")); err != nil {
		t.Fatal(err)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/releases/codex-cli-linux-x64.tar.gz", "codex-cli-linux-x64.tar.gz"},
		{"https://example.com/codex.zip?token=abc#frag", "codex.zip"},
		{"https://example.com/a/b/", "b"},
	}
	for _, tt := range tests {
		got, err := FileName(tt.url)
		if err != nil {
			t.Errorf("FileName(%q) error: %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	for _, bad := range []string{"https://example.com", "https://example.com/", "://nope"} {
		if _, err := FileName(bad); !errors.Is(err, installerr.FetchFailed) {
			t.Errorf("FileName(%q) = %v, want FetchFailed", bad, err)
		}
	}
}
