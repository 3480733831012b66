package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// entry describes one archive member for test fixtures.
type entry struct {
	name string
	body string
	mode fs.FileMode
	dir  bool
	sym  bool
	link string // symlink target
	hard string // hard link target
}

func file(name, body string) entry { return entry{name: name, body: body, mode: 0644} }
func exe(name, body string) entry  { return entry{name: name, body: body, mode: 0755} }
func dir(name string) entry        { return entry{name: name, dir: true, mode: 0755} }
func symlink(name, target string) entry {
	return entry{name: name, sym: true, link: target, mode: 0777}
}

func hardlink(name, target string) entry {
	return entry{name: name, hard: target, mode: 0644}
}

// writeTarGz builds a .tar.gz fixture at dir/name and returns its path.
func writeTarGz(t *testing.T, dir, name string, entries []entry) string {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: int64(e.mode)}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.sym:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.link
		case e.hard != "":
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.hard
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %q: %v", e.name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeZip builds a .zip fixture at dir/name and returns its path.
func writeZip(t *testing.T, dir, name string, entries []entry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		body := e.body
		switch {
		case e.dir:
			hdr.SetMode(fs.ModeDir | e.mode)
			if len(hdr.Name) == 0 || hdr.Name[len(hdr.Name)-1] != '/' {
				hdr.Name += "/"
			}
		case e.sym:
			hdr.SetMode(fs.ModeSymlink | e.mode)
			body = e.link
		default:
			hdr.SetMode(e.mode)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", e.name, err)
		}
		if !e.dir {
			if _, err := w.Write([]byte(body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// sandbox returns (parent, dest) where dest is an empty directory inside
// parent. Escapes from dest land in parent, where they can be detected.
func sandbox(t *testing.T) (string, string) {
	t.Helper()
	parent := t.TempDir()
	dest := filepath.Join(parent, "install")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	return parent, dest
}

// tree lists every path under root, relative and sorted.
func tree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(out)
	return out
}
