package archive

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

// maxLinkTarget bounds how much of a symlink entry's payload is read as
// its target path.
const maxLinkTarget = 4096

type zipSource struct {
	path string
}

func (s *zipSource) walk(fn func(m *Member, body io.Reader) error) error {
	r, err := zip.OpenReader(s.path)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return installerr.Wrap(installerr.UnsafeArchiveEntry, err, "archive contains unsafe path outside install dir")
	}
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "opening zip archive")
	}
	defer r.Close()

	for _, f := range r.File {
		if err := s.visit(f, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *zipSource) visit(f *zip.File, fn func(m *Member, body io.Reader) error) error {
	mode := f.Mode()
	m := &Member{
		Name: f.Name,
		Mode: mode.Perm(),
	}

	switch {
	case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
		m.typ = typeDir
		return fn(m, nil)
	case mode&fs.ModeSymlink != 0:
		m.typ = typeSymlink
		target, err := readLinkTarget(f)
		if err != nil {
			return err
		}
		m.Linkname = target
		return fn(m, nil)
	case mode.IsRegular():
		m.typ = typeFile
	default:
		m.typ = typeOther
		return fn(m, nil)
	}

	rc, err := f.Open()
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "opening zip entry %s", f.Name)
	}
	defer rc.Close()
	return fn(m, rc)
}

// readLinkTarget reads a zip symlink entry, whose payload is the target path.
func readLinkTarget(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "opening zip entry %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxLinkTarget))
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "reading link target of %s", f.Name)
	}
	return string(data), nil
}
