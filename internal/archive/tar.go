package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

type tarSource struct {
	path string
}

func (s *tarSource) walk(fn func(m *Member, body io.Reader) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "opening archive")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating gzip reader")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return unsafeEntry(hdr.Name, err)
		}
		if err != nil {
			return installerr.Wrap(installerr.Internal, err, "reading tar entry")
		}

		m := &Member{
			Name:     hdr.Name,
			Linkname: hdr.Linkname,
			Mode:     fs.FileMode(hdr.Mode).Perm(),
			typ:      tarMemberType(hdr.Typeflag),
		}
		if err := fn(m, tr); err != nil {
			return err
		}
	}
}

func tarMemberType(flag byte) memberType {
	switch flag {
	case tar.TypeReg, tar.TypeCont:
		return typeFile
	case tar.TypeDir:
		return typeDir
	case tar.TypeSymlink:
		return typeSymlink
	case tar.TypeLink:
		return typeHardlink
	default:
		return typeOther
	}
}
