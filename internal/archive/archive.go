// Package archive unpacks downloaded packages into an install directory
// without ever writing outside it.
//
// Extraction is two-pass. The first pass reads every member header and
// checks that its path (and, for links, its link target) resolves inside
// the destination. Only when every member has passed does the second pass
// reopen the archive and write. A rejected archive leaves the filesystem
// exactly as it was.
package archive

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

// Format is a supported archive encoding.
type Format int

const (
	// TarGz is a gzip-compressed tar stream (.tar.gz, .tgz).
	TarGz Format = iota + 1
	// Zip is a zip file (.zip).
	Zip
)

func (f Format) String() string {
	switch f {
	case TarGz:
		return "tar+gzip"
	case Zip:
		return "zip"
	default:
		return "unknown"
	}
}

// DetectFormat picks the archive format from the file name suffix.
// The content is never inspected.
func DetectFormat(archivePath string) (Format, error) {
	name := strings.ToLower(filepath.Base(archivePath))
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return TarGz, nil
	case strings.HasSuffix(name, ".zip"):
		return Zip, nil
	default:
		return 0, installerr.New(installerr.UnsupportedFormat, "unsupported archive format: %s", archivePath)
	}
}

// memberType classifies an archive entry.
type memberType int

const (
	typeFile memberType = iota
	typeDir
	typeSymlink
	typeHardlink
	typeOther
)

// Member is one entry of an archive as declared in its header.
type Member struct {
	// Name is the path as declared in the archive header.
	Name string
	// Linkname is the link target for symlinks and hard links.
	Linkname string
	Mode     fs.FileMode

	typ memberType
}

// IsDir reports whether the member is a directory entry.
func (m *Member) IsDir() bool { return m.typ == typeDir }

// IsSymlink reports whether the member is a symbolic link.
func (m *Member) IsSymlink() bool { return m.typ == typeSymlink }

// source iterates the members of an archive. Each call to walk reopens the
// underlying file, so a source can be walked once per pass.
type source interface {
	walk(fn func(m *Member, body io.Reader) error) error
}

func openSource(archivePath string) (source, error) {
	format, err := DetectFormat(archivePath)
	if err != nil {
		return nil, err
	}
	switch format {
	case TarGz:
		return &tarSource{path: archivePath}, nil
	default:
		return &zipSource{path: archivePath}, nil
	}
}

// Validate enumerates every member of the archive and checks that it
// would land inside destDir. It performs no filesystem writes.
func Validate(archivePath, destDir string) ([]Member, error) {
	src, err := openSource(archivePath)
	if err != nil {
		return nil, err
	}
	root, err := platform.ResolvePath(destDir)
	if err != nil {
		return nil, installerr.Wrap(installerr.Internal, err, "resolving destination")
	}
	return validate(src, root)
}

func validate(src source, root string) ([]Member, error) {
	var members []Member
	err := src.walk(func(m *Member, _ io.Reader) error {
		members = append(members, *m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	links := make(map[string]bool)
	for i := range members {
		m := &members[i]
		if _, err := containedPath(root, m.Name); err != nil {
			return nil, err
		}
		if m.typ == typeSymlink {
			links[cleanName(m.Name)] = true
		}
	}

	for i := range members {
		m := &members[i]
		// A member below a declared symlink would be written through that
		// link, so its lexical containment proves nothing.
		if through := linkAncestor(cleanName(m.Name), links); through != "" {
			return nil, installerr.New(installerr.UnsafeArchiveEntry,
				"archive contains unsafe path outside install dir: %s (nested under symlink %s)",
				m.Name, through)
		}
		switch m.typ {
		case typeSymlink:
			if err := checkSymlinkTarget(m, links); err != nil {
				return nil, err
			}
		case typeHardlink:
			if err := checkHardlinkTarget(m, links); err != nil {
				return nil, err
			}
		}
	}

	if err := checkTypes(members); err != nil {
		return nil, err
	}
	return members, nil
}

// Extract unpacks archivePath into destDir. The archive format is chosen
// from its suffix. If any member would resolve outside destDir the whole
// extraction is refused before anything is written.
func Extract(archivePath, destDir string) error {
	src, err := openSource(archivePath)
	if err != nil {
		return err
	}
	root, err := platform.ResolvePath(destDir)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "resolving destination")
	}

	if _, err := validate(src, root); err != nil {
		return err
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating destination %s", root)
	}
	// The destination may not have existed when it was first resolved.
	if root, err = platform.ResolvePath(root); err != nil {
		return installerr.Wrap(installerr.Internal, err, "resolving destination")
	}

	w := &writer{root: root}
	return src.walk(w.write)
}
