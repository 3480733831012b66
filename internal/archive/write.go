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

const (
	defaultFilePerm fs.FileMode = 0644
	dirPerm         fs.FileMode = 0755
)

// writer materializes validated members under root.
type writer struct {
	root string
}

func (w *writer) write(m *Member, body io.Reader) error {
	target, err := containedPath(w.root, m.Name)
	if err != nil {
		return err
	}
	if target == w.root || m.typ == typeOther {
		return nil
	}

	if m.typ == typeDir {
		if err := os.MkdirAll(target, dirPerm); err != nil {
			return installerr.Wrap(installerr.Internal, err, "creating directory %s", target)
		}
		return w.checkPhysical(m.Name, target)
	}

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, dirPerm); err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating parent dir for %s", target)
	}
	if err := w.checkPhysical(m.Name, parent); err != nil {
		return err
	}
	if err := removeExisting(target); err != nil {
		return err
	}

	switch m.typ {
	case typeSymlink:
		if _, err := w.resolveOnDisk(m.Name, filepath.Dir(target), m.Linkname); err != nil {
			return err
		}
		if err := platform.CreateSymlink(filepath.FromSlash(m.Linkname), target); err != nil {
			return installerr.Wrap(installerr.Internal, err, "creating symlink %s", target)
		}
		return nil
	case typeHardlink:
		src, err := w.resolveOnDisk(m.Name, w.root, m.Linkname)
		if err != nil {
			return err
		}
		if err := os.Link(src, target); err != nil {
			return installerr.Wrap(installerr.Internal, err, "creating hard link %s", target)
		}
		return nil
	default:
		return writeFile(target, m.Mode, body)
	}
}

// resolveOnDisk follows a link target from dir one component at a time,
// resolving every existing prefix on disk, and fails unless the physical
// result stays under root. Missing components are taken literally.
func (w *writer) resolveOnDisk(name, dir, linkname string) (string, error) {
	cur, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "resolving %s", dir)
	}
	for _, c := range strings.Split(strings.ReplaceAll(linkname, `\`, "/"), "/") {
		switch c {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			next := filepath.Join(cur, c)
			resolved, err := filepath.EvalSymlinks(next)
			switch {
			case os.IsNotExist(err):
				cur = next
			case err != nil:
				return "", installerr.Wrap(installerr.Internal, err, "resolving %s", next)
			default:
				cur = resolved
			}
		}
		if !platform.Within(w.root, cur) {
			return "", unsafeEntry(name+" -> "+linkname, errTraversal)
		}
	}
	return cur, nil
}

// checkPhysical resolves symlinks in dir and confirms the real location is
// still under root. Validation already rejects members nested under links
// declared in the archive; this also covers links that were on disk.
func (w *writer) checkPhysical(name, dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "resolving %s", dir)
	}
	if !platform.Within(w.root, resolved) {
		return unsafeEntry(name, errTraversal)
	}
	return nil
}

// removeExisting clears a previous entry at target so a later member
// replaces it rather than writing through it.
func removeExisting(target string) error {
	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "inspecting %s", target)
	}
	if info.IsDir() {
		return installerr.New(installerr.Internal, "cannot replace directory %s with a file", target)
	}
	if err := os.Remove(target); err != nil {
		return installerr.Wrap(installerr.Internal, err, "replacing %s", target)
	}
	return nil
}

func writeFile(target string, mode fs.FileMode, body io.Reader) error {
	perm := mode.Perm()
	if perm == 0 {
		perm = defaultFilePerm
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating file %s", target)
	}
	if body != nil {
		if _, err := io.Copy(out, body); err != nil {
			out.Close()
			return installerr.Wrap(installerr.Internal, err, "writing file %s", target)
		}
	}
	if err := out.Close(); err != nil {
		return installerr.Wrap(installerr.Internal, err, "closing file %s", target)
	}

	// OpenFile is subject to umask; apply the archived bits exactly.
	if err := platform.Chmod(target, perm); err != nil {
		return installerr.Wrap(installerr.Internal, err, "setting mode on %s", target)
	}
	return nil
}
