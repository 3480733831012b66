package archive

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

var (
	errAbsolute    = errors.New("absolute paths are not allowed")
	errTraversal   = errors.New("path escapes the destination")
	errNoTarget    = errors.New("link has no target")
	errThroughLink = errors.New("link target passes through another link in the archive")
)

// cleanName normalizes a declared member name to a clean slash path.
// Backslashes are treated as separators so names crafted for Windows
// cannot slip past the checks on other systems.
func cleanName(name string) string {
	return path.Clean(strings.ReplaceAll(name, `\`, "/"))
}

// isAbsName reports whether a declared name is rooted on any platform:
// a leading slash, or a drive letter such as "C:".
func isAbsName(name string) bool {
	n := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(n, "/") {
		return true
	}
	return len(n) >= 2 && n[1] == ':' && isLetter(n[0])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// containedPath joins a declared member name onto root and returns the
// resulting host path, or an UnsafeArchiveEntry error when the name is
// absolute or climbs out of root. The root itself counts as contained.
func containedPath(root, name string) (string, error) {
	if isAbsName(name) {
		return "", unsafeEntry(name, errAbsolute)
	}
	candidate := filepath.Join(root, filepath.FromSlash(cleanName(name)))
	if !platform.Within(root, candidate) {
		return "", unsafeEntry(name, errTraversal)
	}
	return candidate, nil
}

// checkSymlinkTarget verifies a symlink's target, interpreted relative to
// the directory holding the link, stays under the root without passing
// through another symlink declared in the archive.
func checkSymlinkTarget(m *Member, links map[string]bool) error {
	if m.Linkname == "" {
		return unsafeEntry(m.Name, errNoTarget)
	}
	if isAbsName(m.Linkname) {
		return unsafeEntry(m.Name+" -> "+m.Linkname, errAbsolute)
	}
	if err := followTarget(path.Dir(cleanName(m.Name)), m.Linkname, links); err != nil {
		return unsafeEntry(m.Name+" -> "+m.Linkname, err)
	}
	return nil
}

// checkHardlinkTarget applies the same rules to a hard link, whose target
// is named relative to the archive root.
func checkHardlinkTarget(m *Member, links map[string]bool) error {
	if m.Linkname == "" {
		return unsafeEntry(m.Name, errNoTarget)
	}
	if isAbsName(m.Linkname) {
		return unsafeEntry(m.Name+" -> "+m.Linkname, errAbsolute)
	}
	if err := followTarget(".", m.Linkname, links); err != nil {
		return unsafeEntry(m.Name+" -> "+m.Linkname, err)
	}
	return nil
}

// followTarget walks target one component at a time from dir, the way the
// filesystem resolves it. Cleaning the whole string first would let
// "l/.." cancel out even when l is a link. Stepping onto a declared
// symlink or above the root fails.
func followTarget(dir, target string, links map[string]bool) error {
	var stack []string
	if dir != "." {
		stack = strings.Split(dir, "/")
	}
	for _, c := range strings.Split(strings.ReplaceAll(target, `\`, "/"), "/") {
		switch c {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return errTraversal
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, c)
			if links[strings.Join(stack, "/")] {
				return errThroughLink
			}
		}
	}
	return nil
}

// checkTypes rejects an archive that declares one path both as a directory
// and as a non-directory, or nests a member under a file. The write pass
// would otherwise fail halfway through.
func checkTypes(members []Member) error {
	isDir := make(map[string]bool, len(members))
	for i := range members {
		m := &members[i]
		name := cleanName(m.Name)
		if m.typ == typeOther || name == "." {
			continue
		}
		dir := m.typ == typeDir
		if prev, ok := isDir[name]; ok && prev != dir {
			return conflictingEntry(m.Name)
		}
		isDir[name] = dir
	}
	for i := range members {
		name := cleanName(members[i].Name)
		for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if d, ok := isDir[dir]; ok && !d {
				return conflictingEntry(members[i].Name)
			}
		}
	}
	return nil
}

func conflictingEntry(name string) error {
	return installerr.New(installerr.Internal,
		"archive declares conflicting entries for %s (directory and file)", name)
}

// linkAncestor returns the first proper ancestor of name that is a
// declared symlink, or "".
func linkAncestor(name string, links map[string]bool) string {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if links[dir] {
			return dir
		}
	}
	return ""
}

func unsafeEntry(name string, cause error) error {
	return installerr.Wrap(installerr.UnsafeArchiveEntry, cause,
		"archive contains unsafe path outside install dir: %s", name)
}
