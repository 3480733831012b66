// Package locate finds the installed executable inside an unpacked tree.
package locate

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

// Binary is the located executable.
type Binary struct {
	// Path is the absolute, symlink-resolved path of the binary.
	Path string
	// Rel is Path relative to the install directory.
	Rel string
}

// Dir returns the absolute directory holding the binary.
func (b Binary) Dir() string {
	return filepath.Dir(b.Path)
}

// Result is the outcome of Locate.
type Result struct {
	Binary
	// Shadowed lists other matching files, in traversal order. They were
	// not chosen because Binary was found first.
	Shadowed []string
}

// ExpectedNames returns the file names that identify binaryName. On
// Windows the ".exe" form is accepted as well.
func ExpectedNames(binaryName string, windows bool) []string {
	names := []string{binaryName}
	if windows {
		names = append(names, binaryName+".exe")
	}
	return names
}

// Candidates walks root in lexical order and yields every regular file, or
// symlink to one, whose name is one of names. A walk error is yielded once, with an
// empty path, and ends the sequence. Each call performs a fresh walk.
func Candidates(root string, names ...string) iter.Seq2[string, error] {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !want[d.Name()] || !isFile(path, d) {
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// isFile reports whether a walked entry is a regular file once symlinks
// are followed. Dangling links and links to directories are not.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Locate scans root for binaryName, marks the first match executable and
// returns it. Every other match is reported in Result.Shadowed.
func Locate(root, binaryName string, windows bool) (*Result, error) {
	resolvedRoot, err := platform.ResolvePath(root)
	if err != nil {
		return nil, installerr.Wrap(installerr.Internal, err, "resolving install directory")
	}

	var res *Result
	for path, err := range Candidates(resolvedRoot, ExpectedNames(binaryName, windows)...) {
		if err != nil {
			return nil, installerr.Wrap(installerr.Internal, err, "scanning %s", resolvedRoot)
		}
		if res != nil {
			res.Shadowed = append(res.Shadowed, path)
			continue
		}
		bin, err := resolve(resolvedRoot, path)
		if err != nil {
			return nil, err
		}
		res = &Result{Binary: bin}
	}

	if res == nil {
		return nil, installerr.New(installerr.BinaryNotFound,
			"could not locate the %s binary after extraction", binaryName).
			WithHint("Use --binary-name to specify the expected binary name if it differs.")
	}

	if err := platform.MarkExecutable(res.Path); err != nil {
		return nil, installerr.Wrap(installerr.Internal, err, "marking %s executable", res.Path)
	}
	return res, nil
}

// resolve turns a walked path into a Binary, following symlinks so the
// recorded location is the real file.
func resolve(root, path string) (Binary, error) {
	target, err := platform.ResolvePath(path)
	if err != nil {
		return Binary{}, installerr.Wrap(installerr.Internal, err, "resolving %s", path)
	}
	if !platform.Within(root, target) {
		return Binary{}, installerr.New(installerr.BinaryOutsideInstallDir,
			"binary path %s is not within install directory %s", target, root)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return Binary{}, fmt.Errorf("relative path of %s: %w", target, err)
	}
	return Binary{Path: target, Rel: rel}, nil
}
