// Package target prepares the install directory before anything is
// extracted into it.
//
// Prepare with overwrite set deletes the existing directory tree without
// asking. There is no backup and no undo; callers must make that clear to
// the user before passing overwrite=true.
package target

import (
	"fmt"
	"io"
	"os"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

// DirPerm is the mode used when creating the install directory.
const DirPerm os.FileMode = 0755

// Prepare makes path an existing, empty directory.
//
// If path holds at least one entry and overwrite is false, Prepare fails
// with installerr.DirectoryNotEmpty and leaves the directory untouched.
// If overwrite is true, the whole tree at path is removed and recreated.
// Missing parents are created. An existing empty directory is left as is.
func Prepare(path string, overwrite bool) error {
	info, err := os.Lstat(path)
	switch {
	case os.IsNotExist(err):
		return create(path)
	case err != nil:
		return installerr.Wrap(installerr.Internal, err, "inspecting install directory %s", path)
	}

	if !info.IsDir() {
		if !overwrite {
			return installerr.New(installerr.Internal, "install path %s exists and is not a directory", path).
				WithHint("Use --force to replace it.")
		}
		return purge(path)
	}

	empty, err := isEmpty(path)
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "reading install directory %s", path)
	}
	if empty {
		return nil
	}
	if !overwrite {
		return installerr.New(installerr.DirectoryNotEmpty,
			"install directory '%s' already exists and is not empty", path).
			WithHint("Use --force to overwrite.")
	}
	return purge(path)
}

// purge removes path and everything under it, then recreates it empty.
func purge(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return installerr.Wrap(installerr.Internal, err, "removing existing installation at %s", path)
	}
	return create(path)
}

func create(path string) error {
	if err := os.MkdirAll(path, DirPerm); err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating install directory %s", path)
	}
	return nil
}

// isEmpty reads at most one entry to decide whether dir has content.
func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("listing %s: %w", dir, err)
	}
	return false, nil
}
