package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// CreateSymlink creates link pointing at target. A relative target is
// interpreted against the directory containing link, as the OS does.
// On Windows, when native symlinks are unavailable (no developer mode),
// the target file is copied to link instead.
func CreateSymlink(target, link string) error {
	err := os.Symlink(target, link)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}

	if copyErr := copyLinkTarget(target, link); copyErr != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", copyErr)
	}
	return nil
}

// copyLinkTarget copies the file a link would point at into link.
func copyLinkTarget(target, link string) error {
	src := target
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(link), target)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(link)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
