package platform

import (
	"fmt"
	"io/fs"
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// keptModeBits are the mode bits MarkExecutable carries over.
const keptModeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// MarkExecutable adds the owner execute bit to path, keeping every other
// permission bit (setuid, setgid and sticky included) as it was. On Windows it only checks that path exists.
func MarkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := Chmod(path, info.Mode()&keptModeBits|0o100); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
