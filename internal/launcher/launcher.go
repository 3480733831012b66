// Package launcher writes the artifacts that make an installed binary easy
// to run: a self-locating wrapper script and a PATH export snippet.
//
// The wrapper never embeds the install directory. It finds its own location
// at run time and execs the binary by its path relative to the script, so
// the install directory can be moved or reached through a symlink. The
// snippet does embed the absolute binary directory, resolved when it is
// written, and goes stale if the installation moves.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/locate"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

// Default artifact names inside the install directory.
const (
	DefaultLauncherName = "codex-launcher.sh"
	DefaultSnippetName  = "codex-path.sh"
	defaultProduct      = "Codex CLI"
)

// scriptPerm is applied to both artifacts where execute bits exist.
const scriptPerm os.FileMode = 0755

// Generator writes launcher artifacts.
type Generator struct {
	launcherName string
	snippetName  string
	product      string
}

// Option configures a Generator.
type Option func(*Generator)

// WithNames overrides the launcher and snippet file names.
func WithNames(launcher, snippet string) Option {
	return func(g *Generator) {
		if launcher != "" {
			g.launcherName = launcher
		}
		if snippet != "" {
			g.snippetName = snippet
		}
	}
}

// WithProduct sets the product name used in the snippet comment.
func WithProduct(product string) Option {
	return func(g *Generator) {
		if product != "" {
			g.product = product
		}
	}
}

// New creates a Generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		launcherName: DefaultLauncherName,
		snippetName:  DefaultSnippetName,
		product:      defaultProduct,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RelativeBinaryPath resolves both paths and returns binaryPath relative to
// installDir. It fails with BinaryOutsideInstallDir when the binary does
// not lie under the install directory.
func RelativeBinaryPath(installDir, binaryPath string) (string, error) {
	root, err := platform.ResolvePath(installDir)
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "resolving install directory")
	}
	bin, err := platform.ResolvePath(binaryPath)
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "resolving binary path")
	}
	if bin == root || !platform.Within(root, bin) {
		return "", installerr.New(installerr.BinaryOutsideInstallDir,
			"binary path %s is not within install directory %s", binaryPath, installDir)
	}
	rel, err := filepath.Rel(root, bin)
	if err != nil {
		return "", installerr.Wrap(installerr.BinaryOutsideInstallDir, err,
			"binary path %s is not within install directory %s", binaryPath, installDir)
	}
	return rel, nil
}

// Script returns the wrapper script that execs the binary at rel, a path
// relative to the script's own directory.
func Script(rel string) string {
	var b strings.Builder
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("set -euo pipefail\n")
	b.WriteString(`SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" && pwd)"` + "\n")
	b.WriteString(`export PATH="$SCRIPT_DIR:$PATH"` + "\n")
	fmt.Fprintf(&b, "exec \"$SCRIPT_DIR/%s\" \"$@\"\n", escape(filepath.ToSlash(rel)))
	return b.String()
}

// Snippet returns a shell fragment that prepends binDir to PATH.
func Snippet(product, binDir string) string {
	return fmt.Sprintf("# Source this file to add %s to your PATH\nexport PATH=\"%s:$PATH\"\n",
		product, escape(filepath.ToSlash(binDir)))
}

// escape makes s safe inside a double-quoted shell string.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return r.Replace(s)
}

// WriteLauncher writes the wrapper script into installDir and returns its path.
func (g *Generator) WriteLauncher(bin locate.Binary, installDir string) (string, error) {
	rel, err := RelativeBinaryPath(installDir, bin.Path)
	if err != nil {
		return "", err
	}
	path := filepath.Join(installDir, g.launcherName)
	if err := writeScript(path, Script(rel)); err != nil {
		return "", err
	}
	return path, nil
}

// WritePathSnippet writes the PATH snippet into installDir and returns its path.
func (g *Generator) WritePathSnippet(bin locate.Binary, installDir string) (string, error) {
	rel, err := RelativeBinaryPath(installDir, bin.Path)
	if err != nil {
		return "", err
	}
	root, err := platform.ResolvePath(installDir)
	if err != nil {
		return "", installerr.Wrap(installerr.Internal, err, "resolving install directory")
	}
	binDir := filepath.Join(root, filepath.Dir(rel))

	path := filepath.Join(installDir, g.snippetName)
	if err := writeScript(path, Snippet(g.product, binDir)); err != nil {
		return "", err
	}
	return path, nil
}

// writeScript replaces path with content via a temp file and rename, so an
// existing file or symlink at path is replaced rather than written through.
func writeScript(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return installerr.Wrap(installerr.Internal, err, "creating %s", path)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return installerr.Wrap(installerr.Internal, err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return installerr.Wrap(installerr.Internal, err, "writing %s", path)
	}
	if err := platform.Chmod(tmpPath, scriptPerm); err != nil {
		return installerr.Wrap(installerr.Internal, err, "setting mode on %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return installerr.Wrap(installerr.Internal, err, "replacing %s", path)
	}
	cleanup = false
	return nil
}
