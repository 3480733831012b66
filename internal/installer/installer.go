// Package installer sequences a complete installation run: resolve the
// platform download, prepare the install directory, fetch and unpack the
// archive, locate the binary, write the launcher artifacts, and optionally
// hand off to the binary's login flow.
//
// Stages run strictly in order and the first failure ends the run. Nothing
// is rolled back. In particular, when Force is set a previous installation
// is deleted before the download starts and is gone even if a later stage
// fails.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/agentx-labs/codex-installer/internal/archive"
	"github.com/agentx-labs/codex-installer/internal/branding"
	"github.com/agentx-labs/codex-installer/internal/fetch"
	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/launcher"
	"github.com/agentx-labs/codex-installer/internal/locate"
	"github.com/agentx-labs/codex-installer/internal/platform"
	"github.com/agentx-labs/codex-installer/internal/process"
	"github.com/agentx-labs/codex-installer/internal/target"
)

// LoginArg is passed to the installed binary to start its login flow.
const LoginArg = "login"

// Resolver identifies the host platform.
type Resolver interface {
	Resolve() platform.Key
}

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

// Runner starts a program in the foreground and returns its exit code.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) (int, error)
}

// Options are the per-run settings.
type Options struct {
	// InstallDir must be absolute.
	InstallDir string
	// DownloadURL overrides the platform default when non-empty.
	DownloadURL string
	// Force deletes a populated InstallDir before installing.
	Force      bool
	SkipLaunch bool
	BinaryName string
	// Channel is informational and only appears in output.
	Channel string
}

// Installer runs installations. The zero value is not usable; call New.
type Installer struct {
	resolver  Resolver
	urls      platform.URLTable
	fetcher   Fetcher
	runner    Runner
	generator *launcher.Generator
	out       io.Writer
	logger    log.FieldLogger
	product   string
}

// Option configures an Installer.
type Option func(*Installer)

// WithResolver sets the platform resolver (useful for testing).
func WithResolver(r Resolver) Option {
	return func(i *Installer) { i.resolver = r }
}

// WithURLTable sets the platform download table.
func WithURLTable(t platform.URLTable) Option {
	return func(i *Installer) { i.urls = t }
}

// WithFetcher sets the download collaborator.
func WithFetcher(f Fetcher) Option {
	return func(i *Installer) { i.fetcher = f }
}

// WithRunner sets the process collaborator used for the login hand-off.
func WithRunner(r Runner) Option {
	return func(i *Installer) { i.runner = r }
}

// WithGenerator sets the launcher artifact generator.
func WithGenerator(g *launcher.Generator) Option {
	return func(i *Installer) { i.generator = g }
}

// WithOutput sets where progress and result messages are printed.
func WithOutput(w io.Writer) Option {
	return func(i *Installer) { i.out = w }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l log.FieldLogger) Option {
	return func(i *Installer) { i.logger = l }
}

// New creates an Installer wired to the host platform, the network and
// the terminal, with any collaborator replaceable by an option.
func New(opts ...Option) *Installer {
	i := &Installer{
		resolver: platform.NewResolver(nil),
		urls:     platform.DefaultURLs(),
		fetcher:  fetch.New(fetch.WithProgress(os.Stderr)),
		runner:   &process.Invoker{},
		generator: launcher.New(
			launcher.WithNames(branding.LauncherName(), branding.SnippetName()),
			launcher.WithProduct(branding.ProductName()),
		),
		out:     os.Stdout,
		logger:  log.StandardLogger(),
		product: branding.ProductName(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run performs one installation and returns the process exit code: 0 when
// launch is skipped, the login process's own code after a hand-off, and 1
// for any other failure. A login process that exits non-zero yields a
// LoginProcessFailed error together with that code.
func (i *Installer) Run(ctx context.Context, opts Options) (int, error) {
	code, err := i.run(ctx, opts)
	if err != nil {
		var ie *installerr.Error
		if errors.As(err, &ie) && ie.Kind == installerr.LoginProcessFailed {
			return ie.ExitCode, err
		}
		return 1, err
	}
	return code, nil
}

func (i *Installer) run(ctx context.Context, opts Options) (int, error) {
	key := i.resolver.Resolve()
	i.logger.WithFields(log.Fields{"stage": "resolve", "os": key.OS, "arch": key.Arch}).Debug("resolved platform")

	url := opts.DownloadURL
	if url == "" {
		var ok bool
		if url, ok = i.urls.DefaultURL(key); !ok {
			return 0, installerr.New(installerr.UnsupportedPlatform, "unsupported platform %s", key).
				WithHint(fmt.Sprintf("Please provide --download-url pointing to a %s package.", i.product))
		}
	}

	// A URL whose file name no extractor handles is rejected before the
	// install directory is touched.
	name, err := fetch.FileName(url)
	if err != nil {
		return 0, err
	}
	if _, err := archive.DetectFormat(name); err != nil {
		return 0, err
	}

	i.logger.WithFields(log.Fields{"stage": "prepare", "path": opts.InstallDir, "force": opts.Force}).Debug("preparing install directory")
	if err := target.Prepare(opts.InstallDir, opts.Force); err != nil {
		return 0, err
	}

	binary, err := i.download(ctx, url, name, key, opts)
	if err != nil {
		return 0, err
	}
	for _, other := range binary.Shadowed {
		i.logger.WithFields(log.Fields{"stage": "locate", "chosen": binary.Path, "ignored": other}).
			Warn("archive contains more than one matching binary; using the first one found")
	}

	i.logger.WithFields(log.Fields{"stage": "launcher", "path": opts.InstallDir}).Debug("writing launcher artifacts")
	launcherPath, err := i.generator.WriteLauncher(binary.Binary, opts.InstallDir)
	if err != nil {
		return 0, err
	}
	snippetPath, err := i.generator.WritePathSnippet(binary.Binary, opts.InstallDir)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(i.out, "%s installed successfully from channel '%s'.\n", i.product, opts.Channel)
	fmt.Fprintf(i.out, "Binary location: %s\n", binary.Path)
	fmt.Fprintf(i.out, "Launcher script: %s\n", launcherPath)
	fmt.Fprintf(i.out, "To add %s to your PATH, run:\n  source '%s'\nor append the export line to your shell profile.\n", i.product, snippetPath)

	if opts.SkipLaunch {
		fmt.Fprintf(i.out, "Skipping %s launch as requested.\n", i.product)
		return 0, nil
	}

	fmt.Fprintf(i.out, "Launching %s login flow...\n", i.product)
	i.logger.WithFields(log.Fields{"stage": "login", "path": binary.Path}).Debug("handing off to login")
	code, err := i.runner.Run(ctx, binary.Path, LoginArg)
	if err != nil {
		return 0, installerr.Wrap(installerr.LoginProcessMissing, err, "unable to launch %s at %s", i.product, binary.Path).
			WithHint("Ensure the package contains the expected binary name.")
	}
	if code != 0 {
		e := installerr.New(installerr.LoginProcessFailed, "%s exited with status %d during login", i.product, code)
		e.ExitCode = code
		return 0, e
	}
	return 0, nil
}

// download fetches url into a temporary work directory, unpacks it into
// the install directory and locates the binary. The work directory is always removed.
func (i *Installer) download(ctx context.Context, url, name string, key platform.Key, opts Options) (*locate.Result, error) {
	tmp, err := os.MkdirTemp("", branding.CLIName()+"-*")
	if err != nil {
		return nil, installerr.Wrap(installerr.Internal, err, "creating work directory")
	}
	defer os.RemoveAll(tmp)

	archivePath := filepath.Join(tmp, name)
	fmt.Fprintf(i.out, "Downloading %s package from %s ...\n", i.product, url)
	i.logger.WithFields(log.Fields{"stage": "fetch", "url": url, "path": archivePath}).Debug("downloading package")
	if err := i.fetcher.Fetch(ctx, url, archivePath); err != nil {
		if installerr.KindOf(err) != installerr.FetchFailed {
			err = installerr.Wrap(installerr.FetchFailed, err, "downloading %s", url)
		}
		return nil, err
	}
	fmt.Fprintf(i.out, "Downloaded to %s\n", archivePath)

	fmt.Fprintf(i.out, "Extracting %s ...\n", archivePath)
	i.logger.WithFields(log.Fields{"stage": "extract", "path": opts.InstallDir}).Debug("extracting package")
	if err := archive.Extract(archivePath, opts.InstallDir); err != nil {
		return nil, err
	}

	binaryName := opts.BinaryName
	if binaryName == "" {
		binaryName = branding.BinaryName()
	}
	i.logger.WithFields(log.Fields{"stage": "locate", "path": opts.InstallDir, "name": binaryName}).Debug("locating binary")
	return locate.Locate(opts.InstallDir, binaryName, key.IsWindows())
}
