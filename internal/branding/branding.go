// Package branding provides compile-time identity values for the installer.
//
// Values come from the embedded branding.yaml overlaid on hard defaults,
// so a fork can rename the product and its artifacts without code changes.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	ProductName    string `yaml:"product_name"`
	InstallDirName string `yaml:"install_dir_name"`
	BinaryName     string `yaml:"binary_name"`
	LauncherName   string `yaml:"launcher_name"`
	SnippetName    string `yaml:"snippet_name"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "codex-installer",
			DisplayName:    "Codex Installer",
			Description:    "Download, unpack and set up the Codex CLI",
			HomeDir:        ".codex-installer",
			EnvPrefix:      "CODEX_INSTALLER",
			ProductName:    "Codex CLI",
			InstallDirName: "codex-cli",
			BinaryName:     "codex",
			LauncherName:   "codex-launcher.sh",
			SnippetName:    "codex-path.sh",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "codex-installer").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable installer name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME for installer settings.
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CODEX_INSTALLER").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ProductName returns the name of the installed product (e.g., "Codex CLI").
func ProductName() string { load(); return defaults.ProductName }

// InstallDirName returns the default install directory name under $HOME.
func InstallDirName() string { load(); return defaults.InstallDirName }

// BinaryName returns the default executable name searched for after unpacking.
func BinaryName() string { load(); return defaults.BinaryName }

// LauncherName returns the wrapper script file name.
func LauncherName() string { load(); return defaults.LauncherName }

// SnippetName returns the PATH snippet file name.
func SnippetName() string { load(); return defaults.SnippetName }

// EnvVar returns a fully qualified env var name,
// e.g., EnvVar("install_dir") → "CODEX_INSTALLER_INSTALL_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
