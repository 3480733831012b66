package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/agentx-labs/codex-installer/internal/branding"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyInstallDir  = "install_dir"
	KeyDownloadURL = "download_url"
	KeyForce       = "force"
	KeySkipLaunch  = "skip_launch"
	KeyBinaryName  = "binary_name"
	KeyChannel     = "channel"
)

// DefaultChannel is the release channel label used when none is set.
const DefaultChannel = "latest"

// Keys lists every recognized key in display order.
var Keys = []string{KeyInstallDir, KeyDownloadURL, KeyForce, KeySkipLaunch, KeyBinaryName, KeyChannel}

var boolKeys = map[string]bool{KeyForce: true, KeySkipLaunch: true}

// Settings is the resolved configuration for one install run.
type Settings struct {
	// InstallDir is absolute with "~" expanded.
	InstallDir string
	// DownloadURL is empty when the platform default should be used.
	DownloadURL string
	Force       bool
	SkipLaunch  bool
	BinaryName  string
	Channel     string
}

// Dir returns the path to the installer's config directory (~/.codex-installer/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the default config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// DefaultInstallDir returns the default install location (~/codex-cli).
func DefaultInstallDir() string {
	return filepath.Join("~", branding.InstallDirName())
}

// Config resolves settings from flags, environment, file and defaults.
type Config struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file is not an error; an invalid one is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FilePath()
	}

	v := viper.New()
	v.SetDefault(KeyInstallDir, DefaultInstallDir())
	v.SetDefault(KeyDownloadURL, "")
	v.SetDefault(KeyForce, false)
	v.SetDefault(KeySkipLaunch, false)
	v.SetDefault(KeyBinaryName, branding.BinaryName())
	v.SetDefault(KeyChannel, DefaultChannel)

	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		result, err := ValidateFile(path)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, fmt.Errorf("invalid config file %s: %s", path, result)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file %s: %w", path, err)
	}

	return &Config{v: v, path: path}, nil
}

// Path returns the config file this Config reads and writes.
func (c *Config) Path() string {
	return c.path
}

// BindFlag lets an explicitly set flag override every other source for key.
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := c.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("binding flag --%s: %w", flag.Name, err)
	}
	return nil
}

// Get returns a config value by key as a string.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Settings returns the resolved settings for an install run.
func (c *Config) Settings() (Settings, error) {
	dir, err := platform.ExpandHome(c.v.GetString(KeyInstallDir))
	if err != nil {
		return Settings{}, err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return Settings{}, fmt.Errorf("resolving install directory: %w", err)
	}

	return Settings{
		InstallDir:  dir,
		DownloadURL: c.v.GetString(KeyDownloadURL),
		Force:       c.v.GetBool(KeyForce),
		SkipLaunch:  c.v.GetBool(KeySkipLaunch),
		BinaryName:  c.v.GetString(KeyBinaryName),
		Channel:     c.v.GetString(KeyChannel),
	}, nil
}

// Set writes a key-value pair to the config file. Only values already in
// the file are kept alongside it; defaults and environment are not
// written out.
func (c *Config) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (known keys: %v)", key, Keys)
	}

	var typed any = value
	if boolKeys[key] {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		typed = b
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	file := viper.New()
	file.SetConfigFile(c.path)
	file.SetConfigType(fileType)
	if _, err := os.Stat(c.path); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", c.path, err)
		}
	}
	file.Set(key, typed)

	data, err := yaml.Marshal(file.AllSettings())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	result, err := Validate(data)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("refusing to write invalid config: %s", result)
	}

	if err := file.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	c.v.Set(key, typed)
	return nil
}
