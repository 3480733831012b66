// Package config manages installer settings stored at
// ~/.codex-installer/config.yaml. Values resolve in the order: explicit
// flag, CODEX_INSTALLER_* environment variable, config file, built-in
// default. The file is checked against an embedded JSON Schema before use.
package config
