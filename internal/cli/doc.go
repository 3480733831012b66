// Package cli defines the Cobra command tree for codex-installer. The root
// command performs an installation; subcommands report build info, the
// detected platform, and manage the config file. Commands only parse
// flags, format output and map errors to exit codes; the work is done by
// the installer and config packages.
package cli
