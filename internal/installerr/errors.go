// Package installerr defines the categorized failures an installation run
// can end with. Every component returns an *Error carrying one Kind so the
// command layer can branch on the category without parsing messages.
package installerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an installation failure.
type Kind int

const (
	// Internal covers filesystem and other I/O failures outside the taxonomy.
	Internal Kind = iota
	// UnsupportedPlatform means no URL is known for this OS/arch and none was supplied.
	UnsupportedPlatform
	// DirectoryNotEmpty means the target exists with content and overwrite was not requested.
	DirectoryNotEmpty
	// UnsafeArchiveEntry means an archive member would land outside the install directory.
	UnsafeArchiveEntry
	// UnsupportedFormat means the archive suffix is not .tar.gz, .tgz or .zip.
	UnsupportedFormat
	// BinaryNotFound means no file with the expected name exists after extraction.
	BinaryNotFound
	// BinaryOutsideInstallDir means the located binary does not resolve under the install directory.
	BinaryOutsideInstallDir
	// LoginProcessMissing means the installed binary could not be started.
	LoginProcessMissing
	// LoginProcessFailed means the installed binary exited non-zero.
	LoginProcessFailed
	// FetchFailed means the package could not be downloaded.
	FetchFailed
)

var kindNames = map[Kind]string{
	Internal:                "Internal",
	UnsupportedPlatform:     "UnsupportedPlatform",
	DirectoryNotEmpty:       "DirectoryNotEmpty",
	UnsafeArchiveEntry:      "UnsafeArchiveEntry",
	UnsupportedFormat:       "UnsupportedFormat",
	BinaryNotFound:          "BinaryNotFound",
	BinaryOutsideInstallDir: "BinaryOutsideInstallDir",
	LoginProcessMissing:     "LoginProcessMissing",
	LoginProcessFailed:      "LoginProcessFailed",
	FetchFailed:             "FetchFailed",
}

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error implements error so a bare Kind can be used as an errors.Is target:
//
//	errors.Is(err, installerr.UnsafeArchiveEntry)
func (k Kind) Error() string {
	return k.String()
}

// Error is a categorized installation failure.
type Error struct {
	Kind Kind
	// Msg is the human-readable description shown to the user.
	Msg string
	// Hint is an optional follow-up suggestion (e.g., "Use --force to overwrite.").
	Hint string
	// Err is the underlying cause, if any.
	Err error
	// ExitCode carries the login process exit status for LoginProcessFailed.
	ExitCode int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// WithHint attaches a follow-up suggestion and returns the same error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// KindOf returns the Kind of the first *Error in err's chain,
// or Internal when err carries no category.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return Internal
}

// HintOf returns the hint of the first *Error in err's chain.
func HintOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Hint
	}
	return ""
}
