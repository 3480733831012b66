package platform

const downloadBase = "https://download.openai.com/codex/cli/latest/"

// URLTable is an immutable mapping from platform key to package URL.
type URLTable struct {
	urls map[Key]string
}

// NewURLTable copies entries into a new table.
func NewURLTable(entries map[Key]string) URLTable {
	urls := make(map[Key]string, len(entries))
	for k, v := range entries {
		urls[k] = v
	}
	return URLTable{urls: urls}
}

// DefaultURLs returns the table of published Codex CLI packages.
func DefaultURLs() URLTable {
	return NewURLTable(map[Key]string{
		{OS: OSLinux, Arch: "x86_64"}:  downloadBase + "codex-cli-linux-x64.tar.gz",
		{OS: OSLinux, Arch: "aarch64"}: downloadBase + "codex-cli-linux-arm64.tar.gz",
		{OS: OSDarwin, Arch: "x86_64"}: downloadBase + "codex-cli-macos-x64.zip",
		{OS: OSDarwin, Arch: "arm64"}:  downloadBase + "codex-cli-macos-arm64.zip",
		{OS: OSWindows, Arch: "AMD64"}: downloadBase + "codex-cli-windows-x64.zip",
	})
}

// DefaultURL returns the package URL for key, or false when the
// platform is not in the table.
func (t URLTable) DefaultURL(key Key) (string, bool) {
	url, ok := t.urls[key]
	return url, ok
}

// Len returns the number of entries.
func (t URLTable) Len() int {
	return len(t.urls)
}
