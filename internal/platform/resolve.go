package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Operating-system identifiers, spelled the way uname reports them.
const (
	OSLinux   = "Linux"
	OSDarwin  = "Darwin"
	OSWindows = "Windows"
)

// Key is the canonical (os-id, arch-id) pair used to look up a package URL.
type Key struct {
	OS   string
	Arch string
}

func (k Key) String() string {
	return k.OS + "/" + k.Arch
}

// IsWindows reports whether the key names the Windows OS-id.
func (k Key) IsWindows() bool {
	return k.OS == OSWindows
}

// Prober reads the live operating-system name and machine architecture.
type Prober interface {
	// GOOS returns the Go operating system name (e.g., "linux").
	GOOS() string
	// Machine returns the machine hardware name as uname -m prints it
	// (e.g., "x86_64", "aarch64", "arm64").
	Machine() string
}

// hostProber probes the running host. The machine name comes from
// gopsutil's kernel architecture query; when that fails it is derived
// from GOARCH.
type hostProber struct{}

func (hostProber) GOOS() string { return runtime.GOOS }

func (hostProber) Machine() string {
	if arch, err := host.KernelArch(); err == nil && arch != "" {
		return arch
	}
	return machineFromGOARCH(runtime.GOOS, runtime.GOARCH)
}

// HostProber returns a Prober for the running process.
func HostProber() Prober {
	return hostProber{}
}

// machineFromGOARCH maps GOARCH to the machine name the OS would report.
func machineFromGOARCH(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	default:
		return goarch
	}
}

// Resolver computes the canonical platform key from a Prober.
type Resolver struct {
	prober Prober
}

// NewResolver creates a Resolver. A nil prober probes the running host.
func NewResolver(p Prober) *Resolver {
	if p == nil {
		p = HostProber()
	}
	return &Resolver{prober: p}
}

// Resolve returns the normalized key for the probed platform.
func (r *Resolver) Resolve() Key {
	return Normalize(OSID(r.prober.GOOS()), r.prober.Machine())
}

// OSID maps a GOOS value to its OS identifier. Unknown systems keep their
// name with the first letter upper-cased, so they never match the table.
func OSID(goos string) string {
	switch goos {
	case "linux":
		return OSLinux
	case "darwin":
		return OSDarwin
	case "windows":
		return OSWindows
	case "":
		return ""
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

// Normalize collapses per-OS architecture aliases:
//   - Linux: arm64 and aarch64 become aarch64
//   - Darwin: names are kept (x86_64, arm64)
//   - Windows: AMD64 and x86_64 become AMD64
func Normalize(osID, machine string) Key {
	arch := machine
	switch osID {
	case OSLinux:
		if machine == "arm64" || machine == "aarch64" {
			arch = "aarch64"
		}
	case OSWindows:
		if strings.EqualFold(machine, "amd64") || machine == "x86_64" {
			arch = "AMD64"
		}
	}
	return Key{OS: osID, Arch: arch}
}
