// Package buildinfo carries the version stamped in by the linker:
//
//	go build -ldflags "-X rgbtouch/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "runtime"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, or the commit for untagged builds.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}

// String is the full identifier logged at startup.
func String() string {
	s := Short()
	if Date != "" && Date != "unknown" {
		s += " (" + Date + ")"
	}
	return s + " " + runtime.GOOS + "/" + runtime.GOARCH
}
