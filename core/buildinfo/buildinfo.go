// Package buildinfo reports the version stamped into the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set with -ldflags, for example:
//
//	-X 'github.com/m3rciful/typekeeper/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/typekeeper/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/typekeeper/core/buildinfo.Date=2026-01-30T12:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

var vcsOnce sync.Once

// fillFromVCS takes commit and time from the Go toolchain's VCS stamp
// when ldflags left the defaults in place.
func fillFromVCS() {
	vcsOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "local" && s.Value != "" {
					Commit = shortRev(s.Value)
				}
			case "vcs.time":
				if Date == "" {
					Date = s.Value
				}
			}
		}
	})
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Current returns version, commit and build date.
func Current() (version, commit, date string) {
	fillFromVCS()
	return Version, Commit, Date
}

// String formats the build as "version (commit)".
func String() string {
	v, c, _ := Current()
	return fmt.Sprintf("%s (%s)", v, c)
}
