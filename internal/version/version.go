// Package version holds the application identity. Version and BuildDate can
// be stamped at build time:
//
//	go build -ldflags "-X github.com/enimaloc/distoornament/internal/version.Version=0.6.0 \
//	  -X github.com/enimaloc/distoornament/internal/version.BuildDate=2026-10-19T00:00:00Z"
package version

import (
	"fmt"
	"runtime"
	"time"
)

const (
	AppName        = "Distoornament"
	AppDescription = "Tournament companion bot for Discord"
)

const (
	Major = 0
	Minor = 5
	Patch = 2

	// Pre-release counters. The first non-zero one in rc, beta, alpha order
	// is appended.
	ReleaseCandidate = 0
	Beta             = 0
	Alpha            = 0
)

var (
	// Version overrides the number composed from the constants.
	Version   = ""
	BuildDate = ""
	GoVersion = runtime.Version()
)

// Compose renders MAJOR.MINOR.PATCH with an optional -rc.N, -b.N or -a.N suffix.
func Compose(major, minor, patch, rc, beta, alpha int) string {
	v := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	switch {
	case rc != 0:
		v += fmt.Sprintf("-rc.%d", rc)
	case beta != 0:
		v += fmt.Sprintf("-b.%d", beta)
	case alpha != 0:
		v += fmt.Sprintf("-a.%d", alpha)
	}
	return v
}

func String() string {
	if Version != "" {
		return Version
	}
	return Compose(Major, Minor, Patch, ReleaseCandidate, Beta, Alpha)
}

// Released returns the build date, or false when it was not stamped or does
// not parse as RFC 3339.
func Released() (time.Time, bool) {
	if BuildDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, BuildDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
