// Package version provides application version and build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set through -ldflags "-X github.com/memohai/scholarbot/internal/version.Version=...".
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
}

var (
	once   sync.Once
	cached Info
)

// Get returns build info, filling commit and time from the embedded VCS stamp when the
// linker did not set them.
func Get() Info {
	once.Do(func() {
		cached = Info{
			Version:   Version,
			Commit:    CommitHash,
			BuildTime: BuildTime,
			GoVersion: runtime.Version(),
		}
		if cached.Commit != "" {
			return
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			cached = fromBuildInfo(cached, bi)
		}
	})
	return cached
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		}
	}
	return info
}

// String formats the version with a short commit hash, e.g. "1.2.0 (abc1234)".
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	short := i.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", i.Version, short)
}
