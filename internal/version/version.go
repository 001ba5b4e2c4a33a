// Package version provides build information for appfeed.
package version

import "runtime"

// Version, Commit and Date are overridden at build time using ldflags.
var (
	Version = "development"
	Commit  = "unknown"
	Date    = ""
)

// String returns the version including the commit hash if available.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// UserAgent is the User-Agent sent by the HTTP client.
func UserAgent() string {
	return "appfeed/" + String()
}

// Info is the build information reported by the server health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date,omitempty"`
	Go      string `json:"go"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
}
