package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, version, commit string) {
	t.Helper()
	oldVersion, oldCommit := Version, Commit
	Version, Commit = version, commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		expected string
	}{
		{"development without commit", "development", "unknown", "development"},
		{"empty commit", "1.0.0", "", "1.0.0"},
		{"release with commit", "1.0.0", "abc1234", "1.0.0+abc1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, tt.version, tt.commit)
			assert.Equal(t, tt.expected, String())
		})
	}
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "0.3.0", "def5678")
	assert.Equal(t, "appfeed/0.3.0+def5678", UserAgent())
}

func TestCurrent(t *testing.T) {
	withBuild(t, "0.3.0", "def5678")
	info := Current()
	assert.Equal(t, "0.3.0", info.Version)
	assert.Equal(t, "def5678", info.Commit)
	assert.Equal(t, runtime.Version(), info.Go)
}
