package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{"from vcs", "", "", settings, "dev-20260301", "0123456-dirty"},
		{"ldflags win", "v0.3.0", "feedbee", settings, "v0.3.0", "feedbee"},
		{"short revision", "", "", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}, "", "abc"},
		{"bad time", "", "", []debug.BuildSetting{{Key: "vcs.time", Value: "yesterday"}}, "", ""},
		{"no vcs", "", "", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := fromSettings(tt.version, tt.commit, tt.settings)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("fromSettings() = %q, %q, want %q, %q", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestInitFillsValues(t *testing.T) {
	if Version == "" || Commit == "" {
		t.Errorf("Version = %q, Commit = %q after init", Version, Commit)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, Product+"/"+Version+" (") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("UserAgent() = %q, want platform", ua)
	}
	if got := Get(); got.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", got.GoVersion)
	}
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %q", Full())
	}
}
