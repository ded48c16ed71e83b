package version

import (
	"runtime/debug"
	"testing"
)

func TestInfoString(t *testing.T) {
	cases := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", Commit: "0123456789abcdef"}, "1.0.0 (0123456)"},
		{Info{Version: "1.0.0", Commit: "abc"}, "1.0.0 (abc)"},
	}
	for _, tc := range cases {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "deadbeefcafe"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}}
	got := fromBuildInfo(Info{Version: "dev"}, bi)
	if got.Commit != "deadbeefcafe" || got.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected info: %+v", got)
	}
	got = fromBuildInfo(Info{Version: "dev", BuildTime: "linked"}, bi)
	if got.BuildTime != "linked" {
		t.Fatalf("linker build time must win, got %q", got.BuildTime)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.GoVersion == "" {
		t.Fatalf("incomplete info: %+v", info)
	}
	if Get() != info {
		t.Fatal("Get must be stable")
	}
}
