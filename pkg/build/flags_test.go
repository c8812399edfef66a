// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origInfo    Info
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origInfo = *buildInfo

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	*buildInfo = origInfo

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsgs []string
		wantName    string
	}{
		{
			"Development build",
			"", "", "", "",
			[]string{"BuildTime is required", "BuildCommit is required", "BuildVersion is required"},
			"eqlab",
		},
		{
			"Missing BuildCommit",
			"eqlab", "2026-10-01", "", "v0.3.0",
			[]string{"BuildCommit is required"},
			"eqlab",
		},
		{
			"Renamed binary",
			"eqlab-ci", "2026-10-01", "abcdef1", "v0.3.0",
			nil,
			"eqlab-ci",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildInfo = defaultInfo()
			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if len(tt.wantErrMsgs) == 0 {
				if err != nil {
					t.Fatalf("Initialize() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Fatal("Initialize() expected error, got nil")
				}
				for _, msg := range tt.wantErrMsgs {
					if !strings.Contains(err.Error(), msg) {
						t.Errorf("Initialize() error = %q, want it to contain %q", err, msg)
					}
				}
			}

			if Get().Name != tt.wantName {
				t.Errorf("Get().Name = %q, want %q", Get().Name, tt.wantName)
			}
			if tt.buildVer == "" && Get().Version != "dev" {
				t.Errorf("Get().Version = %q, want dev default", Get().Version)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := &Info{Name: "eqlab", Version: "v1.2.3", Commit: "abc", Time: "2026-10-01"}
	want := "eqlab v1.2.3 (commit abc, built 2026-10-01)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
