// SPDX-License-Identifier: MIT
//
// Package build carries the metadata stamped into the eqlab binary at link
// time: name, version, commit and build timestamp. The values are set with
// -ldflags, for example:
//
//	go build -ldflags "-X eqlab/pkg/build.buildVersion=0.3.0 -X eqlab/pkg/build.buildCommit=$(git rev-parse --short HEAD)"
//
// Development builds report "dev" for the version and "unknown" elsewhere.
package build

import (
	"errors"
	"fmt"
)

// Info is the build metadata exposed to the CLI.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = defaultInfo()
)

func defaultInfo() *Info {
	return &Info{
		Name:        "eqlab",
		Description: "Offline 9-band equalizer, dynamics and spectrum analysis for audio files",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the linker-provided values into the build info. Missing
// values keep their development defaults and are reported together in the
// returned error so the caller can decide whether a dev build is acceptable.
func Initialize() error {
	var missing []error

	if buildName != "" {
		buildInfo.Name = buildName
	}
	if buildTime == "" {
		missing = append(missing, errors.New("BuildTime is required"))
	} else {
		buildInfo.Time = buildTime
	}
	if buildCommit == "" {
		missing = append(missing, errors.New("BuildCommit is required"))
	} else {
		buildInfo.Commit = buildCommit
	}
	if buildVersion == "" {
		missing = append(missing, errors.New("BuildVersion is required"))
	} else {
		buildInfo.Version = buildVersion
	}

	return errors.Join(missing...)
}

// Get returns the current build information.
func Get() *Info {
	return buildInfo
}

// String renders the version line printed by `eqlab --version`.
func (i *Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}
