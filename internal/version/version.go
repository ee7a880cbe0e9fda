// Package version carries build information of the docthrows CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component highlighted.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Current returns the build description.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// String renders the one-line form printed by `docthrows version`.
func (i Info) String() string {
	s := "docthrows " + i.Version
	if i.GitCommit != "" {
		s += fmt.Sprintf(" (%s)", i.GitCommit)
	}
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}
	return s
}
