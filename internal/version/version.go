// Package version carries the build fingerprint of the tml CLI. The
// variables are plain strings so -ldflags can override them; colored
// rendering is a separate concern.
package version

import (
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

// Pretty renders Version with each semver component colored. Any
// pre-release suffix stays uncolored, and a version that does not split
// into three components comes back unchanged.
func Pretty() string {
	base, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(base, ".")
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
