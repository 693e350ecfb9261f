package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestDefaultVersionSet(t *testing.T) {
	if Version == "" {
		t.Fatal("Version must have a default")
	}
	if !strings.Contains(Version, ".") {
		t.Errorf("Version %q is not semver-shaped", Version)
	}
}

func TestPrettyPlainWhenColorDisabled(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	saved := Version
	defer func() { Version = saved }()

	Version = "1.2.3-rc1"
	if got := Pretty(); got != "1.2.3-rc1" {
		t.Errorf("Pretty() = %q, want plain version when color is off", got)
	}
	Version = "weird"
	if got := Pretty(); got != "weird" {
		t.Errorf("Pretty() = %q, want unsplittable version unchanged", got)
	}
}

func TestLdflagsOverride(t *testing.T) {
	saved := Version
	Version = "9.8.7"
	if Version != "9.8.7" {
		t.Errorf("Version = %q after override", Version)
	}
	Version = saved
}
