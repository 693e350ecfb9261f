package ui

import (
	"fmt"

	"tml/internal/diag"
)

// Summary renders a one-line styled check result for the CLI.
func Summary(bag *diag.Bag) string {
	errors := 0
	warnings := 0
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errors++
		case diag.SevWarning:
			warnings++
		}
	}
	switch {
	case errors > 0:
		return errorStyle.Render(fmt.Sprintf("check failed: %d error(s), %d warning(s)", errors, warnings))
	case warnings > 0:
		return warnStyle.Render(fmt.Sprintf("check passed with %d warning(s)", warnings))
	default:
		return infoStyle.Render("check passed")
	}
}
