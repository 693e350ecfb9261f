package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"tml/internal/diag"
	"tml/internal/source"
)

// AutoColor reports whether colored output is appropriate for the
// writer: a terminal with NO_COLOR unset.
func AutoColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Pretty renders diagnostics in human-readable form, one entry per
// diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  <context line>
//	  ^~~~
//
// followed by its notes in the same shape. The caller is expected to
// Sort() the bag first.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeEntry(w, fs, opts, d.Severity, d.Code.String(), d.Message, d.Primary)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			writeEntry(w, fs, opts, diag.SevInfo, "note", n.Msg, n.Span)
		}
	}
	if bag.HasErrors() {
		fmt.Fprintf(w, "%s\n", summaryLine(bag, opts.Color))
	}
}

func writeEntry(w io.Writer, fs *source.FileSet, opts PrettyOpts, sev diag.Severity, code, msg string, span source.Span) {
	pos := fs.Position(span.File, span.Start)
	path := displayPath(fs, span.File, opts.PathMode)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, pos.Line, pos.Col, severityLabel(sev, opts.Color), code, msg)

	line := fs.Line(span.File, pos.Line)
	if len(line) == 0 {
		return
	}
	text := strings.TrimRight(string(line), "\r\n")
	if opts.MaxWidth > 0 && len(text) > opts.MaxWidth {
		text = text[:opts.MaxWidth]
	}
	fmt.Fprintf(w, "  %s\n", text)

	// Align the caret under the span start; display width of the prefix
	// decides the padding so wide runes line up too.
	prefix := text
	if int(pos.Col)-1 < len(text) {
		prefix = text[:pos.Col-1]
	}
	pad := runewidth.StringWidth(prefix)
	marks := int(span.Len())
	if marks < 1 {
		marks = 1
	}
	if rest := len(text) - int(pos.Col) + 1; marks > rest && rest > 0 {
		marks = rest
	}
	caret := "^" + strings.Repeat("~", marks-1)
	if opts.Color {
		caret = color.New(color.FgHiGreen, color.Bold).Sprint(caret)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), caret)
}

func severityLabel(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(label)
	default:
		return color.New(color.FgCyan).Sprint(label)
	}
}

func summaryLine(bag *diag.Bag, colored bool) string {
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
	text := fmt.Sprintf("%d error(s), %d warning(s)", errors, warnings)
	if colored {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	if mode == PathModeBasename {
		return filepath.Base(f.Path)
	}
	return f.Path
}
