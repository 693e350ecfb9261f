// Package ui provides the interactive diagnostics browser and styled
// terminal summaries.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tml/internal/diag"
	"tml/internal/source"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	detailStyle = lipgloss.NewStyle().PaddingLeft(2)
	caretStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

// diagItem adapts one diagnostic to the list widget.
type diagItem struct {
	d   diag.Diagnostic
	loc string
}

func (it diagItem) Title() string {
	return fmt.Sprintf("%s %s: %s", severityBadge(it.d.Severity), it.d.Code, it.d.Message)
}

func (it diagItem) Description() string { return it.loc }
func (it diagItem) FilterValue() string { return it.d.Message + " " + it.d.Code.String() }

func severityBadge(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return errorStyle.Render("ERROR")
	case diag.SevWarning:
		return warnStyle.Render("WARN")
	default:
		return infoStyle.Render("INFO")
	}
}

// browserModel is the diagnostics browser: a navigable list with a
// source-context pane for the selected entry.
type browserModel struct {
	list list.Model
	fs   *source.FileSet
	bag  *diag.Bag
}

// NewBrowser builds the browser model over a sorted bag.
func NewBrowser(bag *diag.Bag, fs *source.FileSet) tea.Model {
	items := make([]list.Item, 0, bag.Len())
	for _, d := range bag.Items() {
		items = append(items, diagItem{d: d, loc: formatLocation(fs, d.Primary)})
	}
	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = fmt.Sprintf("%d diagnostics", bag.Len())
	l.Styles.Title = titleStyle
	return &browserModel{list: l, fs: fs, bag: bag}
}

func (m *browserModel) Init() tea.Cmd { return nil }

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-8)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *browserModel) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	if it, ok := m.list.SelectedItem().(diagItem); ok {
		b.WriteString(detailStyle.Render(m.detail(it)))
	}
	return b.String()
}

// detail renders the source context and notes for one diagnostic.
func (m *browserModel) detail(it diagItem) string {
	var b strings.Builder
	span := it.d.Primary
	pos := m.fs.Position(span.File, span.Start)
	line := strings.TrimRight(string(m.fs.Line(span.File, pos.Line)), "\r\n")
	if line != "" {
		b.WriteString(line)
		b.WriteString("\n")
		marks := int(span.Len())
		if marks < 1 {
			marks = 1
		}
		b.WriteString(strings.Repeat(" ", int(pos.Col)-1))
		b.WriteString(caretStyle.Render("^" + strings.Repeat("~", marks-1)))
		b.WriteString("\n")
	}
	for _, n := range it.d.Notes {
		fmt.Fprintf(&b, "%s %s (%s)\n", infoStyle.Render("note:"), n.Msg, formatLocation(m.fs, n.Span))
	}
	return b.String()
}

func formatLocation(fs *source.FileSet, span source.Span) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	pos := fs.Position(span.File, span.Start)
	return fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Col)
}

// Browse runs the interactive browser until the user quits.
func Browse(bag *diag.Bag, fs *source.FileSet) error {
	_, err := tea.NewProgram(NewBrowser(bag, fs), tea.WithAltScreen()).Run()
	return err
}
