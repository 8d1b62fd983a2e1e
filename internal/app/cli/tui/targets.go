package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Target is one selectable row.
type Target struct {
	Name        string
	Description string // e.g. "linux x64 (musl)"
	Host        bool
}

// TargetState represents the current state of the target selection UI
type TargetState int

const (
	TargetStateSelecting TargetState = iota
	TargetStateDone
)

// TargetModel is a multi-select list of targets.
type TargetModel struct {
	state    TargetState
	targets  []Target
	cursor   int
	selected map[int]bool
	quitting bool
	viewport int
	viewSize int
	Title    string
}

// NewTargetModel creates a selection model with initialSelection pre-checked.
// Unknown names in initialSelection are ignored.
func NewTargetModel(targets []Target, initialSelection []string, title string) TargetModel {
	if title == "" {
		title = "Select Build Targets"
	}

	index := make(map[string]int, len(targets))
	for i, t := range targets {
		index[t.Name] = i
	}

	selected := make(map[int]bool)
	for _, name := range initialSelection {
		if i, ok := index[name]; ok {
			selected[i] = true
		}
	}

	return TargetModel{
		state:    TargetStateSelecting,
		targets:  targets,
		selected: selected,
		viewSize: 15,
		Title:    title,
	}
}

func (m TargetModel) Init() tea.Cmd {
	return nil
}

func (m TargetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if len(m.targets) == 0 {
		m.quitting = true
		return m, tea.Quit
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if len(m.selected) == 0 {
			m.selected[m.cursor] = true
		}
		m.state = TargetStateDone
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.viewport {
				m.viewport = m.cursor
			}
		}

	case "down", "j":
		m.moveDown()

	case " ":
		if m.selected[m.cursor] {
			delete(m.selected, m.cursor)
		} else {
			m.selected[m.cursor] = true
		}

	case "tab":
		m.selected[m.cursor] = true
		m.moveDown()

	case "a":
		for i := range m.targets {
			m.selected[i] = true
		}

	case "n":
		m.selected = make(map[int]bool)
	}

	return m, nil
}

func (m *TargetModel) moveDown() {
	if m.cursor < len(m.targets)-1 {
		m.cursor++
		if m.cursor >= m.viewport+m.viewSize {
			m.viewport = m.cursor - m.viewSize + 1
		}
	}
}

func (m TargetModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(cyanBold.Render(m.Title) + "\n\n")

	if len(m.targets) == 0 {
		s.WriteString(dimStyle.Render("No targets available.\n"))
		return s.String()
	}

	end := min(m.viewport+m.viewSize, len(m.targets))
	if m.viewport > 0 {
		s.WriteString(dimStyle.Render("  ↑ more above\n"))
	}

	for i := m.viewport; i < end; i++ {
		t := m.targets[i]
		prefix := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		checkbox := "[ ]"
		if m.selected[i] {
			checkbox = greenCheck.Render("[✓]")
		}

		desc := t.Description
		if t.Host {
			desc += " • host"
		}
		line := style.Render(fmt.Sprintf("%s%s %-27s", prefix, checkbox, t.Name))
		s.WriteString(line + " " + dimStyle.Render(desc) + "\n")
	}

	if end < len(m.targets) {
		s.WriteString(dimStyle.Render("  ↓ more below\n"))
	}

	s.WriteString("\n")
	if n := len(m.selected); n > 0 {
		s.WriteString(greenStyle.Render(fmt.Sprintf("%d selected", n)) + " • ")
	}
	s.WriteString(dimStyle.Render("Space: toggle • Tab: select & next • a: all • n: none • Enter: confirm • q: cancel"))

	return s.String()
}

// Selected returns the checked target names in list order.
func (m TargetModel) Selected() []string {
	var out []string
	for i, t := range m.targets {
		if m.selected[i] {
			out = append(out, t.Name)
		}
	}
	return out
}

// Cancelled reports whether the user left without confirming.
func (m TargetModel) Cancelled() bool {
	return m.state != TargetStateDone
}

// RunTargetSelection runs the selection UI. A nil slice with a nil error
// means the user cancelled.
func RunTargetSelection(targets []Target, initialSelection []string, title string) ([]string, error) {
	p := tea.NewProgram(NewTargetModel(targets, initialSelection, title))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	tm := final.(TargetModel)
	if tm.Cancelled() {
		return nil, nil
	}
	return tm.Selected(), nil
}
