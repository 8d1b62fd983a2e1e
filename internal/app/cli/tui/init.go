package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InitStep is the current prompt of the init wizard.
type InitStep int

const (
	InitStepBinaryName InitStep = iota
	InitStepBuildStep
	InitStepOptimize
	InitStepDone
)

// noOptimize is the optimize answer that leaves zapi.optimize unset.
const noOptimize = "(zig default)"

// InitModel asks for the parts of the zapi declaration that have no
// sensible default. Targets are chosen afterwards with TargetModel.
type InitModel struct {
	step      InitStep
	textInput textinput.Model
	cursor    int
	cancelled bool
	errorMsg  string

	binaryName string
	buildStep  string
	optimize   string

	optimizeOptions []string

	questions       []Question
	currentQuestion string
}

// InitConfig is the wizard's result.
type InitConfig struct {
	BinaryName string
	Step       string
	Optimize   string // empty when left to zig
}

// NewInitModel starts the wizard. defaultName pre-fills the binary name
// placeholder, usually derived from the package name.
func NewInitModel(defaultName string) InitModel {
	ti := textinput.New()
	ti.Placeholder = defaultName
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40
	ti.PromptStyle = inputPromptStyle
	ti.TextStyle = inputTextStyle
	ti.Cursor.Style = cursorStyle

	return InitModel{
		step:            InitStepBinaryName,
		textInput:       ti,
		currentQuestion: "Binary name (the .node file)?",
		optimizeOptions: []string{noOptimize, "Debug", "ReleaseSafe", "ReleaseFast", "ReleaseSmall"},
	}
}

func (m InitModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InitModel) textStep() bool {
	return m.step == InitStepBinaryName || m.step == InitStepBuildStep
}

func (m InitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up", "k":
			if !m.textStep() && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if !m.textStep() && m.cursor < len(m.optimizeOptions)-1 {
				m.cursor++
			}
		}
	}

	if m.textStep() {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	return m, cmd
}

// readIdent takes the typed value, falling back to the placeholder.
func (m *InitModel) readIdent(what string) (string, bool) {
	v := strings.TrimSpace(m.textInput.Value())
	if v == "" {
		v = m.textInput.Placeholder
	}
	if v == "" {
		m.errorMsg = what + " cannot be empty"
		return "", false
	}
	if !isValidIdent(v) {
		m.errorMsg = what + " can only contain letters, numbers, hyphens, and underscores"
		return "", false
	}
	m.errorMsg = ""
	return v, true
}

func (m *InitModel) answer(a string) {
	m.questions = append(m.questions, Question{Question: m.currentQuestion, Answer: a, Complete: true})
}

func (m InitModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case InitStepBinaryName:
		name, ok := m.readIdent("Binary name")
		if !ok {
			return m, nil
		}
		m.binaryName = name
		m.answer(name)

		m.currentQuestion = "Zig build step that produces it?"
		m.step = InitStepBuildStep
		m.textInput.Reset()
		m.textInput.Placeholder = "install"
		m.textInput.Focus()

	case InitStepBuildStep:
		step, ok := m.readIdent("Build step")
		if !ok {
			return m, nil
		}
		m.buildStep = step
		m.answer(step)

		m.currentQuestion = "Default optimize mode?"
		m.step = InitStepOptimize
		m.cursor = 0

	case InitStepOptimize:
		choice := m.optimizeOptions[m.cursor]
		if choice != noOptimize {
			m.optimize = choice
		}
		m.answer(choice)

		m.step = InitStepDone
		return m, tea.Quit
	}

	return m, nil
}

func (m InitModel) View() string {
	if m.cancelled {
		return "\n  " + dimStyle.Render("Cancelled.") + "\n\n"
	}
	if m.step == InitStepDone {
		return ""
	}

	var s strings.Builder
	s.WriteString(dimStyle.Render("zapi init") + "\n\n")
	s.WriteString(cyanBold.Render("Configure zapi for this package") + "\n\n")

	for _, q := range m.questions {
		s.WriteString(greenCheck.Render("✔") + " " + dimStyle.Render(q.Question) + " " + cyanBold.Render(q.Answer) + "\n")
	}

	s.WriteString(questionMark.Render("?") + " " + questionStyle.Render(m.currentQuestion) + " ")

	switch m.step {
	case InitStepBinaryName, InitStepBuildStep:
		s.WriteString(cyanBold.Render(m.textInput.View()))
		if m.errorMsg != "" {
			s.WriteString("\n  " + errorStyle.Render("✗ "+m.errorMsg))
		}

	case InitStepOptimize:
		s.WriteString(dimStyle.Render(m.optimizeOptions[m.cursor]))
		s.WriteString("\n")
		for i, opt := range m.optimizeOptions {
			cursor := " "
			if m.cursor == i {
				cursor = selectedStyle.Render("❯")
			}
			s.WriteString(fmt.Sprintf("  %s %s\n", cursor, opt))
		}
	}

	s.WriteString("\n\n" + dimStyle.Render("  Press Ctrl+C to cancel"))
	s.WriteString("\n")
	return s.String()
}

// Config returns the answers collected so far.
func (m InitModel) Config() InitConfig {
	return InitConfig{BinaryName: m.binaryName, Step: m.buildStep, Optimize: m.optimize}
}

// Cancelled reports whether the user aborted the wizard.
func (m InitModel) Cancelled() bool {
	return m.cancelled
}

// RunInitWizard runs the wizard. A nil config with a nil error means the
// user cancelled.
func RunInitWizard(defaultName string) (*InitConfig, error) {
	final, err := tea.NewProgram(NewInitModel(defaultName)).Run()
	if err != nil {
		return nil, err
	}

	model := final.(InitModel)
	if model.Cancelled() {
		return nil, nil
	}
	cfg := model.Config()
	return &cfg, nil
}
