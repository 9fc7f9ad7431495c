package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrWizardCancelled is returned when the user quits the wizard.
var ErrWizardCancelled = errors.New("wizard cancelled")

// Choice is a selectable option in the wizard.
type Choice struct {
	Label       string
	Value       string
	Description string
	Checked     bool
}

// WizardResult holds what the user picked.
type WizardResult struct {
	InputPath    string
	Transforms   []string
	OutputFormat string
}

type wizardPhase int

const (
	phaseInput wizardPhase = iota
	phaseTransforms
	phaseFormat
	phaseDone
)

// WizardModel is the bubbletea model behind the init wizard.
type WizardModel struct {
	styles     *StyleSet
	phase      wizardPhase
	input      textinput.Model
	transforms []Choice
	formats    []Choice
	cursor     int
	err        string
	cancelled  bool
}

// NewWizardModel creates a wizard offering transforms and output formats.
func NewWizardModel(styles *StyleSet, transforms, formats []Choice) WizardModel {
	ti := textinput.New()
	ti.Placeholder = "data/input/records.csv"
	ti.Focus()
	ti.CharLimit = 200
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return WizardModel{
		styles:     styles,
		input:      ti,
		transforms: transforms,
		formats:    formats,
	}
}

// Init starts the cursor blink.
func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keyboard input.
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.phase == phaseInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	}

	switch m.phase {
	case phaseInput:
		if key.String() == "enter" {
			val := strings.TrimSpace(m.input.Value())
			if val == "" {
				m.err = "input path is required"
				return m, nil
			}
			m.err = ""
			m.phase = phaseTransforms
			m.cursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case phaseTransforms:
		switch key.String() {
		case "up", "k":
			m.cursor = max(m.cursor-1, 0)
		case "down", "j":
			m.cursor = min(m.cursor+1, len(m.transforms)-1)
		case " ":
			m.transforms[m.cursor].Checked = !m.transforms[m.cursor].Checked
		case "enter":
			m.phase = phaseFormat
			m.cursor = 0
		}

	case phaseFormat:
		switch key.String() {
		case "up", "k":
			m.cursor = max(m.cursor-1, 0)
		case "down", "j":
			m.cursor = min(m.cursor+1, len(m.formats)-1)
		case "enter":
			m.phase = phaseDone
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the current phase.
func (m WizardModel) View() string {
	if m.phase == phaseDone || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString("  " + m.styles.Title.Render("configura init") + "\n\n")

	switch m.phase {
	case phaseInput:
		b.WriteString("  " + m.styles.PrimaryTxt.Render("Input file") + "\n")
		b.WriteString("  " + m.styles.Subtitle.Render("The reader is chosen from the file extension.") + "\n")
		b.WriteString("  " + m.styles.ActiveBorder.Render(m.input.View()) + "\n")
		if m.err != "" {
			b.WriteString("  " + m.styles.ErrorTxt.Render(m.err) + "\n")
		}
		b.WriteString("\n" + m.hints("⏎", "next", "esc", "quit"))
	case phaseTransforms:
		b.WriteString(m.chosenInput())
		b.WriteString("  " + m.styles.PrimaryTxt.Render("Transforms") + "\n")
		b.WriteString("  " + m.styles.Subtitle.Render("Applied in the order listed.") + "\n\n")
		for i, c := range m.transforms {
			box := "☐"
			if c.Checked {
				box = "☑"
			}
			b.WriteString(m.line(i, box+" "+c.Label, c.Description))
		}
		b.WriteString("\n" + m.hints("↑↓", "navigate", "space", "toggle", "⏎", "next"))
	case phaseFormat:
		b.WriteString(m.chosenInput())
		b.WriteString("  " + m.styles.PrimaryTxt.Render("Output format") + "\n\n")
		for i, c := range m.formats {
			b.WriteString(m.line(i, c.Label, c.Description))
		}
		b.WriteString("\n" + m.hints("↑↓", "navigate", "⏎", "select"))
	}
	return b.String()
}

// chosenInput shows the already entered path in an inactive box.
func (m WizardModel) chosenInput() string {
	return "  " + m.styles.InactiveBorder.Render(strings.TrimSpace(m.input.Value())) + "\n\n"
}

func (m WizardModel) line(i int, label, desc string) string {
	prefix := "  "
	style := m.styles.DimTxt
	if i == m.cursor {
		prefix = m.styles.Cursor.Render("›") + " "
		style = m.styles.PrimaryTxt
	}
	out := "  " + prefix + style.Render(label)
	if desc != "" && i == m.cursor {
		out += "  " + m.styles.DimTxt.Render(desc)
	}
	return out + "\n"
}

func (m WizardModel) hints(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, m.styles.KbdKey.Render(pairs[i])+" "+m.styles.KbdDesc.Render(pairs[i+1]))
	}
	return "  " + strings.Join(parts, "    ") + "\n"
}

// Result returns the collected choices once the wizard has finished.
func (m WizardModel) Result() (*WizardResult, error) {
	if m.cancelled {
		return nil, ErrWizardCancelled
	}
	if m.phase != phaseDone {
		return nil, fmt.Errorf("wizard not finished")
	}
	res := &WizardResult{InputPath: strings.TrimSpace(m.input.Value())}
	for _, c := range m.transforms {
		if c.Checked {
			res.Transforms = append(res.Transforms, c.Value)
		}
	}
	if len(m.formats) > 0 {
		res.OutputFormat = m.formats[m.cursor].Value
	}
	return res, nil
}

// RunWizard runs the wizard on the terminal and returns the choices.
func RunWizard(styles *StyleSet, transforms, formats []Choice) (*WizardResult, error) {
	final, err := tea.NewProgram(NewWizardModel(styles, transforms, formats)).Run()
	if err != nil {
		return nil, fmt.Errorf("running wizard: %w", err)
	}
	return final.(WizardModel).Result()
}
