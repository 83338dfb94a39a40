// Package confirm is a single key yes/no prompt
package confirm

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimschubert/answer/colors"
)

// Decision is an enumeration of decisions available in the prompt
type Decision int

const (
	// Undecided indicates the user has not answered yet
	Undecided Decision = iota

	// Accepted indicates a positive answer
	Accepted

	// Denied indicates a negative answer
	Denied
)

// String satisfies the fmt.Stringer interface
func (d Decision) String() string {
	return [...]string{
		"undecided",
		"accepted",
		"denied",
	}[d]
}

// IsAccepted is a helper to indicate the positive confirmation state was selected
func (d Decision) IsAccepted() bool {
	return d == Accepted
}

// KeyMap defines the key bindings of the prompt
type KeyMap struct {
	Accept key.Binding
	Deny   key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

var DefaultKeyMap = KeyMap{
	Accept: key.NewBinding(key.WithKeys("y", "Y")),
	Deny:   key.NewBinding(key.WithKeys("n", "N")),
	Enter:  key.NewBinding(key.WithKeys(tea.KeyEnter.String())),
	Cancel: key.NewBinding(key.WithKeys(tea.KeyCtrlC.String(), tea.KeyEsc.String())),
}

// Styles holds relevant styles used for rendering
type Styles struct {
	PromptPrefix lipgloss.Style
	Prompt       lipgloss.Style
	Placeholder  lipgloss.Style
}

// Model is the bubble tea model of the prompt. A single key press decides;
// enter picks DefaultValue and cancelling always denies.
type Model struct {
	PromptPrefix string
	Prompt       string
	DefaultValue Decision
	KeyMap       KeyMap
	Styles       Styles

	selected Decision
	done     bool
}

// New creates a model that denies unless told otherwise
func New(prompt string) Model {
	return Model{
		PromptPrefix: "? ",
		Prompt:       prompt,
		DefaultValue: Denied,
		KeyMap:       DefaultKeyMap,
		Styles: Styles{
			PromptPrefix: lipgloss.NewStyle().Foreground(lipgloss.Color(colors.PromptPrefix)),
			Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Placeholder)),
		},
	}
}

// Selected retrieves the user-selected Decision value
func (m *Model) Selected() Decision {
	return m.selected
}

// Init satisfies the tea.Model interface
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.KeyMap.Accept):
		m.selected = Accepted
	case key.Matches(keyMsg, m.KeyMap.Deny), key.Matches(keyMsg, m.KeyMap.Cancel):
		m.selected = Denied
	case key.Matches(keyMsg, m.KeyMap.Enter):
		m.selected = m.DefaultValue
		if m.selected == Undecided {
			return m, nil
		}
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

// View satisfies the tea.Model interface
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.Styles.PromptPrefix.Inline(true).Render(m.PromptPrefix))
	b.WriteString(m.Styles.Prompt.Inline(true).Render(m.Prompt))
	b.WriteString(" ")
	if m.done {
		if m.selected == Accepted {
			b.WriteString("yes")
		} else {
			b.WriteString("no")
		}
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.Styles.Placeholder.Render(m.hint()))
	return b.String()
}

func (m *Model) hint() string {
	switch m.DefaultValue {
	case Accepted:
		return "(Y/n)"
	case Denied:
		return "(y/N)"
	}
	return "(y/n)"
}

// Ask shows prompt on out and waits for an answer on in
func Ask(in io.Reader, out io.Writer, prompt string) (bool, error) {
	m := New(prompt)
	p := tea.NewProgram(&m, tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return false, err
	}
	return m.Selected().IsAccepted(), nil
}
