package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal prompts with a bubbletea text input. Secrets are masked.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal returns a Terminal prompter on the given streams.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Ask shows label and returns what the user typed.
func (t *Terminal) Ask(ctx context.Context, label string) (string, error) {
	return t.run(ctx, newInputModel(label, false))
}

// AskSecret shows label and reads without echoing the typed characters.
func (t *Terminal) AskSecret(ctx context.Context, label string) (string, error) {
	return t.run(ctx, newInputModel(label, true))
}

// Notify prints msg above the next prompt.
func (t *Terminal) Notify(msg string) {
	fmt.Fprintln(t.out, renderNotice(msg))
}

func (t *Terminal) run(ctx context.Context, m inputModel) (string, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	fm, ok := final.(inputModel)
	if !ok || fm.aborted {
		return "", ErrAborted
	}
	return fm.input.Value(), nil
}

type inputModel struct {
	label   string
	secret  bool
	input   textinput.Model
	done    bool
	aborted bool
}

func newInputModel(label string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{label: label, secret: secret, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	label := labelStyle.Render(m.label)
	if m.aborted {
		return label + "\n"
	}
	if m.done {
		if m.secret {
			return label + "\n"
		}
		return label + " " + m.input.Value() + "\n"
	}
	return label + "\n" + m.input.View() + "\n"
}
