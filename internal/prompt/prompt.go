// Package prompt collects account details, passwords, MFA codes and region
// choices from the person running an export.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Line prompts on plain line-oriented streams. It is used when stdin is not
// a terminal or when the user asks for plain output.
type Line struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

// NewLine returns a Line prompter reading from in and writing to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: in, r: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the next line without its line ending.
func (l *Line) Ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(l.out, label+" ")
	return l.readLine()
}

// AskSecret is Ask without echo when the input is a terminal.
func (l *Line) AskSecret(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(l.out, label+" ")
	if f, ok := l.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(l.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}
	return l.readLine()
}

// Notify prints msg on its own line.
func (l *Line) Notify(msg string) {
	fmt.Fprintln(l.out, msg)
}

func (l *Line) readLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: end of input", ErrAborted)
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// renderNotice styles a notice for the terminal prompter.
func renderNotice(msg string) string {
	if strings.HasPrefix(msg, "Warning") {
		return warnStyle.Render(msg)
	}
	return noticeStyle.Render(msg)
}
