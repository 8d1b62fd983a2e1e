// Package console prints zapi's progress output.
//
// Output mirrors a typical CLI progress log:
//
//	▶ Building my-addon for 2 target(s)...
//	[1/2] Building for x86_64-unknown-linux-gnu...
//	  → Moving artifact to artifacts/x86_64-unknown-linux-gnu
//	✓ Built 2 artifact(s) to artifacts/
//
// Colour is decided once per Logger: NO_COLOR disables it, FORCE_COLOR
// enables it, otherwise it follows whether stdout is a terminal.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Env looks up an environment variable.
type Env func(key string) (string, bool)

// Logger writes styled progress lines.
type Logger struct {
	out io.Writer
	err io.Writer

	cyan   lipgloss.Style
	blue   lipgloss.Style
	green  lipgloss.Style
	yellow lipgloss.Style
	red    lipgloss.Style
	dim    lipgloss.Style
}

// New returns a Logger writing to stdout/stderr with colour detected from the
// process environment.
func New() *Logger {
	return NewWithOptions(os.Stdout, os.Stderr, SupportsColor(os.LookupEnv, isTerminal(os.Stdout)))
}

// NewWithOptions returns a Logger writing to the given streams.
func NewWithOptions(out, err io.Writer, color bool) *Logger {
	r := lipgloss.NewRenderer(out)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Logger{
		out:    out,
		err:    err,
		cyan:   r.NewStyle().Foreground(lipgloss.Color("6")),
		blue:   r.NewStyle().Foreground(lipgloss.Color("4")),
		green:  r.NewStyle().Foreground(lipgloss.Color("2")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		red:    r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:    r.NewStyle().Faint(true),
	}
}

// Discard returns a Logger that prints nothing.
func Discard() *Logger {
	return NewWithOptions(io.Discard, io.Discard, false)
}

// SupportsColor applies the NO_COLOR / FORCE_COLOR conventions, falling back
// to tty when neither is set.
func SupportsColor(env Env, tty bool) bool {
	if v, ok := env("NO_COLOR"); ok && v != "" {
		return false
	}
	if v, ok := env("FORCE_COLOR"); ok && v != "" {
		return true
	}
	return tty
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Out returns the stream progress lines go to.
func (l *Logger) Out() io.Writer {
	return l.out
}

// Step logs a numbered step: "[1/6] Building for x86_64-unknown-linux-gnu...".
func (l *Logger) Step(current, total int, format string, args ...any) {
	prefix := l.cyan.Render(fmt.Sprintf("[%d/%d]", current, total))
	fmt.Fprintf(l.out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Info logs the start of a phase.
func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintf(l.out, "%s %s\n", l.blue.Render("▶"), fmt.Sprintf(format, args...))
}

// Success logs a completed phase.
func (l *Logger) Success(format string, args ...any) {
	fmt.Fprintf(l.out, "%s %s\n", l.green.Render("✓"), fmt.Sprintf(format, args...))
}

// Warn logs a non-fatal problem to the error stream.
func (l *Logger) Warn(format string, args ...any) {
	fmt.Fprintf(l.err, "%s %s\n", l.yellow.Render("⚠"), fmt.Sprintf(format, args...))
}

// Detail logs an indented, dimmed sub-step.
func (l *Logger) Detail(format string, args ...any) {
	fmt.Fprintf(l.out, "%s %s\n", l.dim.Render("  →"), l.dim.Render(fmt.Sprintf(format, args...)))
}

// Error logs a fatal error to the error stream.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.err, "%s %s\n", l.red.Render("✗"), l.red.Render(msg))
}
