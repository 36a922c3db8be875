package ui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/recera/vex/cmd/vex/internal/template"
)

// Style definitions
var (
	// Colors
	primaryColor = lipgloss.Color("#3b82f6") // Blue
	successColor = lipgloss.Color("#10b981") // Green
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	errorColor   = lipgloss.Color("#ef4444") // Red
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray

	locationStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	caretStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// Success formats a completion line
func Success(format string, args ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, args...)
}

// Info formats a progress line
func Info(format string, args ...any) string {
	return infoStyle.Render("•") + " " + fmt.Sprintf(format, args...)
}

// Warning formats a non-fatal problem
func Warning(format string, args ...any) string {
	return warningStyle.Render("!") + " " + fmt.Sprintf(format, args...)
}

// Muted formats secondary detail
func Muted(format string, args ...any) string {
	return mutedStyle.Render(fmt.Sprintf(format, args...))
}

// RenderError formats err for the terminal. Syntax errors are shown with
// the offending source line read from fs and a caret under the column.
// Batches of errors are rendered one after another.
func RenderError(fs afero.Fs, err error) string {
	if err == nil {
		return ""
	}
	if merr, ok := err.(*multierror.Error); ok {
		parts := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			parts = append(parts, RenderError(fs, e))
		}
		return strings.Join(parts, "\n")
	}

	se, ok := template.AsSyntaxError(err)
	if !ok {
		return errorStyle.Render("error:") + " " + err.Error()
	}

	var sb strings.Builder
	sb.WriteString(locationStyle.Render(se.Pos.String()+":") + " ")
	sb.WriteString(errorStyle.Render("error:") + " " + se.Msg)
	if se.Got != "" && !strings.Contains(se.Msg, se.Got) {
		sb.WriteString(mutedStyle.Render(" (found " + se.Got + ")"))
	}

	line, ok := sourceLine(fs, se.Pos.Filename, se.Pos.Line)
	if !ok {
		return sb.String()
	}
	gutter := fmt.Sprintf("%4d | ", se.Pos.Line)
	blank := strings.Repeat(" ", len(gutter)-2) + "| "
	sb.WriteString("\n" + mutedStyle.Render(gutter) + line)
	sb.WriteString("\n" + mutedStyle.Render(blank) + caretPadding(line, se.Pos.Column) + caretStyle.Render("^"))
	return sb.String()
}

// sourceLine returns line n (1-based) of filename
func sourceLine(fs afero.Fs, filename string, n int) (string, bool) {
	if fs == nil || filename == "" || n <= 0 {
		return "", false
	}
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return "", false
	}
	lines := bytes.Split(data, []byte("\n"))
	if n > len(lines) {
		return "", false
	}
	return strings.TrimRight(string(lines[n-1]), "\r"), true
}

// caretPadding reproduces the whitespace of line up to column so the caret
// lines up under tabs too
func caretPadding(line string, column int) string {
	var sb strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
