package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// Styles defines the lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
	Banner     lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Foreground(lipgloss.Color("86")).
		Bold(true).
		Padding(0, 2),
}

// Success prints a success message
func Success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message
func Error(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message
func Info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Bold prints a bold line
func Bold(w io.Writer, format string, args ...any) {
	boldColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// SuccessBox prints a titled message in a green box
func SuccessBox(w io.Writer, title, content string) {
	fmt.Fprintln(w, Styles.SuccessBox.Render(successColor.Sprint(title)+"\n\n"+content))
}

// ErrorBox prints a titled message in a red box
func ErrorBox(w io.Writer, title, content string) {
	fmt.Fprintln(w, Styles.ErrorBox.Render(errorColor.Sprint(title)+"\n\n"+content))
}

// Banner prints the interactive mode banner
func Banner(w io.Writer, server string) {
	fmt.Fprintln(w, Styles.Banner.Render("Text-to-SQL Chat  ·  "+server))
}
