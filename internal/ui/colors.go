package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles - will be initialized based on terminal support
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	pathStyle    lipgloss.Style

	colorStyles  map[string]lipgloss.Style
	actionStyles map[string]lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	plain := lipgloss.NewStyle()
	if !IsTerminal() {
		successStyle, errorStyle, warningStyle = plain, plain, plain
		infoStyle, dimStyle, pathStyle = plain, plain, plain
		colorStyles = map[string]lipgloss.Style{}
		actionStyles = map[string]lipgloss.Style{}
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	colorStyles = map[string]lipgloss.Style{
		"BLUE":   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		"GREEN":  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		"YELLOW": lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		"RED":    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	actionStyles = map[string]lipgloss.Style{
		"rename": lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"move":   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"delete": lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		"skip":   dimStyle,
	}
}

// Success prints success text
func Success(text string) string {
	return successStyle.Render(text)
}

// Error prints error text
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning prints warning text
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info prints info text
func Info(text string) string {
	return infoStyle.Render(text)
}

// Dim prints dim text
func Dim(text string) string {
	return dimStyle.Render(text)
}

// Path prints path text
func Path(text string) string {
	return pathStyle.Render(text)
}

// QualityColor renders a quality color label (BLUE, GREEN, YELLOW, RED) in
// its own color. Unrecognized labels are returned unstyled.
func QualityColor(label string) string {
	if style, ok := colorStyles[strings.ToUpper(label)]; ok {
		return style.Render(label)
	}
	return label
}

// Action renders a plan action name.
func Action(action string) string {
	if style, ok := actionStyles[action]; ok {
		return style.Render(action)
	}
	return action
}

var out io.Writer = os.Stdout

// SetOutput redirects the message helpers. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SuccessMsg prints a success message
func SuccessMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg prints an error message
func ErrorMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg prints a warning message
func WarningMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg prints an info message
func InfoMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
