// Package ui renders terminal output for the command line tools.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"themeplane/model"
	"themeplane/palette"
)

var (
	clrSuccess = color.New(color.FgGreen)
	clrWarn    = color.New(color.FgYellow)
	clrError   = color.New(color.FgRed, color.Bold)
	clrMuted   = color.New(color.FgHiBlack)
	clrHeading = color.New(color.FgCyan, color.Bold)
)

func Success(format string, a ...any) string { return clrSuccess.Sprintf(format, a...) }
func Warn(format string, a ...any) string    { return clrWarn.Sprintf(format, a...) }
func Error(format string, a ...any) string   { return clrError.Sprintf(format, a...) }
func Muted(format string, a ...any) string   { return clrMuted.Sprintf(format, a...) }
func Heading(format string, a ...any) string { return clrHeading.Sprintf(format, a...) }

// Severity colors a severity label the way status lines show it.
func Severity(sev string) string {
	switch sev {
	case "error":
		return Error("%-7s", sev)
	case "warning":
		return Warn("%-7s", sev)
	default:
		return Muted("%-7s", sev)
	}
}

var (
	swatchStyle = lipgloss.NewStyle().Padding(0, 1)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Swatch renders a color name on its own background. Malformed values are
// flagged instead of painted.
func Swatch(c model.Color, width int) string {
	label := swatchStyle.Width(width + 2)
	if !palette.IsHex(c.Value) {
		return label.Render(c.Name) + " " + badStyle.Render(fmt.Sprintf("%q invalid", c.Value))
	}
	label = label.
		Background(lipgloss.Color(c.Value)).
		Foreground(lipgloss.Color(palette.ContrastText(c.Value)))
	return label.Render(c.Name) + " " + valueStyle.Render(c.Value)
}

// Palette renders one swatch per line under a title.
func Palette(title string, p model.Palette) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	if p.Len() == 0 {
		b.WriteString(valueStyle.Render("(no colors)"))
		b.WriteString("\n")
		return b.String()
	}

	width := 0
	for _, name := range p.Names() {
		width = max(width, lipgloss.Width(name))
	}
	for _, c := range p.Entries() {
		b.WriteString(Swatch(c, width))
		b.WriteString("\n")
	}
	return b.String()
}

// List renders a titled bullet list.
func List(title string, items []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(valueStyle.Render("(none)"))
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
