package report

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType selects the color and marker of a Box
type MessageType int

const (
	InfoMessage MessageType = iota
	SuccessMessage
	ErrorMessage
)

type boxTheme struct {
	color  lipgloss.Color
	marker string
}

var themes = map[MessageType]boxTheme{
	InfoMessage:    {color: "86", marker: "ℹ"},
	SuccessMessage: {color: "42", marker: "✓"},
	ErrorMessage:   {color: "196", marker: "✗"},
}

// Box is a rounded, colored summary panel: a marked title followed by
// indented lines.
type Box struct {
	theme boxTheme
	title string
	lines []string
	width int
}

// NewBox creates a box no wider than the terminal
func NewBox(messageType MessageType, title string) *Box {
	theme, ok := themes[messageType]
	if !ok {
		theme = themes[InfoMessage]
	}
	return &Box{theme: theme, title: title, width: terminalWidth() - 8}
}

// WithWidth overrides the maximum outer width
func (b *Box) WithWidth(width int) *Box {
	b.width = width
	return b
}

func (b *Box) AddLine(text string) *Box {
	b.lines = append(b.lines, text)
	return b
}

func (b *Box) AddKeyValue(key, value string) *Box {
	return b.AddLine(key + ": " + value)
}

// Render lays out the title and lines inside a rounded border
func (b *Box) Render() string {
	// border and padding take four columns, the marker indent two more
	contentWidth := b.width - 6
	if contentWidth < 10 {
		contentWidth = 10
	}

	accent := lipgloss.NewStyle().Foreground(b.theme.color)
	var body []string
	for i, line := range wrapText(b.title, contentWidth) {
		if i == 0 {
			body = append(body, accent.Bold(true).Render(b.theme.marker)+" "+line)
		} else {
			body = append(body, "  "+line)
		}
	}
	for _, line := range b.lines {
		for _, part := range wrapText(line, contentWidth) {
			body = append(body, "  "+part)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(b.theme.color).
		Padding(0, 1).
		Render(strings.Join(body, "\n"))
}

// terminalWidth returns the stdout terminal width, or 80 when stdout is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
