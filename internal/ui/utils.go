package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the stdout width, or fallback when it is unknown.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// Callout boxes body under a bold title. width 0 sizes the box to its content.
func Callout(title, body string, border lipgloss.Color, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 0 {
		box = box.Width(width)
	}
	if title != "" {
		body = lipgloss.NewStyle().Bold(true).Foreground(border).Render(title) + "\n" + body
	}
	return box.Render(body)
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// WrapText breaks each line of text at word boundaries to fit width cells.
// Words longer than width stay on their own line.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) <= width {
			continue
		}
		var wrapped []string
		cur := ""
		for _, word := range strings.Fields(line) {
			if cur != "" && lipgloss.Width(cur)+1+lipgloss.Width(word) > width {
				wrapped = append(wrapped, cur)
				cur = ""
			}
			if cur == "" {
				cur = word
			} else {
				cur += " " + word
			}
		}
		lines[i] = strings.Join(append(wrapped, cur), "\n")
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
