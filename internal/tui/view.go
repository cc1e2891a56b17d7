package tui

import (
	"html"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Bold(true)
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	linkStyle  = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("12"))
)

func renderView(m *Model) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("link-preview-card"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if body := renderCard(m); body != "" {
		width := m.width - 4
		if width > 76 {
			width = 76
		}
		if width < 20 {
			width = 20
		}
		b.WriteString(cardStyle.Width(width).Render(body))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("enter: preview • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func renderCard(m *Model) string {
	s := m.state
	if s.Loading {
		return m.spinner.View() + " " + m.texts.Loading
	}
	if s.URL == "" {
		return ""
	}

	lines := []string{titleStyle.Render(m.plain(m.texts.DisplayTitle(s)))}
	if desc := m.plain(s.Description); desc != "" {
		lines = append(lines, descStyle.Render(desc))
	}
	if image := oneLine(s.Image); image != "" {
		lines = append(lines, dimStyle.Render(m.texts.PreviewImage+": "+image))
	}
	if link := oneLine(s.Link); link != "" {
		lines = append(lines, "", linkStyle.Render(m.texts.VisitSite)+" "+dimStyle.Render(link))
	}
	return strings.Join(lines, "\n")
}

// plain strips markup and terminal control sequences from remote text
// before it reaches the terminal. Entities are decoded first so an encoded
// ESC cannot slip through.
func (m *Model) plain(s string) string {
	s = html.UnescapeString(m.sanitize.Sanitize(s))
	return strings.TrimSpace(stripControl(s, true))
}

// oneLine cleans a remote URL for display on a single line.
func oneLine(s string) string {
	return strings.TrimSpace(stripControl(s, false))
}

// stripControl drops escape sequences (CSI, OSC, DCS...) and then any stray
// control character. Newlines survive only when keepNewlines is set.
func stripControl(s string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' && keepNewlines {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(s))
}
