package markdown

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the terminal styles used by RenderANSI.
type Theme struct {
	Width    int
	Heading1 lipgloss.Style
	Heading2 lipgloss.Style
	Heading3 lipgloss.Style
	Bold     lipgloss.Style
	Code     lipgloss.Style
	Bullet   lipgloss.Style
	Ordinal  lipgloss.Style
	Rule     lipgloss.Style
}

// DefaultTheme mirrors the red-accented palette of the web page.
func DefaultTheme(width int) Theme {
	if width <= 0 {
		width = 80
	}
	accent := lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#F87171"}
	return Theme{
		Width:    width,
		Heading1: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accent),
		Heading2: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Heading3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"}),
		Bold:     lipgloss.NewStyle().Bold(true),
		Code:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FCA5A5"}).Background(lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#1E293B"}),
		Bullet:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#F87171", Dark: "#F87171"}),
		Ordinal:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Rule:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderANSI renders doc for a terminal, one output line per block.
func RenderANSI(doc Document, th Theme) string {
	lines := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		lines = append(lines, ansiBlock(b, th))
	}
	return strings.Join(lines, "\n")
}

func ansiBlock(b Block, th Theme) string {
	switch b.Kind {
	case Heading1:
		return th.Heading1.Render(ansiSpans(b.Spans, th))
	case Heading2:
		return th.Heading2.Render(ansiSpans(b.Spans, th))
	case Heading3:
		return th.Heading3.Render(ansiSpans(b.Spans, th))
	case Rule:
		w := th.Width
		if w <= 0 {
			w = 80
		}
		return th.Rule.Render(strings.Repeat("─", w))
	case UnorderedItem:
		pad := ""
		if b.Indented() {
			pad = "  "
		}
		return pad + th.Bullet.Render("•") + " " + ansiSpans(b.Spans, th)
	case OrderedItem:
		return th.Ordinal.Render(b.Ordinal+".") + " " + ansiSpans(b.Spans, th)
	case Spacer:
		return ""
	default:
		return ansiSpans(b.Spans, th)
	}
}

func ansiSpans(spans []Span, th Theme) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Style {
		case Bold:
			sb.WriteString(th.Bold.Render(ansiSpans(s.Children, th)))
		case Code:
			sb.WriteString(th.Code.Render(s.Text))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}
