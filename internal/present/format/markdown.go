package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/pkg/api"
)

var (
	exchangeMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	exchangePromptStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250"))
)

func glamourRenderer(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// WriteGlamour renders source with glamour's full markdown support.
func WriteGlamour(w io.Writer, source string, width int) error {
	r, err := glamourRenderer(width)
	if err != nil {
		return err
	}
	out, err := r.Render(source)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// WritePrettyExchange renders a recorded exchange for a terminal. The reply
// goes through the same engine that rendered it when it was first shown.
func WritePrettyExchange(w io.Writer, e api.Exchange, width int) error {
	th := markdown.DefaultTheme(width)
	ts := e.CreatedAt.Local().Format(time.RFC3339)
	var sb strings.Builder
	sb.WriteString(th.Heading1.Render(e.Title))
	sb.WriteString("\n")
	sb.WriteString(exchangeMetaStyle.Render(fmt.Sprintf("%s | %s | %s", e.ID, e.Kind, ts)))
	sb.WriteString("\n\n")
	for _, l := range strings.Split(strings.TrimSpace(e.Prompt), "\n") {
		sb.WriteString(exchangePromptStyle.Render("> " + l))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(markdown.RenderANSI(markdown.Render(strings.TrimSpace(e.Reply)), th))
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteGlamourExchange renders a recorded exchange as a glamour document.
func WriteGlamourExchange(w io.Writer, e api.Exchange, width int) error {
	ts := e.CreatedAt.Local().Format(time.RFC3339)
	md := fmt.Sprintf(`# %s

> **ID:** %s | **Kind:** %s | **Created:** %s

%s

---

%s
`, e.Title, e.ID, e.Kind, ts, quote(e.Prompt), strings.TrimSpace(e.Reply))
	return WriteGlamour(w, md, width)
}

func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
