package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// textModal is a bordered, scrollable box drawn over the main view.
type textModal struct {
	vp      viewport.Model
	width   int
	height  int
	padX    int
	padY    int
	box     lipglossv2.Style
	content string
}

func newTextModal(content string, termW, termH int) *textModal {
	m := &textModal{padX: 2, padY: 1}
	m.resizeForTerm(termW, termH)
	m.setContent(content)
	return m
}

// innerWidth is the text width available inside the border and padding.
func (m *textModal) innerWidth() int { return m.vp.Width }

func (m *textModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	// 60% width, or nearly full width if terminal is small (<80 cols)
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := int(float64(termH) * 0.7)
	if termH < 20 {
		h = termH - 2
	}
	if h < 10 {
		h = max(8, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("160"))

	innerW := max(10, w-2-m.padX*2)
	innerH := max(5, h-2-m.padY*2)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	m.vp.SetContent(m.content)
}

func (m *textModal) setContent(s string) {
	m.content = s
	m.vp.SetContent(s)
}

func (m *textModal) update(msg tea.Msg) tea.Cmd {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resizeForTerm(x.Width, x.Height)
		return nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd
	}
	return nil
}

func (m *textModal) view() string { return m.box.Render(m.vp.View()) }
