package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/pkg/api"
)

// AskFunc sends the whole conversation and returns the assistant's reply.
type AskFunc func(ctx context.Context, msgs []api.Message) (string, error)

// RunChat starts the interactive study chat. suggestions are offered in
// the help box; pressing their number asks them.
func RunChat(ctx context.Context, ask AskFunc, suggestions []string) error {
	m := newChatModel(ctx, ask, suggestions)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

var (
	youStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"})
	botStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

type chatModel struct {
	ctx         context.Context
	ask         AskFunc
	suggestions []string
	msgs        []api.Message
	vp          viewport.Model
	input       textarea.Model
	spin        spinner.Model
	waiting     bool
	err         error
	lastReply   time.Duration
	sentAt      time.Time
	width       int
	height      int
	help        *textModal
}

type replyMsg struct {
	text string
	err  error
}

func newChatModel(ctx context.Context, ask AskFunc, suggestions []string) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about protocols, drugs, assessments…"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := chatModel{
		ctx:         ctx,
		ask:         ask,
		suggestions: suggestions,
		vp:          viewport.New(80, 20),
		input:       ta,
		spin:        sp,
	}
	m.refresh()
	return m
}

func askCmd(ctx context.Context, ask AskFunc, msgs []api.Message) tea.Cmd {
	snapshot := append([]api.Message(nil), msgs...)
	return func() tea.Msg {
		text, err := ask(ctx, snapshot)
		return replyMsg{text: text, err: err}
	}
}

// send appends q as a user message and starts the request.
func (m chatModel) send(q string) (chatModel, tea.Cmd) {
	q = strings.TrimSpace(q)
	if q == "" || m.waiting {
		return m, nil
	}
	m.msgs = append(m.msgs, api.Message{Role: api.RoleUser, Content: q})
	m.waiting = true
	m.err = nil
	m.sentAt = time.Now()
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(askCmd(m.ctx, m.ask, m.msgs), m.spin.Tick)
}

func (m chatModel) Init() tea.Cmd { return textarea.Blink }

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		m.waiting = false
		m.lastReply = time.Since(m.sentAt).Round(100 * time.Millisecond)
		if msg.err != nil {
			// Drop the unanswered question so the conversation stays valid.
			m.msgs = m.msgs[:len(m.msgs)-1]
			m.err = msg.err
		} else {
			m.msgs = append(m.msgs, api.Message{Role: api.RoleAssistant, Content: msg.text})
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.vp.Height = max(3, msg.Height-m.input.Height()-2)
		if m.help != nil {
			m.help.resizeForTerm(msg.Width, msg.Height)
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.help != nil {
			key := msg.String()
			switch {
			case key == "ctrl+c":
				return m, tea.Quit
			case key == "esc" || key == "ctrl+g":
				m.help = nil
				return m, nil
			case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
				i := int(key[0] - '1')
				if i < len(m.suggestions) {
					m.help = nil
					return m.send(m.suggestions[i])
				}
				return m, nil
			}
			return m, m.help.update(msg)
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+g":
			m.help = newTextModal(m.helpText(), m.width, m.height)
			return m, nil
		case "enter":
			return m.send(m.input.Value())
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *chatModel) refresh() {
	th := markdown.DefaultTheme(max(20, m.vp.Width-2))
	var b strings.Builder
	if len(m.msgs) == 0 {
		b.WriteString(faintStyle.Render("Ask a question, or press ctrl+g for suggestions."))
		b.WriteString("\n")
	}
	for _, msg := range m.msgs {
		if msg.Role == api.RoleUser {
			b.WriteString(youStyle.Render("You") + "\n")
			b.WriteString(lipgloss.NewStyle().Width(th.Width).Render(msg.Content))
		} else {
			b.WriteString(botStyle.Render("Assistant") + "\n")
			b.WriteString(markdown.RenderANSI(markdown.Render(msg.Content), th))
		}
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	m.vp.SetContent(b.String())
	m.vp.GotoBottom()
}

func (m chatModel) helpText() string {
	var b strings.Builder
	b.WriteString(botStyle.Render("Suggested questions") + "\n\n")
	for i, s := range m.suggestions {
		if i >= 9 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\n" + faintStyle.Render("1-9 ask • esc close • enter send • pgup/pgdown scroll • ctrl+c quit"))
	return b.String()
}

func (m chatModel) status() string {
	switch {
	case m.waiting:
		return m.spin.View() + " Thinking…"
	case m.lastReply > 0:
		return faintStyle.Render(fmt.Sprintf("%d messages • last reply %s • ctrl+g help", len(m.msgs), m.lastReply))
	default:
		return faintStyle.Render("enter send • ctrl+g help • esc quit")
	}
}

func (m chatModel) View() string {
	base := m.vp.View() + "\n" + m.status() + "\n" + m.input.View()
	if m.help != nil {
		return renderOverlay(base, m.help.view(), m.width, m.height, m.help.width, m.help.height)
	}
	return base
}
