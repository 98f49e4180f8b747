package present

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/internal/present/format"
	"github.com/mithrel/medic/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeHTML
	ModeGlamour
	ModeTUI
)

var modeNames = []string{"plain", "pretty", "json", "ndjson", "html", "glamour", "tui"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Modes lists every output mode name, for flag help and completion.
func Modes() []string { return append([]string(nil), modeNames...) }

// ParseMode parses a mode name such as "plain", "pretty" or "json".
func ParseMode(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return ModePretty, false
}

// ErrInteractive is returned for ModeTUI by renderers that only write to a
// stream; the caller runs the matching Bubble Tea program instead.
var ErrInteractive = errors.New("tui output is interactive")

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Width      int
	Class      string
	// Now makes history times relative; zero prints absolute times.
	Now time.Time
}

// RenderDocument writes a markdown document in the selected mode. source is
// the text doc was built from; glamour renders it directly.
func RenderDocument(w io.Writer, source string, doc markdown.Document, opts Options) error {
	switch opts.Mode {
	case ModePlain:
		return writeLine(w, doc.Text())
	case ModeJSON:
		return format.WriteJSON(w, doc, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, doc.Blocks)
	case ModeHTML:
		return writeLine(w, markdown.RenderHTML(doc, opts.Class))
	case ModeGlamour:
		return format.WriteGlamour(w, source, opts.Width)
	default:
		return writeLine(w, markdown.RenderANSI(doc, markdown.DefaultTheme(opts.Width)))
	}
}

// RenderExchanges renders a page of history.
func RenderExchanges(w io.Writer, items []api.Exchange, page api.Page, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		if items == nil {
			items = []api.Exchange{}
		}
		return format.WriteJSON(w, api.HistoryResponse{Exchanges: items, Page: page}, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, items)
	case ModeTUI:
		return ErrInteractive
	default:
		return format.WritePlainExchanges(w, items, opts.Headers, opts.Now)
	}
}

// RenderExchange renders one recorded exchange.
func RenderExchange(w io.Writer, e api.Exchange, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, e, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, []api.Exchange{e})
	case ModePlain:
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		return format.WritePlainExchange(w, e, now)
	case ModeHTML:
		return writeLine(w, markdown.RenderHTML(markdown.Render(e.Reply), opts.Class))
	case ModeGlamour:
		return format.WriteGlamourExchange(w, e, opts.Width)
	case ModeTUI:
		return ErrInteractive
	default:
		return format.WritePrettyExchange(w, e, opts.Width)
	}
}

// RenderTopics lists knowledge-base topics.
func RenderTopics(w io.Writer, topics []api.Topic, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		if topics == nil {
			topics = []api.Topic{}
		}
		return format.WriteJSON(w, topics, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, topics)
	default:
		return format.WritePlainTopics(w, topics)
	}
}

func writeLine(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
