package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/medic/pkg/api"
)

var headerLine = "id\tkind\tcreated\ttitle\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// exchangeLine is one TSV row. Times are relative to now when now is set,
// RFC 3339 otherwise.
func exchangeLine(e api.Exchange, now time.Time) string {
	created := e.CreatedAt.UTC().Format(time.RFC3339)
	if !now.IsZero() {
		created = humanize.RelTime(e.CreatedAt, now, "ago", "from now")
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\n", esc(e.ID), e.Kind, created, esc(e.Title))
}

func WritePlainExchanges(w io.Writer, items []api.Exchange, headers bool, now time.Time) error {
	pw := NewPlainStreamWriter(w, headers, now)
	if err := pw.WriteExchanges(items); err != nil {
		return err
	}
	return pw.Close()
}

// WritePlainExchange writes one exchange as a short header block followed
// by the prompt and the reply.
func WritePlainExchange(w io.Writer, e api.Exchange, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "id:      %s\n", e.ID)
	fmt.Fprintf(&b, "kind:    %s\n", e.Kind)
	if e.Model != "" {
		fmt.Fprintf(&b, "model:   %s\n", e.Model)
	}
	fmt.Fprintf(&b, "created: %s (%s)\n", e.CreatedAt.Local().Format(time.RFC3339), humanize.RelTime(e.CreatedAt, now, "ago", "from now"))
	fmt.Fprintf(&b, "\n%s\n\n---\n\n%s\n", strings.TrimSpace(e.Prompt), strings.TrimSpace(e.Reply))
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePlainTopics lists topics, indenting subsections under their section.
func WritePlainTopics(w io.Writer, topics []api.Topic) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range topics {
		indent := ""
		if t.Level > 2 {
			indent = "  "
		}
		fmt.Fprintf(tw, "%s%s\t%s\n", indent, t.Title, t.Section)
	}
	return tw.Flush()
}
