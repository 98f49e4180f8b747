package format

import (
	"io"
	"text/tabwriter"
	"time"

	"github.com/mithrel/medic/pkg/api"
)

// PlainStreamWriter incrementally writes exchanges in the plain TSV format.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	headers     bool
	wroteHeader bool
	now         time.Time
}

// NewPlainStreamWriter creates a streaming plain writer. A non-zero now
// switches the created column to relative times.
func NewPlainStreamWriter(w io.Writer, headers bool, now time.Time) *PlainStreamWriter {
	return &PlainStreamWriter{
		tw:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
		now:     now,
	}
}

// WriteExchanges writes a batch of exchanges and flushes.
func (pw *PlainStreamWriter) WriteExchanges(items []api.Exchange) error {
	if pw.headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, headerLine)
		pw.wroteHeader = true
	}
	for _, e := range items {
		_, _ = io.WriteString(pw.tw, exchangeLine(e, pw.now))
	}
	return pw.tw.Flush()
}

// Close flushes remaining buffered output.
func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}
