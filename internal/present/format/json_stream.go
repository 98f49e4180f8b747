package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/medic/pkg/api"
)

// JSONStreamWriter incrementally writes exchanges as a JSON array.
type JSONStreamWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

// NewJSONStreamWriter creates a streaming JSON writer.
func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	return &JSONStreamWriter{w: w, indent: indent}
}

// WriteExchanges writes a batch of exchanges.
func (jw *JSONStreamWriter) WriteExchanges(items []api.Exchange) error {
	for _, e := range items {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(e, "  ", "  ")
		} else {
			b, err = json.Marshal(e)
		}
		if err != nil {
			return err
		}
		sep := "["
		switch {
		case jw.wroteAny && jw.indent:
			sep = ",\n  "
		case jw.wroteAny:
			sep = ","
		case jw.indent:
			sep = "[\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close finishes the JSON array.
func (jw *JSONStreamWriter) Close() error {
	end := "]\n"
	switch {
	case !jw.wroteAny:
		end = "[]\n"
	case jw.indent:
		end = "\n]\n"
	}
	_, err := io.WriteString(jw.w, end)
	return err
}
