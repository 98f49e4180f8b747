package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/medic/pkg/api"
)

// NDJSONStreamWriter incrementally writes exchanges as NDJSON.
type NDJSONStreamWriter struct {
	enc *json.Encoder
}

func NewNDJSONStreamWriter(w io.Writer) *NDJSONStreamWriter {
	return &NDJSONStreamWriter{enc: json.NewEncoder(w)}
}

func (nw *NDJSONStreamWriter) WriteExchanges(items []api.Exchange) error {
	for _, e := range items {
		if err := nw.enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for NDJSON output.
func (nw *NDJSONStreamWriter) Close() error { return nil }
