package format

import (
	"encoding/json"
	"io"
)

// WriteNDJSON writes each item as one JSON line.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
