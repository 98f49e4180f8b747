package api

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// ContentHash returns a deterministic BLAKE3 hash of a prompt for the given
// kind. Surrounding whitespace and CRLF line endings do not change the hash,
// so a re-submitted transcript hits the same cache entry.
func ContentHash(kind Kind, prompt string) string {
	h := blake3.New()

	h.Write([]byte(kind))
	h.Write([]byte{0})

	prompt = strings.ReplaceAll(prompt, "\r\n", "\n")
	h.Write([]byte(strings.TrimSpace(prompt)))

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// Digest returns ContentHash of the exchange's kind and prompt.
func (e Exchange) Digest() string {
	return ContentHash(e.Kind, e.Prompt)
}
