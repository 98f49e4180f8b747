package api

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID generates a sortable-ish ID from the current time and randomness.
func NewID() string {
	now := time.Now().UnixNano()
	ts := strconv.FormatInt(now, 36)
	var buf [6]byte
	_, _ = rand.Read(buf[:])
	return ts + "-" + hex.EncodeToString(buf[:])
}
