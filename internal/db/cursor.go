package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mithrel/medic/pkg/api"
)

type cursorToken struct {
	ts int64
	id string
}

func parseCursorToken(s string) (cursorToken, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "|", 2)
	if len(parts) != 2 {
		return cursorToken{}, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return cursorToken{}, false
	}
	id := strings.TrimSpace(parts[1])
	if id == "" {
		return cursorToken{}, false
	}
	return cursorToken{ts: ts, id: id}, true
}

func encodeCursorToken(e api.Exchange) string {
	return fmt.Sprintf("%d|%s", e.CreatedAt.UnixNano(), e.ID)
}

// before reports whether e sorts after the cursor in newest-first order.
func (c cursorToken) before(e api.Exchange) bool {
	ts := e.CreatedAt.UnixNano()
	return ts < c.ts || (ts == c.ts && e.ID < c.id)
}

func fromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
