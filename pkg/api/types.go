package api

import (
	"time"

	"github.com/mithrel/medic/internal/markdown"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the roles the completion API accepts.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Reply  string           `json:"reply"`
	HTML   string           `json:"html,omitempty"`
	Blocks []markdown.Block `json:"blocks,omitempty"`
}

type AnalyzeResponse struct {
	Analysis string           `json:"analysis"`
	HTML     string           `json:"html,omitempty"`
	Blocks   []markdown.Block `json:"blocks,omitempty"`
	Cached   bool             `json:"cached,omitempty"`
}

type RenderRequest struct {
	Content string `json:"content"`
	Class   string `json:"class,omitempty"`
}

type RenderResponse struct {
	HTML   string           `json:"html"`
	Blocks []markdown.Block `json:"blocks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Kind string

const (
	KindChat      Kind = "chat"
	KindEncounter Kind = "encounter"
)

// Exchange is one recorded prompt/reply pair.
type Exchange struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	Reply     string    `json:"reply"`
	Hash      string    `json:"hash"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListQuery pages through recorded exchanges, newest first. Since is
// inclusive and Until exclusive; zero times are unbounded.
type ListQuery struct {
	Kind   Kind      `json:"kind,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Cursor string    `json:"cursor,omitempty"`
	Since  time.Time `json:"since,omitzero"`
	Until  time.Time `json:"until,omitzero"`
}

// InRange reports whether t falls inside [Since, Until).
func (q ListQuery) InRange(t time.Time) bool {
	if !q.Since.IsZero() && t.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !t.Before(q.Until) {
		return false
	}
	return true
}

// Page carries the opaque cursor for the next page, empty on the last one.
type Page struct {
	Next string `json:"next,omitempty"`
}

type HistoryResponse struct {
	Exchanges []Exchange `json:"exchanges"`
	Page      Page       `json:"page"`
}

type Topic struct {
	Title   string `json:"title"`
	Section string `json:"section,omitempty"`
	Level   int    `json:"level"`
}
