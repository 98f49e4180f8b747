// Package assistant implements the two operations the training assistant
// offers: study chat and encounter analysis.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mithrel/medic/internal/db"
	"github.com/mithrel/medic/internal/llm"
	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/internal/prompts"
	"github.com/mithrel/medic/pkg/api"
)

var (
	ErrNoMessages      = errors.New("messages are required")
	ErrBadRole         = errors.New("unknown message role")
	ErrEmptyTranscript = errors.New("no transcript provided")
)

const (
	DefaultChatMaxTokens    = 2048
	DefaultAnalyzeMaxTokens = 4096
)

type Options struct {
	ChatMaxTokens    int
	AnalyzeMaxTokens int
	// Cache reuses a recorded analysis of an identical transcript.
	Cache bool
	// History records every exchange in the store.
	History bool
}

// Service answers chat questions and analyzes transcripts. The store is
// optional; without one nothing is cached or recorded.
type Service struct {
	llm   llm.Completer
	store db.Store
	opts  Options
	log   *log.Logger
	now   func() time.Time
}

func New(c llm.Completer, store db.Store, opts Options, logger *log.Logger) *Service {
	if opts.ChatMaxTokens <= 0 {
		opts.ChatMaxTokens = DefaultChatMaxTokens
	}
	if opts.AnalyzeMaxTokens <= 0 {
		opts.AnalyzeMaxTokens = DefaultAnalyzeMaxTokens
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{llm: c, store: store, opts: opts, log: logger, now: time.Now}
}

type ChatResult struct {
	ID    string
	Reply string
	Model string
	Doc   markdown.Document
}

type AnalyzeResult struct {
	ID       string
	Analysis string
	Model    string
	Cached   bool
	Doc      markdown.Document
}

// Chat sends the conversation with the knowledge-base prompt and returns
// the assistant's reply.
func (s *Service) Chat(ctx context.Context, msgs []api.Message) (ChatResult, error) {
	if len(msgs) == 0 {
		return ChatResult{}, ErrNoMessages
	}
	var last string
	for i, m := range msgs {
		if !m.Role.Valid() {
			return ChatResult{}, fmt.Errorf("message %d: %w %q", i, ErrBadRole, m.Role)
		}
		if m.Role == api.RoleUser {
			last = m.Content
		}
	}

	resp, err := s.llm.Complete(ctx, llm.Request{
		System:    prompts.ChatSystem(),
		Messages:  msgs,
		MaxTokens: s.opts.ChatMaxTokens,
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: %w", err)
	}

	res := ChatResult{Reply: resp.Text, Model: resp.Model, Doc: markdown.Render(resp.Text)}
	res.ID = s.record(ctx, api.KindChat, last, resp)
	return res, nil
}

// Analyze reviews an encounter transcript against the protocols. An
// identical transcript analyzed before is served from the store when
// caching is on.
func (s *Service) Analyze(ctx context.Context, transcript string) (AnalyzeResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return AnalyzeResult{}, ErrEmptyTranscript
	}

	if s.opts.Cache && s.store != nil {
		hash := api.ContentHash(api.KindEncounter, transcript)
		prev, err := s.store.FindByHash(ctx, api.KindEncounter, hash)
		switch {
		case err == nil:
			s.log.Printf("assistant: cache hit id=%s", prev.ID)
			return AnalyzeResult{
				ID:       prev.ID,
				Analysis: prev.Reply,
				Model:    prev.Model,
				Cached:   true,
				Doc:      markdown.Render(prev.Reply),
			}, nil
		case !errors.Is(err, db.ErrNotFound):
			s.log.Printf("assistant: cache lookup failed: %v", err)
		}
	}

	resp, err := s.llm.Complete(ctx, llm.Request{
		System:    prompts.EncounterSystem(),
		Messages:  []api.Message{{Role: api.RoleUser, Content: prompts.EncounterMessage(transcript)}},
		MaxTokens: s.opts.AnalyzeMaxTokens,
	})
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("analyze: %w", err)
	}

	res := AnalyzeResult{Analysis: resp.Text, Model: resp.Model, Doc: markdown.Render(resp.Text)}
	res.ID = s.record(ctx, api.KindEncounter, transcript, resp)
	return res, nil
}

// record stores the exchange when history is on. A failure is logged and
// the caller still gets its reply.
func (s *Service) record(ctx context.Context, kind api.Kind, prompt string, resp llm.Response) string {
	if !s.opts.History || s.store == nil {
		return ""
	}
	e := api.Exchange{
		ID:        api.NewID(),
		Kind:      kind,
		Title:     api.Title(prompt),
		Prompt:    prompt,
		Reply:     resp.Text,
		Hash:      api.ContentHash(kind, prompt),
		Model:     resp.Model,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Record(ctx, e); err != nil {
		s.log.Printf("assistant: record %s failed: %v", kind, err)
		return ""
	}
	s.log.Printf("assistant: recorded %s id=%s", kind, e.ID)
	return e.ID
}
