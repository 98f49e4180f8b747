// Package llm sends prompts to a chat-completion API and returns the text
// of the reply.
package llm

import (
	"context"
	"errors"

	"github.com/mithrel/medic/pkg/api"
)

// ErrNoText is returned when the first content block of a reply is not text.
var ErrNoText = errors.New("unexpected response type")

type Request struct {
	System    string
	Messages  []api.Message
	MaxTokens int
}

type Response struct {
	Text  string
	Model string
}

// Completer produces one reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to Completer.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
