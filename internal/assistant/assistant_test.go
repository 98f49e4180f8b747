package assistant

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/medic/internal/db"
	"github.com/mithrel/medic/internal/llm"
	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/internal/prompts"
	"github.com/mithrel/medic/pkg/api"
)

type recorder struct {
	calls atomic.Int32
	last  llm.Request
	reply string
	err   error
}

func (r *recorder) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	r.calls.Add(1)
	r.last = req
	if r.err != nil {
		return llm.Response{}, r.err
	}
	return llm.Response{Text: r.reply, Model: "claude-test"}, nil
}

func newService(t *testing.T, c llm.Completer, opts Options) (*Service, db.Store) {
	t.Helper()
	store := db.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })
	return New(c, store, opts, nil), store
}

func TestChatValidation(t *testing.T) {
	rec := &recorder{reply: "ok"}
	svc, _ := newService(t, rec, Options{})

	_, err := svc.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoMessages)

	_, err = svc.Chat(context.Background(), []api.Message{{Role: "system", Content: "x"}})
	assert.ErrorIs(t, err, ErrBadRole)
	assert.Zero(t, rec.calls.Load())
}

func TestChatSendsSystemPromptAndRecords(t *testing.T) {
	rec := &recorder{reply: "## Dose\n- **0.3 mg** IM"}
	svc, store := newService(t, rec, Options{History: true})
	msgs := []api.Message{
		{Role: api.RoleUser, Content: "Epi dose?\nfor anaphylaxis"},
		{Role: api.RoleAssistant, Content: "Adult or peds?"},
		{Role: api.RoleUser, Content: "Adult"},
	}

	res, err := svc.Chat(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, rec.reply, res.Reply)
	assert.Equal(t, prompts.ChatSystem(), rec.last.System)
	assert.Equal(t, DefaultChatMaxTokens, rec.last.MaxTokens)
	assert.Equal(t, msgs, rec.last.Messages)
	require.Len(t, res.Doc.Blocks, 2)
	assert.Equal(t, markdown.Heading2, res.Doc.Blocks[0].Kind)

	require.NotEmpty(t, res.ID)
	e, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, api.KindChat, e.Kind)
	assert.Equal(t, "Adult", e.Title)
	assert.Equal(t, "claude-test", e.Model)
}

func TestChatCompleterError(t *testing.T) {
	boom := errors.New("upstream down")
	svc, store := newService(t, &recorder{err: boom}, Options{History: true})
	_, err := svc.Chat(context.Background(), []api.Message{{Role: api.RoleUser, Content: "q"}})
	assert.ErrorIs(t, err, boom)

	list, _, err := store.List(context.Background(), api.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	rec := &recorder{}
	svc, _ := newService(t, rec, Options{})
	_, err := svc.Analyze(context.Background(), " \n\t ")
	require.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Equal(t, "no transcript provided", err.Error())
	assert.Zero(t, rec.calls.Load())
}

func TestAnalyzeBuildsRequest(t *testing.T) {
	rec := &recorder{reply: "# Encounter Summary\nStable."}
	svc, _ := newService(t, rec, Options{AnalyzeMaxTokens: 1000})

	res, err := svc.Analyze(context.Background(), "  Pt found supine.  ")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Empty(t, res.ID)
	assert.Equal(t, prompts.EncounterSystem(), rec.last.System)
	assert.Equal(t, 1000, rec.last.MaxTokens)
	require.Len(t, rec.last.Messages, 1)
	assert.Equal(t, api.RoleUser, rec.last.Messages[0].Role)
	assert.True(t, strings.HasSuffix(rec.last.Messages[0].Content, "\n\nPt found supine."))
}

func TestAnalyzeCacheHitSkipsCompleter(t *testing.T) {
	rec := &recorder{reply: "analysis one"}
	svc, _ := newService(t, rec, Options{Cache: true, History: true})
	ctx := context.Background()

	first, err := svc.Analyze(ctx, "BP 90/60, HR 120")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	rec.reply = "analysis two"
	second, err := svc.Analyze(ctx, "\r\nBP 90/60, HR 120\r\n")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "analysis one", second.Analysis)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, rec.calls.Load())
}

func TestAnalyzeCacheDisabled(t *testing.T) {
	rec := &recorder{reply: "fresh"}
	svc, _ := newService(t, rec, Options{History: true})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := svc.Analyze(ctx, "same transcript")
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}
	assert.EqualValues(t, 2, rec.calls.Load())
}

type failingStore struct{ db.Store }

func (failingStore) Record(context.Context, api.Exchange) error { return errors.New("disk full") }

func TestRecordFailureDoesNotFailRequest(t *testing.T) {
	store := failingStore{db.NewMemStore()}
	svc := New(llm.Func(func(context.Context, llm.Request) (llm.Response, error) {
		return llm.Response{Text: "fine"}, nil
	}), store, Options{History: true}, nil)
	svc.now = func() time.Time { return time.Unix(0, 0) }

	res, err := svc.Chat(context.Background(), []api.Message{{Role: api.RoleUser, Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Reply)
	assert.Empty(t, res.ID)
}

func TestWithoutStore(t *testing.T) {
	svc := New(&recorder{reply: "r"}, nil, Options{Cache: true, History: true}, nil)
	res, err := svc.Analyze(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "r", res.Analysis)
}
