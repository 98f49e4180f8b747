package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/medic/internal/assistant"
	"github.com/mithrel/medic/internal/present"
	"github.com/mithrel/medic/pkg/api"
)

const fakeReply = `## Airway\n- **open** it\n1. check ` + "`SpO2`"

// fakeMessagesAPI answers every Messages API call with fakeReply and
// counts the calls.
func fakeMessagesAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",`+
			`"content":[{"type":"text","text":"`+fakeReply+`"}],"stop_reason":"end_turn","stop_sequence":null,`+
			`"usage":{"input_tokens":3,"output_tokens":5}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// writeConfigTOML writes an isolated config that keeps history in a temp
// sqlite file and sends completions to baseURL.
func writeConfigTOML(t *testing.T, dir, baseURL string) string {
	t.Helper()
	cfg := filepath.Join(dir, "config.toml")
	content := `data_dir = "` + filepath.ToSlash(dir) + `"
db_url = "sqlite://` + filepath.ToSlash(filepath.Join(dir, "medic.db")) + `"

[llm]
api_key = "test-key"
base_url = "` + baseURL + `/"
max_retries = 0

[keys]
provider = "config"
`
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))
	return cfg
}

type testEnv struct {
	cfg   string
	calls *atomic.Int32
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	srv, calls := fakeMessagesAPI(t)
	return testEnv{cfg: writeConfigTOML(t, dir, srv.URL), calls: calls}
}

// run executes the root command with args and returns stdout and stderr.
func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRenderModes(t *testing.T) {
	env := newTestEnv(t)
	src := "# Title\n- **bold** and `code`\n<script>x</script>\n"

	out, _, err := env.run(t, src, "render", "-o", "html", "--class", "doc")
	require.NoError(t, err)
	assert.Contains(t, out, `class="md doc"`)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "&lt;script&gt;")

	out, _, err = env.run(t, src, "render", "-o", "plain")
	require.NoError(t, err)
	assert.Equal(t, "Title\nbold and code\n<script>x</script>\n", out)

	out, _, err = env.run(t, src, "render", "-o", "json")
	require.NoError(t, err)
	var doc struct {
		Blocks []struct {
			Kind string `json:"kind"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Blocks, 4)
	assert.Equal(t, "heading1", doc.Blocks[0].Kind)
	assert.Equal(t, "spacer", doc.Blocks[3].Kind)

	out, _, err = env.run(t, src, "render", "--outline")
	require.NoError(t, err)
	assert.Contains(t, out, `"text":"Title"`)
}

func TestRenderFileAndBadMode(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("---\n"), 0o600))

	out, _, err := env.run(t, "", "render", path, "-o", "ndjson")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind":"rule"`)

	_, _, err = env.run(t, "", "render", path, "-o", "fancy")
	assert.EqualError(t, err, "invalid --output: fancy")

	_, _, err = env.run(t, "", "render", path, "-o", "tui")
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	env := newTestEnv(t)
	out, _, err := env.run(t, "", "topics", "epi", "-n", "3", "-o", "json")
	require.NoError(t, err)
	var topics []api.Topic
	require.NoError(t, json.Unmarshal([]byte(out), &topics))
	assert.NotEmpty(t, topics)
	assert.LessOrEqual(t, len(topics), 3)

	out, _, err = env.run(t, "", "topics", "epi", "--show", "-o", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, topics[0].Title)

	_, _, err = env.run(t, "", "topics", "zzzzqqqq", "--show")
	assert.Error(t, err)
}

func TestChatRecordsHistory(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "", "chat", "what", "is", "the", "epi", "dose?", "-o", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "open it")
	assert.EqualValues(t, 1, env.calls.Load())

	out, _, err = env.run(t, "", "history", "list", "-o", "json")
	require.NoError(t, err)
	var hist api.HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	require.Len(t, hist.Exchanges, 1)
	e := hist.Exchanges[0]
	assert.Equal(t, api.KindChat, e.Kind)
	assert.Equal(t, "what is the epi dose?", e.Title)

	out, _, err = env.run(t, "", "history", "show", e.ID, "-o", "json")
	require.NoError(t, err)
	var got api.Exchange
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, e.ID, got.ID)
	assert.Contains(t, got.Reply, "## Airway")

	out, _, err = env.run(t, "", "history", "delete", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+e.ID+"\n", out)

	_, _, err = env.run(t, "", "history", "show", e.ID)
	assert.Error(t, err)
}

func TestChatFromStdin(t *testing.T) {
	env := newTestEnv(t)
	out, _, err := env.run(t, "how do I size an OPA?\n", "chat", "-o", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>open</strong>")
}

func TestAnalyzeCachesTranscript(t *testing.T) {
	env := newTestEnv(t)
	transcript := "Arrived on scene, 54M chest pain.\nGave aspirin 324 mg."

	out, errOut, err := env.run(t, transcript, "analyze", "-", "-o", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Airway")
	assert.NotContains(t, errOut, "cached")

	out, errOut, err = env.run(t, transcript+"\n\n", "analyze", "-o", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Airway")
	assert.Contains(t, errOut, "(cached analysis")
	assert.EqualValues(t, 1, env.calls.Load())

	out, _, err = env.run(t, "", "history", "list", "--kind", "encounter", "-o", "plain", "--noheaders")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "Arrived on scene, 54M chest pain.")
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run(t, "   \n", "analyze", "-")
	require.Error(t, err)
	assert.ErrorIs(t, err, assistant.ErrEmptyTranscript)
	assert.EqualValues(t, 0, env.calls.Load())
}

func TestHistoryListAllStreams(t *testing.T) {
	env := newTestEnv(t)
	for _, q := range []string{"one", "two", "three"} {
		_, _, err := env.run(t, "", "chat", q, "-o", "plain")
		require.NoError(t, err)
	}

	out, _, err := env.run(t, "", "history", "list", "--all", "-n", "2", "-o", "json")
	require.NoError(t, err)
	var items []api.Exchange
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "three", items[0].Title)
	assert.Equal(t, "one", items[2].Title)

	out, _, err = env.run(t, "", "history", "list", "--all", "-n", "2", "-o", "ndjson")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	_, _, err = env.run(t, "", "history", "list", "--kind", "note")
	assert.EqualError(t, err, "invalid --kind: note")

	out, _, err = env.run(t, "", "history", "list", "--until", "1d", "-o", "json")
	require.NoError(t, err)
	var hist api.HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Empty(t, hist.Exchanges)

	_, _, err = env.run(t, "", "history", "list", "--since", "someday")
	assert.ErrorContains(t, err, "invalid since")
}

type pagedStore struct {
	pages map[string][]api.Exchange
	next  map[string]string
	calls int
}

func (p *pagedStore) List(_ context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error) {
	p.calls++
	return p.pages[q.Cursor], api.Page{Next: p.next[q.Cursor]}, nil
}

func TestStreamHistoryStopsOnRepeatedCursor(t *testing.T) {
	store := &pagedStore{
		pages: map[string][]api.Exchange{
			"":  {{ID: "a"}},
			"c": {{ID: "b"}},
		},
		next: map[string]string{"": "c", "c": "c"},
	}
	var buf bytes.Buffer
	w := newExchangeStreamWriter(&buf, present.Options{Mode: present.ModeNDJSON})
	require.NoError(t, streamHistory(context.Background(), store, api.ListQuery{}, w))
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestConfigGenerateAndCheck(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "medic", "config.toml")

	out, _, err := env.run(t, "", "config", "generate", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, _, err = env.run(t, "", "config", "generate", "-o", path)
	assert.ErrorContains(t, err, "config already exists")

	out, _, err = env.run(t, "", "config", "generate", "-o", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "Config already up to date")

	out, _, err = env.run(t, "", "config", "generate", "-o", path, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "Backup: "+path+".bak")

	_, _, err = env.run(t, "", "config", "generate", "-o", path, "--overwrite", "--update")
	assert.Error(t, err)

	out, _, err = env.run(t, "", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "config ok ("+env.cfg+")")
}

func TestInvalidConfigRejected(t *testing.T) {
	env := newTestEnv(t)
	f, err := os.OpenFile(env.cfg, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("\n[render]\nwidth = -1\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, _, err = env.run(t, "", "config", "check")
	assert.ErrorContains(t, err, "render.width must not be negative")

	_, _, err = env.run(t, "# x\n", "render")
	assert.ErrorContains(t, err, "invalid config")
}

func TestKeyCommandsWithConfigProvider(t *testing.T) {
	env := newTestEnv(t)
	out, _, err := env.run(t, "", "key", "status")
	require.NoError(t, err)
	assert.Equal(t, "API key: set\n", out)

	_, _, err = env.run(t, "sk-new\n", "key", "set")
	assert.ErrorIs(t, err, errConfigKeys)
}

func TestCompletionScripts(t *testing.T) {
	env := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out, _, err := env.run(t, "", "completion", shell)
		require.NoError(t, err, shell)
		assert.Contains(t, out, "medic", shell)
	}
}
