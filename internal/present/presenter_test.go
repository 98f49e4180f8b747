package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/pkg/api"
)

func TestParseMode(t *testing.T) {
	for i, name := range Modes() {
		m, ok := ParseMode(strings.ToUpper(name))
		require.True(t, ok, name)
		assert.Equal(t, Mode(i), m)
		assert.Equal(t, name, m.String())
	}
	_, ok := ParseMode("yaml")
	assert.False(t, ok)
}

func TestRenderDocumentModes(t *testing.T) {
	src := "## Title\n- **bold** `code`"
	doc := markdown.Render(src)

	var plain bytes.Buffer
	require.NoError(t, RenderDocument(&plain, src, doc, Options{Mode: ModePlain}))
	assert.Equal(t, "Title\nbold code\n", plain.String())

	var js bytes.Buffer
	require.NoError(t, RenderDocument(&js, src, doc, Options{Mode: ModeJSON}))
	var decoded struct {
		Blocks []struct {
			Kind string `json:"kind"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded.Blocks, 2)

	var nd bytes.Buffer
	require.NoError(t, RenderDocument(&nd, src, doc, Options{Mode: ModeNDJSON}))
	assert.Equal(t, 2, strings.Count(nd.String(), "\n"))

	var html bytes.Buffer
	require.NoError(t, RenderDocument(&html, src, doc, Options{Mode: ModeHTML, Class: "x"}))
	assert.True(t, strings.HasPrefix(html.String(), `<div class="md x">`))

	var pretty bytes.Buffer
	require.NoError(t, RenderDocument(&pretty, src, doc, Options{Mode: ModePretty, Width: 40}))
	assert.Contains(t, pretty.String(), "Title")
	assert.Contains(t, pretty.String(), "•")

	var glam bytes.Buffer
	require.NoError(t, RenderDocument(&glam, src, doc, Options{Mode: ModeGlamour, Width: 40}))
	assert.Contains(t, glam.String(), "Title")
}

func TestRenderExchanges(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []api.Exchange{
		{ID: "a1", Kind: api.KindChat, Title: "epi\tdose", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b2", Kind: api.KindEncounter, Title: "chest pain", CreatedAt: now.Add(-72 * time.Hour)},
	}

	var plain bytes.Buffer
	require.NoError(t, RenderExchanges(&plain, items, api.Page{}, Options{Mode: ModePlain, Headers: true, Now: now}))
	lines := strings.Split(strings.TrimSpace(plain.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[1], `epi\tdose`)
	assert.Contains(t, lines[2], "3 days ago")

	var js bytes.Buffer
	require.NoError(t, RenderExchanges(&js, nil, api.Page{Next: "n"}, Options{Mode: ModeJSON}))
	assert.JSONEq(t, `{"exchanges":[],"page":{"next":"n"}}`, js.String())

	assert.ErrorIs(t, RenderExchanges(&js, items, api.Page{}, Options{Mode: ModeTUI}), ErrInteractive)
}

func TestRenderExchangePlain(t *testing.T) {
	e := api.Exchange{ID: "a1", Kind: api.KindEncounter, Prompt: "BP 80/40", Reply: "# Shock", Model: "m", CreatedAt: time.Now()}
	var buf bytes.Buffer
	require.NoError(t, RenderExchange(&buf, e, Options{Mode: ModePlain}))
	out := buf.String()
	assert.Contains(t, out, "id:      a1")
	assert.Contains(t, out, "model:   m")
	assert.Contains(t, out, "BP 80/40\n\n---\n\n# Shock")
}

func TestRenderExchangePrettyUsesEngine(t *testing.T) {
	e := api.Exchange{
		ID: "a1", Kind: api.KindChat, Title: "Epi dosing",
		Prompt: "epi dose?", Reply: "Give *0.3 mg* IM\n- check **pulse**\n  - recheck",
		CreatedAt: time.Now(),
	}
	var buf bytes.Buffer
	require.NoError(t, RenderExchange(&buf, e, Options{Mode: ModePretty, Width: 40}))
	out := buf.String()
	assert.Contains(t, out, "Epi dosing")
	assert.Contains(t, out, "> epi dose?")
	assert.Contains(t, out, "Give *0.3 mg* IM")
	assert.Contains(t, out, "• check pulse")
	assert.Contains(t, out, "  • recheck")
	assert.NotContains(t, out, "**")
}

func TestRenderTopics(t *testing.T) {
	topics := []api.Topic{
		{Title: "ASSESSMENT", Level: 2},
		{Title: "AVPU Scale", Section: "ASSESSMENT", Level: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderTopics(&buf, topics, Options{Mode: ModePlain}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "  AVPU Scale"))
}
