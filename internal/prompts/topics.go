package prompts

import (
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/pkg/api"
)

var (
	topicsOnce sync.Once
	topics     []api.Topic
	knowledge  markdown.Document
)

func loadTopics() {
	knowledge = markdown.Render(ChatSystem())
	section := ""
	for _, h := range knowledge.Outline() {
		switch h.Level {
		case 1, 2:
			section = h.Text
			topics = append(topics, api.Topic{Title: h.Text, Level: h.Level})
		case 3:
			topics = append(topics, api.Topic{Title: h.Text, Section: section, Level: h.Level})
		}
	}
}

// Topics lists the knowledge-base headings in prompt order. Subsections
// carry the title of their enclosing section.
func Topics() []api.Topic {
	topicsOnce.Do(loadTopics)
	return append([]api.Topic(nil), topics...)
}

// SearchTopics returns up to n topics whose titles fuzzy-match query, best
// first. An empty query returns every topic; n <= 0 means no limit.
func SearchTopics(query string, n int) []api.Topic {
	all := Topics()
	if query == "" {
		return limit(all, n)
	}
	titles := make([]string, len(all))
	for i, t := range all {
		titles[i] = t.Title
	}
	matches := fuzzy.Find(query, titles)
	if len(matches) == 0 {
		return nil
	}
	out := make([]api.Topic, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return limit(out, n)
}

// TopicBody returns the knowledge-base blocks under the first heading whose
// text equals title, heading included.
func TopicBody(title string) (markdown.Document, bool) {
	topicsOnce.Do(loadTopics)
	for _, h := range knowledge.Outline() {
		if h.Text == title {
			return markdown.Document{Blocks: knowledge.Section(h.Line)}, true
		}
	}
	return markdown.Document{}, false
}

func limit(in []api.Topic, n int) []api.Topic {
	if n <= 0 || len(in) <= n {
		return in
	}
	return in[:n]
}
