// Package markdown implements the small markdown subset used to display
// assistant replies: H1-H3 headings, rules, flat/indented bullet items,
// numbered items, paragraphs and blank spacers, with bold and inline code
// spans. Every function here is pure and total over its input.
package markdown

import (
	"fmt"
	"strings"
)

// Kind classifies a single source line.
type Kind int

const (
	Paragraph Kind = iota
	Heading1
	Heading2
	Heading3
	Rule
	UnorderedItem
	OrderedItem
	Spacer
)

var kindNames = [...]string{
	Paragraph:     "paragraph",
	Heading1:      "heading1",
	Heading2:      "heading2",
	Heading3:      "heading3",
	Rule:          "rule",
	UnorderedItem: "unordered_item",
	OrderedItem:   "ordered_item",
	Spacer:        "spacer",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText lets blocks encode with readable kinds.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("markdown: unknown block kind %q", b)
}

// HeadingLevel returns 1-3 for headings and 0 otherwise.
func (k Kind) HeadingLevel() int {
	switch k {
	case Heading1:
		return 1
	case Heading2:
		return 2
	case Heading3:
		return 3
	}
	return 0
}

// HasText reports whether blocks of this kind carry inline content.
func (k Kind) HasText() bool { return k != Rule && k != Spacer }

// Block is one rendering unit derived from exactly one source line.
type Block struct {
	Kind    Kind   `json:"kind"`
	Text    string `json:"text,omitempty"`
	Indent  int    `json:"indent,omitempty"`
	Ordinal string `json:"ordinal,omitempty"`
	Spans   []Span `json:"spans,omitempty"`
}

// Indented reports whether an unordered item sits below the top level.
// Only the binary distinction is rendered.
func (b Block) Indented() bool { return b.Kind == UnorderedItem && b.Indent > 0 }

// Style of an inline span.
type Style int

const (
	Plain Style = iota
	Bold
	Code
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Code:
		return "code"
	default:
		return "plain"
	}
}

func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Style) UnmarshalText(b []byte) error {
	switch string(b) {
	case "plain":
		*s = Plain
	case "bold":
		*s = Bold
	case "code":
		*s = Code
	default:
		return fmt.Errorf("markdown: unknown span style %q", b)
	}
	return nil
}

// Span is a fragment of inline content. Text holds the content with the
// delimiters removed. Bold spans additionally carry their content
// tokenized again in Children; Code content is never parsed.
type Span struct {
	Style    Style  `json:"style"`
	Text     string `json:"text"`
	Children []Span `json:"children,omitempty"`
}

// Visible returns the characters a reader sees for this span.
func (s Span) Visible() string {
	if s.Style != Bold || len(s.Children) == 0 {
		return s.Text
	}
	return visible(s.Children)
}

func visible(spans []Span) string {
	switch len(spans) {
	case 0:
		return ""
	case 1:
		return spans[0].Visible()
	}
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Visible())
	}
	return b.String()
}
