package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML renders doc as an HTML fragment wrapped in a div of class
// "md" plus class. The class is passed through untouched; text is escaped
// by the serializer.
func RenderHTML(doc Document, class string) string {
	var buf bytes.Buffer
	// Render only fails on write errors, which bytes.Buffer never returns.
	_ = html.Render(&buf, Tree(doc, class))
	return buf.String()
}

// Tree builds the node tree RenderHTML serializes.
func Tree(doc Document, class string) *html.Node {
	root := element(atom.Div, "class", strings.TrimSpace("md "+class))
	for _, b := range doc.Blocks {
		root.AppendChild(blockNode(b))
	}
	return root
}

func blockNode(b Block) *html.Node {
	switch b.Kind {
	case Heading1:
		return withSpans(element(atom.H1), b.Spans)
	case Heading2:
		return withSpans(element(atom.H2), b.Spans)
	case Heading3:
		return withSpans(element(atom.H3), b.Spans)
	case Rule:
		return element(atom.Hr)
	case UnorderedItem:
		cls := "ul"
		if b.Indented() {
			cls = "ul indent"
		}
		li := element(atom.Li, "class", cls)
		marker := element(atom.Span, "class", "bullet")
		marker.AppendChild(textNode("•"))
		li.AppendChild(marker)
		li.AppendChild(withSpans(element(atom.Span), b.Spans))
		return li
	case OrderedItem:
		li := element(atom.Li, "class", "ol", "data-ordinal", b.Ordinal)
		marker := element(atom.Span, "class", "ordinal")
		marker.AppendChild(textNode(b.Ordinal + "."))
		li.AppendChild(marker)
		li.AppendChild(withSpans(element(atom.Span), b.Spans))
		return li
	case Spacer:
		return element(atom.Div, "class", "spacer")
	default:
		return withSpans(element(atom.P), b.Spans)
	}
}

func withSpans(n *html.Node, spans []Span) *html.Node {
	for _, s := range spans {
		n.AppendChild(spanNode(s))
	}
	return n
}

func spanNode(s Span) *html.Node {
	switch s.Style {
	case Bold:
		return withSpans(element(atom.Strong), s.Children)
	case Code:
		c := element(atom.Code)
		c.AppendChild(textNode(s.Text))
		return c
	default:
		return textNode(s.Text)
	}
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
