package markdown

import "strings"

// Document is the rendered form of a source text: its blocks in line
// order, each carrying tokenized spans.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Render classifies source and tokenizes the inline content of every
// block that has any.
func Render(source string) Document {
	blocks := Classify(source)
	for i := range blocks {
		if blocks[i].Kind.HasText() {
			blocks[i].Spans = Tokenize(blocks[i].Text)
		}
	}
	return Document{Blocks: blocks}
}

// Text returns the visible characters of the document, one line per block.
// Rules and spacers produce empty lines; markup consumed by classification
// and span delimiters is gone.
func (d Document) Text() string {
	lines := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		lines[i] = visible(b.Spans)
	}
	return strings.Join(lines, "\n")
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// Outline lists headings in document order. Line is zero-based.
func (d Document) Outline() []Heading {
	var out []Heading
	for i, b := range d.Blocks {
		lvl := b.Kind.HeadingLevel()
		if lvl == 0 {
			continue
		}
		out = append(out, Heading{Level: lvl, Text: strings.TrimSpace(visible(b.Spans)), Line: i})
	}
	return out
}

// Section returns the source lines under the heading at line until the
// next heading of the same or a higher level.
func (d Document) Section(line int) []Block {
	if line < 0 || line >= len(d.Blocks) {
		return nil
	}
	lvl := d.Blocks[line].Kind.HeadingLevel()
	if lvl == 0 {
		return nil
	}
	end := len(d.Blocks)
	for i := line + 1; i < len(d.Blocks); i++ {
		if l := d.Blocks[i].Kind.HeadingLevel(); l > 0 && l <= lvl {
			end = i
			break
		}
	}
	return d.Blocks[line:end]
}
