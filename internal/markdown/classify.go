package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineRule is one entry of the classification table. match returns the
// classified block and true when the line belongs to this rule.
type lineRule struct {
	name  string
	kind  Kind
	match func(line string) (Block, bool)
}

// Rules are evaluated top to bottom and the first match wins. A line of
// dashes must hit the rule entry before the bullet entry sees it.
var lineRules = []lineRule{
	{name: "heading3", kind: Heading3, match: headingRule("### ", Heading3)},
	{name: "heading2", kind: Heading2, match: headingRule("## ", Heading2)},
	{name: "heading1", kind: Heading1, match: headingRule("# ", Heading1)},
	{name: "rule", kind: Rule, match: matchRule},
	{name: "unordered_item", kind: UnorderedItem, match: matchUnordered},
	{name: "ordered_item", kind: OrderedItem, match: matchOrdered},
	{name: "spacer", kind: Spacer, match: matchSpacer},
	{name: "paragraph", kind: Paragraph, match: matchParagraph},
}

// RuleInfo describes a classification rule for callers that want to
// inspect the priority order.
type RuleInfo struct {
	Name string
	Kind Kind
}

// Rules returns the classification rules in priority order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, len(lineRules))
	for i, r := range lineRules {
		out[i] = RuleInfo{Name: r.name, Kind: r.kind}
	}
	return out
}

// Classify splits source on newlines and returns one block per line in
// input order. Inline spans are not filled in; see Render.
func Classify(source string) []Block {
	if source == "" {
		return nil
	}
	lines := strings.Split(source, "\n")
	out := make([]Block, 0, len(lines))
	for _, line := range lines {
		out = append(out, classifyLine(line))
	}
	return out
}

func classifyLine(line string) Block {
	for _, r := range lineRules {
		if b, ok := r.match(line); ok {
			return b
		}
	}
	// unreachable: the paragraph rule accepts everything
	return Block{Kind: Paragraph, Text: line}
}

func headingRule(prefix string, kind Kind) func(string) (Block, bool) {
	return func(line string) (Block, bool) {
		if !strings.HasPrefix(line, prefix) {
			return Block{}, false
		}
		return Block{Kind: kind, Text: line[len(prefix):]}, true
	}
}

func matchRule(line string) (Block, bool) {
	t := strings.TrimSpace(line)
	if len(t) < 3 || strings.Trim(t, "-") != "" {
		return Block{}, false
	}
	return Block{Kind: Rule}, true
}

func matchUnordered(line string) (Block, bool) {
	indent := 0
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if !unicode.IsSpace(r) {
			break
		}
		indent++
		i += size
	}
	if i+1 >= len(line) || !isBullet(line[i]) || line[i+1] != ' ' {
		return Block{}, false
	}
	return Block{Kind: UnorderedItem, Text: line[i+2:], Indent: indent}, true
}

func isBullet(c byte) bool { return c == '-' || c == '*' || c == '+' }

func matchOrdered(line string) (Block, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(line[i:], ". ") {
		return Block{}, false
	}
	return Block{Kind: OrderedItem, Ordinal: line[:i], Text: line[i+2:]}, true
}

func matchSpacer(line string) (Block, bool) {
	if strings.TrimSpace(line) != "" {
		return Block{}, false
	}
	return Block{Kind: Spacer}, true
}

func matchParagraph(line string) (Block, bool) {
	return Block{Kind: Paragraph, Text: line}, true
}
