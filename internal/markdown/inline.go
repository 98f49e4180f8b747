package markdown

import "strings"

const (
	boldDelim = "**"
	codeDelim = '`'
)

// Tokenize splits one line of inline content into plain, bold and code
// spans. Matching is shortest-pair, left to right: of the earliest
// complete bold pair and the earliest complete code pair, the one that
// opens first wins. Unclosed delimiters stay literal. Single '*' and '_'
// are ordinary characters.
func Tokenize(line string) []Span {
	var spans []Span
	bold := pairScan{find: findBold}
	code := pairScan{find: findCode}
	pos := 0
	for pos < len(line) {
		bOpen, bClose, bOK := bold.next(line, pos)
		cOpen, cClose, cOK := code.next(line, pos)
		switch {
		case bOK && (!cOK || bOpen <= cOpen):
			spans = appendPlain(spans, line[pos:bOpen])
			inner := line[bOpen+len(boldDelim) : bClose]
			spans = append(spans, Span{Style: Bold, Text: inner, Children: Tokenize(inner)})
			pos = bClose + len(boldDelim)
		case cOK:
			spans = appendPlain(spans, line[pos:cOpen])
			spans = append(spans, Span{Style: Code, Text: line[cOpen+1 : cClose]})
			pos = cClose + 1
		default:
			spans = appendPlain(spans, line[pos:])
			pos = len(line)
		}
	}
	return spans
}

// pairScan remembers the last pair found for one delimiter so each byte of
// the line is searched once. A cached pair stays the earliest one while its
// opener has not been consumed. Once a search fails no suffix can hold a
// pair, so the scan is done for good.
type pairScan struct {
	find      func(string) (int, int, bool)
	open, end int
	cached    bool
	done      bool
}

func (p *pairScan) next(line string, pos int) (open, end int, ok bool) {
	if p.done {
		return 0, 0, false
	}
	if p.cached && p.open >= pos {
		return p.open, p.end, true
	}
	o, e, ok := p.find(line[pos:])
	if !ok {
		p.done = true
		return 0, 0, false
	}
	p.open, p.end, p.cached = pos+o, pos+e, true
	return p.open, p.end, true
}

func appendPlain(spans []Span, text string) []Span {
	if text == "" {
		return spans
	}
	return append(spans, Span{Style: Plain, Text: text})
}

// findBold locates the first "**" and the next "**" that starts after it.
// If the first opener has no closer then no later opener can have one
// either, so a single forward scan is enough.
func findBold(s string) (open, end int, ok bool) {
	open = strings.Index(s, boldDelim)
	if open < 0 {
		return 0, 0, false
	}
	rel := strings.Index(s[open+len(boldDelim):], boldDelim)
	if rel < 0 {
		return 0, 0, false
	}
	return open, open + len(boldDelim) + rel, true
}

func findCode(s string) (open, end int, ok bool) {
	open = strings.IndexByte(s, codeDelim)
	if open < 0 {
		return 0, 0, false
	}
	rel := strings.IndexByte(s[open+1:], codeDelim)
	if rel < 0 {
		return 0, 0, false
	}
	return open, open + 1 + rel, true
}
