package api

import "strings"

const maxTitleRunes = 80

// Title returns the first non-blank line of s with whitespace squashed,
// truncated to 80 runes. History listings use it as the exchange label.
func Title(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleRunes {
			line = string(r[:maxTitleRunes])
		}
		return line
	}
	return ""
}
