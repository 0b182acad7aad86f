package exam

import (
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\[\[(\d+)\]\]`)

// Placeholder is one [[n]] blank embedded in question text.
type Placeholder struct {
	Token    string // literal token as written, e.g. "[[2]]"
	Number   int    // the bracketed integer
	Position int    // zero-based slot in the comma-encoded answer value
}

// Placeholders extracts the distinct [[n]] tokens of a question text, ordered
// by first appearance. The appearance order defines the position index used
// to read and write the comma-encoded answer value; the bracketed number only
// identifies the token and need not be contiguous or start at 1.
func Placeholders(text string) []Placeholder {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		n, _ := strconv.Atoi(m[1])
		out = append(out, Placeholder{
			Token:    m[0],
			Number:   n,
			Position: len(out),
		})
	}
	return out
}

// BlankCount returns the number of distinct placeholders in a question text.
func BlankCount(text string) int {
	return len(Placeholders(text))
}
