// Package naming splits identifiers into words and renders them under a
// naming convention.
package naming

import (
	"slices"
	"strings"
)

// Identifier is an ordered list of word segments. The zero value has no
// segments.
type Identifier struct {
	segs     []string
	verbatim bool
}

// Segments returns a copy of the word segments.
func (id Identifier) Segments() []string {
	return slices.Clone(id.segs)
}

// Verbatim reports whether the identifier is passed through unchanged by
// Render: escaped identifiers, non-ASCII input, or input without any
// letter or digit.
func (id Identifier) Verbatim() bool { return id.verbatim }

func (id Identifier) String() string {
	return strings.Join(id.segs, "|")
}

// Segment splits s into words.
//
// Characters that are not ASCII letters or digits end the current word and
// are dropped. An uppercase letter following a lowercase letter or digit
// starts a word. A run of uppercase letters stays together until a
// lowercase letter follows it, at which point the last letter of the run
// starts the next word ("HTTPServer" -> "HTTP", "Server"). A run of exactly
// two letters starting with 'I' at the beginning of a word is an interface
// prefix and is not split ("IBufferMyBuffer" -> "IBuffer", "My", "Buffer").
func Segment(s string) Identifier {
	if passThrough(s) {
		return Identifier{segs: []string{s}, verbatim: true}
	}
	var segs []string
	for _, chunk := range strings.FieldsFunc(s, func(r rune) bool { return !isAlnum(byte(r)) }) {
		segs = appendWords(segs, chunk)
	}
	if len(segs) == 0 {
		return Identifier{segs: []string{s}, verbatim: true}
	}
	return Identifier{segs: segs}
}

// appendWords splits one alphanumeric chunk.
func appendWords(segs []string, chunk string) []string {
	start := 0
	for i := 1; i < len(chunk); i++ {
		prev, cur := chunk[i-1], chunk[i]
		switch {
		case isUpper(cur) && !isUpper(prev):
			segs = append(segs, chunk[start:i])
			start = i
		case isLower(cur) && isUpper(prev):
			runStart := i - 1
			for runStart > start && isUpper(chunk[runStart-1]) {
				runStart--
			}
			if i-runStart < 2 {
				continue
			}
			if runStart == start && i-runStart == 2 && chunk[start] == 'I' {
				continue
			}
			segs = append(segs, chunk[start:i-1])
			start = i - 1
		}
	}
	return append(segs, chunk[start:])
}

// passThrough reports identifiers that are never normalized: verbatim
// escapes, unicode escapes, and anything outside ASCII.
func passThrough(s string) bool {
	if strings.HasPrefix(s, "@") || strings.Contains(s, `\u`) || strings.Contains(s, `\U`) {
		return true
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isLower(c byte) bool { return 'a' <= c && c <= 'z' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
func isAlnum(c byte) bool { return isUpper(c) || isLower(c) || isDigit(c) }
