// Package textwrap enforces a maximum line width on plain text, preferring to
// break at word boundaries. The transform is pure, total, and idempotent:
// re-wrapping already-wrapped text at the same limit yields the same text,
// which allows callers to feed its output back in on every edit.
package textwrap

import (
	"strings"
	"unicode"
)

// DefaultLimit is the column limit used by the note editor.
const DefaultLimit = 80

// WrapDefault wraps s at DefaultLimit columns.
func WrapDefault(s string) string {
	return Wrap(s, DefaultLimit)
}

// Wrap rewraps every newline-delimited line of s so that no line exceeds
// limit characters. Each overlong line breaks at the last space at or before
// column limit; a run with no such space is hard-broken at exactly limit
// characters. Leading whitespace on a continuation is stripped before it is
// measured again. Empty lines survive as zero-length segments. A line of
// exactly limit characters is left untouched.
func Wrap(s string, limit int) string {
	if limit <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		r := []rune(line)
		for len(r) > limit {
			brk := lastSpace(r, limit)
			if brk == -1 {
				brk = limit
			}
			out = append(out, string(r[:brk]))
			r = trimLeadingSpace(r[brk:])
		}
		out = append(out, string(r))
	}

	return strings.Join(out, "\n")
}

// lastSpace returns the index of the last space at or before column max,
// or -1 when none exists there.
func lastSpace(r []rune, max int) int {
	for i := max; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

func trimLeadingSpace(r []rune) []rune {
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return r[i:]
}
