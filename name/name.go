// Package name splits a bibtex author/editor field into individual names,
// each split into BibTeX's four name parts.
package name

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/ardelle-io/bibtex/diag"
	"github.com/ardelle-io/bibtex/texconv"
)

// Name is one BibTeX name, split into its four parts. Empty parts are the
// empty string, never absent.
type Name struct {
	First string
	Von   string
	Last  string
	Jr    string
}

// Parse splits value (a single author/editor field, post macro expansion)
// into an ordered sequence of names. Names are separated by the literal
// word "and" at brace-depth 0; "and" inside a brace group is
// not a separator.
func Parse(value string, pos token.Position, sink *diag.Sink) []Name {
	var names []Name
	for _, part := range splitNames(value) {
		names = append(names, parseOne(part, pos, sink))
	}
	return names
}

// splitNames breaks value on occurrences of the word "and" (case
// insensitive) that appear as a standalone whitespace-delimited token at
// brace-depth 0.
func splitNames(value string) []string {
	toks := splitWords(value)
	var names []string
	var cur []string
	for _, tk := range toks {
		if strings.EqualFold(tk, "and") {
			names = append(names, strings.Join(cur, " "))
			cur = cur[:0]
			continue
		}
		cur = append(cur, tk)
	}
	names = append(names, strings.Join(cur, " "))
	return names
}

func parseOne(value string, pos token.Position, sink *diag.Sink) Name {
	segs := splitTopLevel(value, ',')
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}

	switch {
	case len(segs) == 1:
		toks := classifyWords(segs[0])
		first, von, last := splitFirstVonLast(toks)
		return Name{First: first, Von: von, Last: last}

	case len(segs) == 2:
		von, last := splitVonLast(classifyWords(segs[0]))
		return Name{First: segs[1], Von: von, Last: last}

	case len(segs) == 3:
		von, last := splitVonLast(classifyWords(segs[0]))
		return Name{First: segs[2], Von: von, Last: last, Jr: segs[1]}

	default:
		if sink != nil {
			sink.Warningf(pos, "name %q has %d commas, expected at most 2", value, len(segs)-1)
		}
		von, last := splitVonLast(classifyWords(segs[0]))
		jr := strings.Join(segs[1:len(segs)-1], ", ")
		return Name{First: segs[len(segs)-1], Von: von, Last: last, Jr: jr}
	}
}

// caseKind is the case classification of a word token's first classifiable
// letter.
type caseKind int

const (
	caseless caseKind = iota
	upper
	lower
)

type word struct {
	text string
	kind caseKind
}

func classifyWords(segment string) []word {
	toks := splitWords(segment)
	words := make([]word, len(toks))
	for i, tk := range toks {
		words[i] = word{text: tk, kind: classify(tk)}
	}
	return words
}

func joinWords(ws []word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

// splitFirstVonLast implements the 0-comma "First von Last" partition: the leading run of upper/caseless tokens (never including the
// final token) is First; the longest run spanning the first through the
// last lower-classified token (excluding the final token) is von; the rest
// is Last. With no lower token at all, the last token alone is Last.
func splitFirstVonLast(tokens []word) (first, von, last string) {
	n := len(tokens)
	if n == 0 {
		return "", "", ""
	}
	if n == 1 {
		return "", "", tokens[0].text
	}

	firstLower := -1
	for i := 0; i < n-1; i++ {
		if tokens[i].kind == lower {
			firstLower = i
			break
		}
	}
	if firstLower == -1 {
		return joinWords(tokens[:n-1]), "", tokens[n-1].text
	}

	lastLower := firstLower
	for i := firstLower; i < n-1; i++ {
		if tokens[i].kind == lower {
			lastLower = i
		}
	}
	return joinWords(tokens[:firstLower]), joinWords(tokens[firstLower : lastLower+1]), joinWords(tokens[lastLower+1:])
}

// splitVonLast implements the pre-comma "von Last" partition used by the
// 1-, 2-, and >=3-comma forms: the leading run of
// lower-classified tokens is von, and everything else is Last. A prefix
// with no leading lower token has no von at all; a prefix that is lower
// throughout still leaves its final token for Last.
func splitVonLast(tokens []word) (von, last string) {
	n := len(tokens)
	if n == 0 {
		return "", ""
	}
	i := 0
	for i < n && tokens[i].kind == lower {
		i++
	}
	if i == 0 {
		return "", joinWords(tokens)
	}
	if i == n {
		i = n - 1
	}
	return joinWords(tokens[:i]), joinWords(tokens[i:])
}

// classify determines the case classification of tok's first classifiable
// letter. Characters inside a brace group at depth > 0 are
// skipped unless the group opens with a TeX control sequence that exposes
// a letter, in which case that letter's case is used and the rest of the
// group is skipped.
func classify(tok string) caseKind {
	rs := []rune(tok)
	i := 0
	for i < len(rs) {
		switch rs[i] {
		case '{':
			content, next := braceGroup(rs, i)
			if texconv.IsControlSequenceStart(content) {
				if r, ok := texconv.FirstLetter(content); ok {
					if isUpper(r) {
						return upper
					}
					if isLower(r) {
						return lower
					}
				}
			}
			i = next
		case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
			'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
			return upper
		case 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
			'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z':
			return lower
		default:
			i++
		}
	}
	return caseless
}

func isUpper(r rune) bool { return 'A' <= r && r <= 'Z' || unicode.IsUpper(r) }
func isLower(r rune) bool { return 'a' <= r && r <= 'z' || unicode.IsLower(r) }

// braceGroup returns the content between the '{' at rs[start] and its
// matching '}', plus the index just past that '}'. If unterminated, it
// returns the remainder of rs and len(rs).
func braceGroup(rs []rune, start int) (string, int) {
	depth := 0
	for i := start; i < len(rs); i++ {
		switch rs[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(rs[start+1 : i]), i + 1
			}
		}
	}
	return string(rs[start+1:]), len(rs)
}

// splitWords splits s on runs of whitespace at brace-depth 0, discarding
// empty tokens.
func splitWords(s string) []string {
	rs := []rune(s)
	var toks []string
	depth := 0
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			toks = append(toks, string(rs[start:end]))
		}
		start = -1
	}
	for i, r := range rs {
		switch {
		case r == '{':
			depth++
			if start == -1 {
				start = i
			}
		case r == '}':
			if depth > 0 {
				depth--
			}
			if start == -1 {
				start = i
			}
		case depth == 0 && isSpace(r):
			flush(i)
		default:
			if start == -1 {
				start = i
			}
		}
	}
	flush(len(rs))
	return toks
}

// splitTopLevel splits s on sep at brace-depth 0, keeping braces intact.
func splitTopLevel(s string, sep rune) []string {
	rs := []rune(s)
	depth := 0
	start := 0
	var parts []string
	for i, r := range rs {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, string(rs[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, string(rs[start:]))
	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
