// Package title implements BibTeX's "t" (title) case-folding format: lowercase outside brace-groups, preserving the first
// letter, punctuation-triggered capitals, and any brace-protected text.
package title

import (
	"go/token"
	"strings"

	"github.com/ardelle-io/bibtex/diag"
	"github.com/ardelle-io/bibtex/texconv"
)

// Case re-cases value under BibTeX title rules. pos anchors the one
// diagnostic raised along the way, an unterminated brace group; the texconv
// check for whether a brace group opens with a TeX control sequence reports
// nothing.
func Case(value string, pos token.Position, sink *diag.Sink) string {
	c := &caser{pos: pos, sink: sink}
	return c.run(value)
}

// caser carries the diagnostic context shared across one Case call and its
// recursive descents into "special" brace groups.
type caser struct {
	pos  token.Position
	sink *diag.Sink
}

func (c *caser) warnf(format string, args ...interface{}) {
	if c.sink != nil {
		c.sink.Warningf(c.pos, format, args...)
	}
}

// run walks value once, applying the title-casing state machine: the first
// character keeps its case, a sentence-ending punctuation mark followed by
// whitespace re-arms that rule for the next character, and everything else
// at brace-depth 0 is lowercased. Depth >= 1 content is preserved verbatim
// unless the group is a "special" (begins with a TeX control sequence), in
// which case the remainder of the group is recursively title-cased at
// depth 0.
func (c *caser) run(value string) string {
	rs := []rune(value)
	var sb strings.Builder
	keepCase := true
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case r == '{':
			content, next := c.braceGroup(rs, i)
			c.writeGroup(&sb, content)
			i = next
			keepCase = false
		case isSpace(r):
			sb.WriteRune(r)
			i++
		default:
			if keepCase {
				sb.WriteRune(r)
				keepCase = false
			} else if isASCIIUpper(r) {
				sb.WriteRune(r - 'A' + 'a')
			} else {
				sb.WriteRune(r)
			}
			if isSentencePunct(r) && i+1 < len(rs) && isSpace(rs[i+1]) {
				keepCase = true
			}
			i++
		}
	}
	return sb.String()
}

func (c *caser) writeGroup(sb *strings.Builder, content string) {
	sb.WriteByte('{')
	if texconv.IsControlSequenceStart(content) {
		cmd, sep, rest := splitControlWord(content)
		sb.WriteString(cmd)
		sb.WriteString(sep)
		sb.WriteString(c.run(rest))
	} else {
		sb.WriteString(content)
	}
	sb.WriteByte('}')
}

// splitControlWord separates the leading control sequence of content (a
// backslash plus either a run of ASCII letters or one non-letter
// character) from the text that follows, returning the trailing argument
// separator ('{}' or one space) verbatim so the caller can preserve it
// around the recursively cased remainder.
func splitControlWord(content string) (cmd, sep, rest string) {
	rs := []rune(content)
	if len(rs) == 0 || rs[0] != '\\' {
		return content, "", ""
	}
	i := 1
	if i < len(rs) && isASCIILetter(rs[i]) {
		for i < len(rs) && isASCIILetter(rs[i]) {
			i++
		}
	} else if i < len(rs) {
		i++
	}
	cmd = string(rs[:i])
	sepStart := i
	if i+1 < len(rs) && rs[i] == '{' && rs[i+1] == '}' {
		i += 2
	} else if i < len(rs) && rs[i] == ' ' {
		i++
	}
	sep = string(rs[sepStart:i])
	rest = string(rs[i:])
	return cmd, sep, rest
}

// braceGroup returns the content between the '{' at rs[start] and its
// matching '}', plus the index just past it. An unterminated group warns
// and returns the remainder of rs, mirroring texconv's translator.run.
func (c *caser) braceGroup(rs []rune, start int) (string, int) {
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
	c.warnf("brace group not terminated")
	return string(rs[start+1:]), len(rs)
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func isASCIILetter(r rune) bool { return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' }

func isASCIIUpper(r rune) bool { return 'A' <= r && r <= 'Z' }

func isSentencePunct(r rune) bool {
	switch r {
	case ':', '.', '?', '!':
		return true
	}
	return false
}
