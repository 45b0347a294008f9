// Package scanner implements a lexer for bibtex .bib source text. It takes a []byte source which is then tokenized through repeated
// calls to Scan, with SkipComment consuming the inter-entry free text that
// the grammar calls a "comment".
package scanner

import (
	"fmt"
	gotok "go/token"
	"strings"

	"github.com/ardelle-io/bibtex/token"
)

const eof = -1

// ErrorHandler is called for every lexical error the scanner detects. pos is
// the position of the offending byte.
type ErrorHandler func(pos gotok.Position, msg string)

// Scanner holds the lexer's state while tokenizing one file. It must be
// initialized with Init before use.
type Scanner struct {
	file *gotok.File
	src  []byte
	err  ErrorHandler

	ch       rune
	offset   int
	rdOffset int
	prev     token.Token // previous non-whitespace token, for brace disambiguation

	ErrorCount int
}

// Init prepares s to scan src, whose size must match file.Size(). Init
// panics if the sizes disagree, mirroring the invariant go/scanner relies
// on for a *gotok.File.
func (s *Scanner) Init(file *gotok.File, src []byte, err ErrorHandler) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("bibtex/scanner: file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}
	s.file = file
	s.src = src
	s.err = err
	s.ch = ' '
	s.offset = 0
	s.rdOffset = 0
	s.prev = token.Illegal
	s.ErrorCount = 0
	s.next()
}

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		ch := rune(s.src[s.rdOffset])
		if ch == 0 {
			s.error(s.offset, "illegal character NUL")
		}
		s.rdOffset++
		s.ch = ch
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		s.ch = eof
	}
}

func (s *Scanner) error(offs int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(offs)), msg)
	}
	s.ErrorCount++
}

func (s *Scanner) errorf(offs int, format string, args ...interface{}) {
	s.error(offs, fmt.Sprintf(format, args...))
}

func (s *Scanner) skipWhitespace() {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
		s.next()
	}
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

// isIdentChar reports whether ch may appear in a bibtex identifier: it must
// be printable ASCII and not one of the characters the grammar reserves as
// delimiters.
func isIdentChar(ch rune) bool {
	if ch < 0x20 || ch > 0x7f {
		return false
	}
	switch ch {
	case ' ', '\t', '"', '#', '%', '\'', '(', ')', ',', '=', '{', '}':
		return false
	case '@':
		// Not excluded by the formal grammar, but '@' always introduces a
		// new command in practice; treating it as an identifier terminator
		// keeps SkipComment's "scan to next '@'" rule and Scan's tokenizer
		// in agreement about where a top-level construct begins.
		return false
	}
	return true
}

// SkipComment advances past top-level text, which the grammar treats as an
// inter-entry comment: any bytes up to the next '@'. It returns
// the position of the '@' and true, or an invalid position and false at
// EOF.
func (s *Scanner) SkipComment() (gotok.Pos, bool) {
	for s.ch != '@' && s.ch != eof {
		s.next()
	}
	if s.ch == eof {
		return gotok.NoPos, false
	}
	return s.file.Pos(s.offset), true
}

// scanCommand scans the keyword following '@' and classifies it. The
// returned literal is the keyword without the leading '@', case preserved.
func (s *Scanner) scanCommand() (token.Token, string) {
	s.next() // consume '@'
	offs := s.offset
	for isIdentChar(s.ch) {
		s.next()
	}
	name := string(s.src[offs:s.offset])
	if name == "" {
		s.error(offs, "expected a keyword or entry type after '@'")
		return token.Illegal, ""
	}
	switch {
	case strings.EqualFold(name, "comment"):
		return token.Comment, name
	case strings.EqualFold(name, "string"):
		return token.Abbrev, name
	case strings.EqualFold(name, "preamble"):
		return token.Preamble, name
	default:
		return token.BibEntry, name
	}
}

func (s *Scanner) scanIdent() string {
	offs := s.offset
	for isIdentChar(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanNumber() string {
	offs := s.offset
	for isDecimal(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

// scanString scans a double-quoted value piece. The quote cannot appear at
// brace-depth 0 inside the string (that ends it); interior braces must
// balance.
func (s *Scanner) scanString() (string, bool) {
	offs := s.offset
	depth := 0
	for {
		switch s.ch {
		case eof, '\n':
			s.error(offs-1, "string literal in double quotes not terminated")
			return string(s.src[offs:s.offset]), false
		case '"':
			if depth == 0 {
				lit := string(s.src[offs:s.offset])
				s.next() // consume closing quote
				return lit, true
			}
			s.next()
		case '{':
			depth++
			s.next()
		case '}':
			if depth == 0 {
				s.errorf(s.offset, "unbalanced '}' in string literal")
				s.next()
				continue
			}
			depth--
			s.next()
		default:
			s.next()
		}
	}
}

// scanBraceString scans a brace-delimited value piece (the leading '{' has
// already been consumed). Interior braces are preserved byte-for-byte in
// the returned literal.
func (s *Scanner) scanBraceString() (string, bool) {
	offs := s.offset
	depth := 0
	for {
		switch s.ch {
		case eof:
			s.error(offs-1, "brace-delimited literal not terminated")
			return string(s.src[offs:s.offset]), false
		case '{':
			depth++
			s.next()
		case '}':
			if depth == 0 {
				lit := string(s.src[offs:s.offset])
				s.next() // consume closing brace
				return lit, true
			}
			depth--
			s.next()
		default:
			s.next()
		}
	}
}

// ScanKey scans a citation key directly from raw source bytes, per the
// key (brace form) or key_paren (paren form) lexical class: both stop at a
// comma, space, tab, or newline; only the brace form also stops at '}' (the
// paren form permits one, since its own terminator is the closing ')').
// Every other byte is included verbatim, unlike Scan's generic identifier
// tokenizer, which excludes many characters (`"`, `#`, `(`, `)`, `=`, among
// others) that a citation key is allowed to contain. closing is the
// delimiter that will close the entry (token.RBrace or token.RParen) and
// selects which of the two classes applies.
func (s *Scanner) ScanKey(closing token.Token) (gotok.Pos, string) {
	s.skipWhitespace()
	pos := s.file.Pos(s.offset)
	offs := s.offset
	for !s.atKeyStop(closing) {
		s.next()
	}
	lit := string(s.src[offs:s.offset])
	s.prev = token.Ident
	return pos, lit
}

func (s *Scanner) atKeyStop(closing token.Token) bool {
	switch s.ch {
	case eof, ',', ' ', '\t', '\n', '\r':
		return true
	case '}':
		return closing == token.RBrace
	}
	return false
}

// Scan returns the next token, its position, and its literal text (for
// tokens that carry one). Comment/inter-entry text is not handled here; see
// SkipComment.
//
// A '{' is scanned as the start of a value piece (token.BraceString) only
// when the previous token was '=' or '#';
// otherwise it is the structural token.LBrace that opens an entry or
// abbreviation body.
func (s *Scanner) Scan() (pos gotok.Pos, tok token.Token, lit string) {
	s.skipWhitespace()
	pos = s.file.Pos(s.offset)

	switch ch := s.ch; {
	case ch == eof:
		tok = token.EOF
	case isDecimal(ch):
		tok = token.Number
		lit = s.scanNumber()
	case isIdentChar(ch):
		tok = token.Ident
		lit = s.scanIdent()
	case ch == '@':
		tok, lit = s.scanCommand()
	case ch == '"':
		s.next()
		lit, _ = s.scanString()
		tok = token.String
	case ch == '{':
		if s.prev == token.Assign || s.prev == token.Concat {
			s.next()
			lit, _ = s.scanBraceString()
			tok = token.BraceString
		} else {
			s.next()
			tok = token.LBrace
		}
	case ch == '}':
		s.next()
		tok = token.RBrace
	case ch == '(':
		s.next()
		tok = token.LParen
	case ch == ')':
		s.next()
		tok = token.RParen
	case ch == '=':
		s.next()
		tok = token.Assign
	case ch == ',':
		s.next()
		tok = token.Comma
	case ch == '#':
		s.next()
		tok = token.Concat
	default:
		s.errorf(s.offset, "illegal character %q", ch)
		lit = string(ch)
		tok = token.Illegal
		s.next()
	}

	s.prev = tok
	return
}
