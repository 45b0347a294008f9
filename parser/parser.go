// Package parser implements the .bib grammar on top of the scanner
// package, building a bibtex.Database directly rather than an intermediate
// syntax tree: the data model is flat raw strings, so there is nothing for
// a tree to describe beyond what the Database already holds.
package parser

import (
	"fmt"
	gotok "go/token"
	"strings"

	"github.com/ardelle-io/bibtex"
	"github.com/ardelle-io/bibtex/diag"
	"github.com/ardelle-io/bibtex/scanner"
	"github.com/ardelle-io/bibtex/token"
)

// Mode is a bitflag controlling optional parser behavior.
type Mode uint

const (
	// Trace prints a trace of parsed productions to stdout.
	Trace Mode = 1 << iota
)

// Stream is one named byte-stream input to Parse. Filename is used only to
// anchor diagnostics.
type Stream struct {
	Filename string
	Src      []byte
}

// monthMacros seeds the macro table with the twelve canonical month
// abbreviations.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// Parser holds the state accumulated while parsing one or more streams. It
// owns the macro table for the lifetime of the parse.
type Parser struct {
	fset   *gotok.FileSet
	sink   *diag.Sink
	mode   Mode
	db     *bibtex.Database
	macros map[string]string

	// Per-stream scanning state, valid only while parsing a stream.
	file *gotok.File
	scan scanner.Scanner
	pos  gotok.Pos
	tok  token.Token
	lit  string

	syncPos gotok.Pos
	syncCnt int
}

// Parse parses every stream in order into a single Database and returns the
// resumable Parser that produced it. Call Finalize to retrieve the Database or a fatal error.
func Parse(streams []Stream, sink *diag.Sink, mode Mode) (*Parser, error) {
	p := &Parser{
		fset:   gotok.NewFileSet(),
		sink:   sink,
		mode:   mode,
		macros: make(map[string]string, len(monthMacros)+8),
	}
	for k, v := range monthMacros {
		p.macros[k] = v
	}
	p.db = bibtex.NewDatabase(sink)
	for _, st := range streams {
		p.ParseInto(st)
	}
	return p, nil
}

// ParseInto parses one more stream into the Parser's Database, preserving
// across-stream ordering. It lets a caller feed additional
// streams to an already-constructed Parser.
func (p *Parser) ParseInto(st Stream) {
	p.file = p.fset.AddFile(st.Filename, -1, len(st.Src))
	eh := func(pos gotok.Position, msg string) {
		if p.sink != nil {
			p.sink.Errorf(pos, "%s", msg)
		}
	}
	p.scan.Init(p.file, st.Src, eh)
	p.syncPos = gotok.NoPos
	p.syncCnt = 0
	p.nextCommand()
	p.parseStream()
}

// Finalize reports a fatal error if any error-severity diagnostic was
// logged during parsing; otherwise it returns the accumulated Database.
func (p *Parser) Finalize() (*bibtex.Database, error) {
	if p.sink != nil {
		if err := p.sink.Err(); err != nil {
			return nil, err
		}
	}
	return p.db, nil
}

// next advances to the next token via a plain scan. It is used for every
// token inside a command or entry body, where no free-form inter-entry
// comment text can legally appear.
func (p *Parser) next() {
	p.pos, p.tok, p.lit = p.scan.Scan()
}

// nextCommand skips the free-form text the grammar treats as an
// inter-entry "comment" (any bytes up to the next '@') and scans the
// keyword that follows, or sets EOF if none remains. It is used only at
// stream start and between top-level commands, never inside one.
func (p *Parser) nextCommand() {
	if _, ok := p.scan.SkipComment(); !ok {
		p.pos, p.tok, p.lit = p.file.Pos(p.file.Size()), token.EOF, ""
		return
	}
	p.pos, p.tok, p.lit = p.scan.Scan()
}

// tracef prints the current position and production name when the Parser
// was constructed with the Trace mode set.
func (p *Parser) tracef(production string) {
	if p.mode&Trace == 0 {
		return
	}
	pos := p.file.Position(p.pos)
	fmt.Printf("%5d:%3d: %s %q\n", pos.Line, pos.Column, production, p.lit)
}

func (p *Parser) error(pos gotok.Pos, msg string) {
	if p.sink != nil {
		p.sink.Errorf(p.file.Position(pos), "%s", msg)
	}
}

func (p *Parser) errorExpected(pos gotok.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.pos {
		if p.tok.IsLiteral() {
			msg += ", found " + p.lit
		} else {
			msg += ", found '" + p.tok.String() + "'"
		}
	}
	p.error(pos, msg)
}

func (p *Parser) expect(tok token.Token) gotok.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next()
	return pos
}

// expectClose checks that the current token is the closing delimiter of a
// top-level command, without advancing past it. The caller returns control
// to parseStream, which resynchronizes to whatever follows via nextCommand
// - the only safe way to skip the free-form comment text the grammar
// permits between commands.
func (p *Parser) expectClose(tok token.Token) {
	if p.tok != tok {
		p.errorExpected(p.pos, "'"+tok.String()+"'")
	}
}

// advance consumes tokens until p.tok is in the 'to' set or token.EOF, for
// error recovery after a malformed command. syncPos/syncCnt guard against
// an infinite loop when two callers both try to resync at the same
// position without making progress.
func (p *Parser) advance(to map[token.Token]bool) {
	for p.tok != token.EOF {
		if to[p.tok] {
			if p.pos == p.syncPos && p.syncCnt < 10 {
				p.syncCnt++
				return
			}
			if p.pos > p.syncPos {
				p.syncPos = p.pos
				p.syncCnt = 0
				return
			}
		}
		p.next()
	}
}

// parseStream parses the sequence of top-level commands in one stream.
// Each iteration ends with nextCommand, which is the only place that skips
// the grammar's inter-entry "comment" text to find whatever comes next.
func (p *Parser) parseStream() {
	p.tracef("Stream")
	for p.tok != token.EOF {
		switch p.tok {
		case token.Preamble:
			p.parsePreamble()
		case token.Abbrev:
			p.parseAbbrev()
		case token.BibEntry:
			p.parseBibEntry()
		case token.Comment:
			// An @comment command's body is discarded like any other
			// inter-entry text; nextCommand below does the skipping.
		default:
			p.errorExpected(p.pos, "a command or entry")
		}
		p.nextCommand()
	}
}

// openDelim consumes the '{' or '(' opening a command body and returns the
// matching closing token.
func (p *Parser) openDelim() (closing token.Token, ok bool) {
	switch p.tok {
	case token.LBrace:
		p.next()
		return token.RBrace, true
	case token.LParen:
		p.next()
		return token.RParen, true
	default:
		p.errorExpected(p.pos, "'{' or '('")
		return token.Illegal, false
	}
}

func (p *Parser) parsePreamble() {
	p.tracef("Preamble")
	p.next() // consume '@preamble'
	closing, ok := p.openDelim()
	if !ok {
		return
	}
	val := p.parseValue()
	p.expectClose(closing)
	p.db.AddPreamble(val)
}

func (p *Parser) parseAbbrev() {
	p.tracef("Abbrev")
	p.next() // consume '@string'
	closing, ok := p.openDelim()
	if !ok {
		return
	}
	if p.tok != token.Ident {
		p.errorExpected(p.pos, "macro name")
		return
	}
	name := strings.ToLower(p.lit)
	p.next()
	p.expect(token.Assign)
	val := p.parseValue()
	p.macros[name] = val // redefinition is allowed and silently overwrites
	p.expectClose(closing)
}

// parseBibEntry parses "@<type>{ key , field = value , ... [,] }".
func (p *Parser) parseBibEntry() {
	p.tracef("BibEntry")
	pos := p.file.Position(p.pos)
	typ := strings.ToLower(p.lit)
	p.next() // consume the entry-type keyword; now positioned at '{' or '('

	var closing token.Token
	switch p.tok {
	case token.LBrace:
		closing = token.RBrace
	case token.LParen:
		closing = token.RParen
	default:
		p.errorExpected(p.pos, "'{' or '('")
		return
	}

	key := p.parseKey(closing)
	entry := bibtex.NewEntry(typ, key, pos)

	for p.tok == token.Comma {
		p.next()
		if p.tok == closing {
			break // trailing comma before the closing delimiter is permitted
		}
		p.parseField(entry)
	}

	p.expectClose(closing)
	if key == "" {
		p.error(p.pos, "entry has no citation key")
		return
	}
	p.db.Insert(entry)
}

// parseKey scans the raw citation key immediately following the entry's
// opening delimiter, per the key/key_paren lexical classes: a key may
// contain characters - '"', '#', '(', ')', '=' among them - that the
// generic identifier tokenizer excludes, and the paren form additionally
// permits a literal '}' that the brace form does not. ScanKey reads those
// bytes directly off the scanner's cursor; parseKey then resumes normal
// tokenization for whatever follows the key.
func (p *Parser) parseKey(closing token.Token) string {
	_, key := p.scan.ScanKey(closing)
	p.next()
	return key
}

// parseField parses one "field = value" pair and adds it to entry,
// reporting a diagnostic on a duplicate field name.
func (p *Parser) parseField(entry *bibtex.Entry) {
	if p.tok != token.Ident && p.tok != token.Number {
		p.errorExpected(p.pos, "field name")
		p.advance(map[token.Token]bool{token.Comma: true, token.RBrace: true, token.RParen: true})
		return
	}
	namePos := p.file.Position(p.pos)
	name := strings.ToLower(p.lit)
	p.next()
	p.expect(token.Assign)
	val := p.parseValue()
	if !entry.AddField(name, val, namePos) {
		if p.sink != nil {
			p.sink.Warningf(namePos, "duplicate field %q in entry %q", name, entry.Key)
		}
	}
}

// parseValue parses a '#'-concatenated list of value pieces, expanding macro identifiers along the
// way.
func (p *Parser) parseValue() string {
	var sb strings.Builder
	sb.WriteString(p.parsePiece())
	for p.tok == token.Concat {
		p.next()
		sb.WriteString(p.parsePiece())
	}
	return sb.String()
}

func (p *Parser) parsePiece() string {
	switch p.tok {
	case token.Number, token.BraceString, token.String:
		lit := p.lit
		p.next()
		return lit
	case token.Ident:
		name := strings.ToLower(p.lit)
		pos := p.pos
		p.next()
		v, ok := p.macros[name]
		if !ok {
			if p.sink != nil {
				p.sink.Warningf(p.file.Position(pos), "undefined macro %q", name)
			}
			return ""
		}
		return v
	default:
		p.errorExpected(p.pos, "a value: number, string, or macro name")
		return ""
	}
}
