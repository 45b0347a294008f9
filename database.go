package bibtex

import (
	"strings"

	"github.com/ardelle-io/bibtex/diag"
)

// Database is an ordered mapping from citation key to Entry, in first-seen
// order across all parsed input streams. Keys compare
// case-sensitively for Lookup, but duplicate insertion is detected
// case-insensitively.
type Database struct {
	sink *diag.Sink

	order     []CiteKey
	entries   map[CiteKey]*Entry
	seenLower map[string]CiteKey // lowercased key -> first-seen original key

	preamble strings.Builder
}

// NewDatabase creates an empty Database. Diagnostics from operations like
// ResolveCrossref are reported to sink.
func NewDatabase(sink *diag.Sink) *Database {
	return &Database{
		sink:      sink,
		entries:   make(map[CiteKey]*Entry, 64),
		seenLower: make(map[string]CiteKey, 64),
	}
}

// Insert adds e to the database, keyed by e.Key. If a key differing only in
// case has already been inserted, e is dropped, a warning is issued at e's
// position, and Insert reports false.
func (db *Database) Insert(e *Entry) bool {
	lower := strings.ToLower(e.Key)
	if first, ok := db.seenLower[lower]; ok {
		if db.sink != nil {
			db.sink.Warningf(e.Pos, "duplicate entry key %q (first seen as %q)", e.Key, first)
		}
		return false
	}
	db.seenLower[lower] = e.Key
	db.entries[e.Key] = e
	db.order = append(db.order, e.Key)
	return true
}

// AddPreamble appends text to the database's preamble buffer.
func (db *Database) AddPreamble(text string) {
	db.preamble.WriteString(text)
}

// Preamble returns the concatenated contents of every @preamble command
// seen during parsing.
func (db *Database) Preamble() string {
	return db.preamble.String()
}

// Lookup returns the entry stored under the exact (case-sensitive) key.
func (db *Database) Lookup(key CiteKey) (*Entry, bool) {
	e, ok := db.entries[key]
	return e, ok
}

// Entries returns every entry in first-seen order.
func (db *Database) Entries() []*Entry {
	es := make([]*Entry, len(db.order))
	for i, k := range db.order {
		es[i] = db.entries[k]
	}
	return es
}

// ResolveCrossref returns a new Entry with every field present in the
// crossref target and absent from e added, using the target's raw value and
// position, and with the "crossref" field itself removed.
// Cross-reference chains are resolved one hop only. If e has no crossref
// field, e is returned unchanged. If the target key is missing, a
// diagnostic is issued and e is returned with crossref removed but
// otherwise unchanged. ResolveCrossref never mutates e.
func (db *Database) ResolveCrossref(e *Entry) *Entry {
	ref, ok := e.Field(FieldCrossref)
	if !ok {
		return e
	}

	out := e.clone()
	delete(out.fields, FieldCrossref)
	delete(out.fieldPos, FieldCrossref)
	out.names = removeName(out.names, FieldCrossref)

	target, ok := db.Lookup(ref)
	if !ok {
		if db.sink != nil {
			db.sink.Warningf(e.Pos, "crossref %q of entry %q not found", ref, e.Key)
		}
		return out
	}

	for _, n := range target.names {
		if _, ok := out.Field(n); ok {
			continue
		}
		v, _ := target.Field(n)
		pos, _ := target.FieldPos(n)
		out.AddField(n, v, pos)
	}
	return out
}

func removeName(names []Field, victim Field) []Field {
	out := names[:0:0]
	for _, n := range names {
		if n != victim {
			out = append(out, n)
		}
	}
	return out
}
