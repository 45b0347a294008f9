package bibtex

import (
	"fmt"
	gotok "go/token"
	"strings"

	"github.com/ardelle-io/bibtex/diag"
	"github.com/ardelle-io/bibtex/name"
)

// CiteKey is the citation key for a Bibtex entry, like the "foo" in:
//
//	@article{ foo }
type CiteKey = string

// EntryType is the type of Bibtex entry. An "@article" entry is represented
// as "article". String alias to allow for unknown entries.
type EntryType = string

//goland:noinspection GoUnusedConst
const (
	EntryArticle       EntryType = "article"
	EntryBook          EntryType = "book"
	EntryBooklet       EntryType = "booklet"
	EntryInBook        EntryType = "inbook"
	EntryInCollection  EntryType = "incollection"
	EntryInProceedings EntryType = "inproceedings"
	EntryManual        EntryType = "manual"
	EntryMastersThesis EntryType = "mastersthesis"
	EntryMisc          EntryType = "misc"
	EntryPhDThesis     EntryType = "phdthesis"
	EntryProceedings   EntryType = "proceedings"
	EntryTechReport    EntryType = "techreport"
	EntryUnpublished   EntryType = "unpublished"
)

// Field is the name of a single field in a Bibtex Entry.
type Field = string

//goland:noinspection GoUnusedConst
const (
	FieldAddress      Field = "address"
	FieldAnnote       Field = "annote"
	FieldAuthor       Field = "author"
	FieldBookTitle    Field = "booktitle"
	FieldChapter      Field = "chapter"
	FieldCrossref     Field = "crossref"
	FieldDOI          Field = "doi"
	FieldEdition      Field = "edition"
	FieldEditor       Field = "editor"
	FieldHowPublished Field = "howpublished"
	FieldInstitution  Field = "institution"
	FieldJournal      Field = "journal"
	FieldKey          Field = "key"
	FieldMonth        Field = "month"
	FieldNote         Field = "note"
	FieldNumber       Field = "number"
	FieldOrganization Field = "organization"
	FieldPages        Field = "pages"
	FieldPublisher    Field = "publisher"
	FieldSchool       Field = "school"
	FieldSeries       Field = "series"
	FieldTitle        Field = "title"
	FieldType         Field = "type"
	FieldVolume       Field = "volume"
	FieldYear         Field = "year"
)

// Entry is a single Bibtex record, e.g. the body of an "@article{...}". Its
// fields are stored as raw strings: macros already expanded and
// '#'-concatenated, delimiters stripped, interior braces retained. Once inserted into a Database an Entry is never mutated, except by
// Database.ResolveCrossref, which returns a new Entry.
type Entry struct {
	Type EntryType
	Key  CiteKey
	Pos  gotok.Position

	names    []Field // insertion order
	fields   map[Field]string
	fieldPos map[Field]gotok.Position
}

// NewEntry creates an empty entry of the given type and citation key. It is
// exported for the parser package, which is the only expected caller outside
// tests.
func NewEntry(typ EntryType, key CiteKey, pos gotok.Position) *Entry {
	return &Entry{
		Type:     typ,
		Key:      key,
		Pos:      pos,
		fields:   make(map[Field]string, 8),
		fieldPos: make(map[Field]gotok.Position, 8),
	}
}

// AddField sets name to value at pos, unless name is already present, in
// which case the first occurrence wins. It
// reports whether the field was added.
func (e *Entry) AddField(name Field, value string, pos gotok.Position) bool {
	if _, ok := e.fields[name]; ok {
		return false
	}
	e.names = append(e.names, name)
	e.fields[name] = value
	e.fieldPos[name] = pos
	return true
}

// Field returns the raw value of name and whether it is present.
func (e *Entry) Field(name Field) (string, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// FieldPos returns the source position of name's value, if present.
func (e *Entry) FieldPos(name Field) (gotok.Position, bool) {
	p, ok := e.fieldPos[name]
	return p, ok
}

// FieldNames returns the entry's field names in the order they appeared in
// the source.
func (e *Entry) FieldNames() []Field {
	return append([]Field(nil), e.names...)
}

// clone returns a shallow copy of e with its own field maps, used by
// Database.ResolveCrossref so the original entry is left unchanged.
func (e *Entry) clone() *Entry {
	c := NewEntry(e.Type, e.Key, e.Pos)
	for _, n := range e.names {
		c.AddField(n, e.fields[n], e.fieldPos[n])
	}
	return c
}

// Authors splits the "author" field into names. A missing field
// yields an empty, non-nil slice.
func (e *Entry) Authors() ([]name.Name, error) {
	return e.names_(FieldAuthor)
}

// Editors splits the "editor" field into names. A missing field
// yields an empty, non-nil slice.
func (e *Entry) Editors() ([]name.Name, error) {
	return e.names_(FieldEditor)
}

func (e *Entry) names_(field Field) ([]name.Name, error) {
	v, ok := e.fields[field]
	if !ok {
		return []name.Name{}, nil
	}
	sink := &diag.Sink{}
	pos := e.fieldPos[field]
	names := name.Parse(v, pos, sink)
	if sink.HasErrors() {
		return names, fmt.Errorf("bibtex: parse %s field of %q: %w", field, e.Key, sink.Err())
	}
	return names, nil
}

// monthAbbrevs maps the canonical month abbreviations and full English
// names (case-insensitive) to their 1-12 ordinal, independent of whatever
// macro table produced the field's value.
var monthAbbrevs = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// MonthNum reports the 1-12 ordinal of the "month" field, derived by
// looking up its value against month macros and abbreviations.
func (e *Entry) MonthNum() (int, bool) {
	v, ok := e.fields[FieldMonth]
	if !ok {
		return 0, false
	}
	n, ok := monthAbbrevs[strings.ToLower(strings.TrimSpace(v))]
	return n, ok
}

// ToBib renders a canonical pretty-printed BibTeX record: type lowercased,
// one field per line in source order, braces around each value, trailing
// comma.
func (e *Entry) ToBib() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s{%s,\n", strings.ToLower(e.Type), e.Key)
	for _, n := range e.names {
		fmt.Fprintf(&sb, "  %s = {%s},\n", n, e.fields[n])
	}
	sb.WriteString("}")
	return sb.String()
}
