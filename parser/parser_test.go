package parser

import (
	"testing"

	"github.com/ardelle-io/bibtex"
	"github.com/ardelle-io/bibtex/diag"
)

func mustParse(t *testing.T, src string) (*bibtex.Database, *diag.Sink) {
	t.Helper()
	sink := &diag.Sink{}
	p, err := Parse([]Stream{{Filename: "test.bib", Src: []byte(src)}}, sink, 0)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	db, err := p.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	return db, sink
}

func TestParse_simpleEntry(t *testing.T) {
	db, sink := mustParse(t, `@article{foo2020,
  title = {A Title},
  author = {Last, First},
  year = 2020,
}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	e, ok := db.Lookup("foo2020")
	if !ok {
		t.Fatal("expected entry foo2020 to be present")
	}
	if e.Type != "article" {
		t.Errorf("Type = %q, want article", e.Type)
	}
	if v, _ := e.Field("title"); v != "A Title" {
		t.Errorf("title = %q", v)
	}
	if v, _ := e.Field("year"); v != "2020" {
		t.Errorf("year = %q", v)
	}
}

func TestParse_parenDelimited(t *testing.T) {
	db, sink := mustParse(t, `@article(foo2020, title = {A Title})`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if _, ok := db.Lookup("foo2020"); !ok {
		t.Fatal("expected entry foo2020 to be present")
	}
}

func TestParse_stringAbbrevExpansion(t *testing.T) {
	db, sink := mustParse(t, `@string{acm = "Association for Computing Machinery"}
@article{foo, publisher = acm}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("publisher"); v != "Association for Computing Machinery" {
		t.Errorf("publisher = %q", v)
	}
}

func TestParse_concatenation(t *testing.T) {
	db, _ := mustParse(t, `@string{acm = "ACM"}
@article{foo, title = "Proc. of " # acm # " 2020"}`)
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("title"); v != "Proc. of ACM 2020" {
		t.Errorf("title = %q", v)
	}
}

func TestParse_monthMacro(t *testing.T) {
	db, sink := mustParse(t, `@article{foo, month = jan}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("month"); v != "January" {
		t.Errorf("month = %q, want January", v)
	}
}

func TestParse_preamble(t *testing.T) {
	db, _ := mustParse(t, `@preamble{"\newcommand{\foo}{bar}"}`)
	if got, want := db.Preamble(), `\newcommand{\foo}{bar}`; got != want {
		t.Errorf("Preamble() = %q, want %q", got, want)
	}
}

func TestParse_commentCommandIsDiscarded(t *testing.T) {
	db, sink := mustParse(t, `@comment{this is ignored, even with { unbalanced stuff
@article{foo, title = {A Title}}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if _, ok := db.Lookup("foo"); !ok {
		t.Error("expected the entry following a malformed @comment body to still parse")
	}
}

func TestParse_undefinedMacroWarns(t *testing.T) {
	db, sink := mustParse(t, `@article{foo, publisher = undefinedmacro}`)
	if len(sink.Diagnostics()) == 0 {
		t.Fatal("expected a diagnostic for an undefined macro")
	}
	if sink.HasErrors() {
		t.Error("an undefined macro should warn, not error")
	}
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("publisher"); v != "" {
		t.Errorf("publisher = %q, want empty expansion", v)
	}
}

func TestParse_duplicateFieldWarns(t *testing.T) {
	db, sink := mustParse(t, `@article{foo, title = {First}, title = {Second}}`)
	if len(sink.Diagnostics()) == 0 {
		t.Fatal("expected a diagnostic for a duplicate field")
	}
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("title"); v != "First" {
		t.Errorf("title = %q, want the first occurrence to win", v)
	}
}

func TestParse_duplicateKeyWarns(t *testing.T) {
	db, sink := mustParse(t, `@article{foo, title = {First}}
@misc{foo, title = {Second}}`)
	if len(sink.Diagnostics()) == 0 {
		t.Fatal("expected a diagnostic for a duplicate citation key")
	}
	e, _ := db.Lookup("foo")
	if v, _ := e.Field("title"); v != "First" {
		t.Errorf("title = %q, want the first-inserted entry to win", v)
	}
}

func TestParse_malformedEntryResyncsToNextTopLevelCommand(t *testing.T) {
	sink := &diag.Sink{}
	p, err := Parse([]Stream{{Filename: "test.bib", Src: []byte(`@article{broken title = no braces or key,
@misc{recovered, title = {Recovered}}`)}}, sink, 0)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(sink.Diagnostics()) == 0 {
		t.Fatal("expected diagnostics for the malformed entry")
	}
	if !sink.HasErrors() {
		t.Fatal("malformed syntax should be an error-level diagnostic")
	}
	if _, err := p.Finalize(); err == nil {
		t.Error("expected Finalize to report the error-level diagnostic")
	}
	if _, ok := p.db.Lookup("recovered"); !ok {
		t.Error("expected parsing to resynchronize and still find the next entry")
	}
}

func TestParse_trailingCommaBeforeClose(t *testing.T) {
	db, sink := mustParse(t, `@article{foo, title = {A Title},}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if _, ok := db.Lookup("foo"); !ok {
		t.Error("expected the entry to parse despite a trailing comma")
	}
}

func TestParse_parenKeyAllowsRBrace(t *testing.T) {
	db, sink := mustParse(t, `@article(foo}bar, title={x})`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	e, ok := db.Lookup("foo}bar")
	if !ok {
		t.Fatal(`expected entry "foo}bar" to be present`)
	}
	if v, _ := e.Field("title"); v != "x" {
		t.Errorf("title = %q, want x", v)
	}
}

func TestParse_braceKeyStopsAtRBrace(t *testing.T) {
	db, sink := mustParse(t, `@article{foo}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if _, ok := db.Lookup("foo"); !ok {
		t.Fatal("expected entry foo to be present")
	}
}

func TestParse_keyAllowsCharactersIdentifiersExclude(t *testing.T) {
	db, sink := mustParse(t, `@article{foo=bar(1)"x"#y, title={x}}`)
	if len(sink.Diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if _, ok := db.Lookup(`foo=bar(1)"x"#y`); !ok {
		t.Error("expected a key containing '=', '(', ')', '\"', and '#' to parse whole")
	}
}

func TestParse_multipleStreamsPreserveOrder(t *testing.T) {
	sink := &diag.Sink{}
	p, err := Parse([]Stream{
		{Filename: "a.bib", Src: []byte(`@article{a, title = {A}}`)},
		{Filename: "b.bib", Src: []byte(`@article{b, title = {B}}`)},
	}, sink, 0)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	db, err := p.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	es := db.Entries()
	if len(es) != 2 || es[0].Key != "a" || es[1].Key != "b" {
		t.Errorf("Entries() = %+v, want [a, b] in order", es)
	}
}
