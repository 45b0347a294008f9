package scanner

import (
	gotok "go/token"
	"testing"

	"github.com/ardelle-io/bibtex/token"
)

type tokLit struct {
	tok token.Token
	lit string
}

func scanAll(t *testing.T, src string) []tokLit {
	t.Helper()
	fset := gotok.NewFileSet()
	file := fset.AddFile("test.bib", -1, len(src))
	var errs []string
	var s Scanner
	s.Init(file, []byte(src), func(pos gotok.Position, msg string) {
		errs = append(errs, msg)
	})

	var got []tokLit
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		got = append(got, tokLit{tok, lit})
	}
	if len(errs) > 0 {
		t.Fatalf("unexpected scanner errors: %v", errs)
	}
	return got
}

func TestScan_entry(t *testing.T) {
	src := `@article{foo, title = {Hello}, author = "Jane Doe"}`
	want := []tokLit{
		{token.BibEntry, "article"},
		{token.LBrace, ""},
		{token.Ident, "foo"},
		{token.Comma, ""},
		{token.Ident, "title"},
		{token.Assign, ""},
		{token.BraceString, "Hello"},
		{token.Comma, ""},
		{token.Ident, "author"},
		{token.Assign, ""},
		{token.String, "Jane Doe"},
		{token.RBrace, ""},
	}
	got := scanAll(t, src)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScan_commandKeywords(t *testing.T) {
	tests := []struct {
		src  string
		want token.Token
	}{
		{"@string", token.Abbrev},
		{"@STRING", token.Abbrev},
		{"@preamble", token.Preamble},
		{"@comment", token.Comment},
		{"@article", token.BibEntry},
		{"@Misc", token.BibEntry},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := scanAll(t, tt.src)
			if len(got) != 1 || got[0].tok != tt.want {
				t.Errorf("scanAll(%q) = %+v, want a single %v token", tt.src, got, tt.want)
			}
		})
	}
}

func TestScan_braceStringPreservesInteriorBraces(t *testing.T) {
	got := scanAll(t, `= {a {nested} b}`)
	want := []tokLit{
		{token.Assign, ""},
		{token.BraceString, "a {nested} b"},
	}
	if len(got) != len(want) || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestScan_leadingBraceIsStructuralWithoutAssign(t *testing.T) {
	got := scanAll(t, `{foo}`)
	want := []tokLit{
		{token.LBrace, ""},
		{token.Ident, "foo"},
		{token.RBrace, ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSkipComment(t *testing.T) {
	fset := gotok.NewFileSet()
	src := []byte("junk before @article{a}")
	file := fset.AddFile("test.bib", -1, len(src))
	var s Scanner
	s.Init(file, src, nil)
	pos, ok := s.SkipComment()
	if !ok {
		t.Fatal("expected SkipComment to find '@'")
	}
	if got := file.Offset(pos); got != 12 {
		t.Errorf("SkipComment stopped at offset %d, want 12", got)
	}
}

func TestScan_unterminatedString(t *testing.T) {
	fset := gotok.NewFileSet()
	src := []byte(`"unterminated`)
	file := fset.AddFile("test.bib", -1, len(src))
	var errCount int
	var s Scanner
	s.Init(file, src, func(pos gotok.Position, msg string) { errCount++ })
	s.Scan()
	if errCount == 0 {
		t.Error("expected an error for an unterminated string literal")
	}
}
