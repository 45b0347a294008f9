// Package diag implements the diagnostic sink shared by the scanner, parser,
// name parser, title caser, and TeX translator. Every component logs
// recoverable problems here instead of returning an error; callers inspect
// the sink (or call Sink.Err) once a pass is complete.
package diag

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Severity distinguishes diagnostics that make a parse fatal from ones that
// are merely informational.
type Severity int

const (
	// Warning diagnostics are recorded but never make a parse fail: undefined
	// macros, unknown TeX control sequences, duplicate keys, and so on.
	Warning Severity = iota
	// Error diagnostics are recoverable at the point they're raised (the
	// parser resynchronizes and keeps going) but cause Sink.Err to return a
	// non-nil error once the pass is finalized.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single location-tagged message.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Msg      string
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Msg)
}

// Sink collects diagnostics produced while parsing or transforming a bibtex
// source. It is write-only from the perspective of the components that
// report into it; the owning caller reads it back after the pass.
//
// The zero value is a ready-to-use, empty sink.
type Sink struct {
	diags []Diagnostic
}

// Warningf records a warning-severity diagnostic at pos.
func (s *Sink) Warningf(pos token.Position, format string, args ...interface{}) {
	s.add(Warning, pos, format, args...)
}

// Errorf records an error-severity diagnostic at pos.
func (s *Sink) Errorf(pos token.Position, format string, args ...interface{}) {
	s.add(Error, pos, format, args...)
}

func (s *Sink) add(sev Severity, pos token.Position, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Severity: sev,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns every diagnostic recorded so far, in the order they
// were reported.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by source position, matching the behavior of
// go/scanner.ErrorList.Sort.
func (s *Sink) Sort() {
	sort.SliceStable(s.diags, func(i, j int) bool {
		pi, pj := s.diags[i].Pos, s.diags[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
}

// Err returns a single fatal error describing every Error-severity
// diagnostic recorded, or nil if none were. Parsing itself never stops
// early on a recoverable error; the caller learns about every error in one
// shot at the end, when it calls Err.
func (s *Sink) Err() error {
	if !s.HasErrors() {
		return nil
	}
	var sb strings.Builder
	n := 0
	for _, d := range s.diags {
		if d.Severity != Error {
			continue
		}
		if n > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.String())
		n++
	}
	return &FatalError{Count: n, Detail: sb.String()}
}

// FatalError is raised once by Sink.Err when one or more Error-severity
// diagnostics were recorded during a pass.
type FatalError struct {
	Count  int
	Detail string
}

func (e *FatalError) Error() string {
	if e.Count == 1 {
		return fmt.Sprintf("bibtex: 1 error:\n%s", e.Detail)
	}
	return fmt.Sprintf("bibtex: %d errors:\n%s", e.Count, e.Detail)
}
