// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex parses bibliography files into raw key/value records and
// serializes minimal citation snippets.
package bibtex

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Entry is one bibTeX record: the entry type, the citation key, and the
// raw field values keyed by lowercased field name.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string

	// Line is the 1-based line of the entry's "@" in the source.
	Line int
}

// File is a parsed bibliography.
type File struct {
	// Path is the source file, when parsed via ParseFile.
	Path string

	// Entries maps citation key to entry. When a key appears more than
	// once, the last occurrence wins.
	Entries map[string]*Entry

	// Duplicates lists citation keys that appeared more than once, in
	// order of first re-occurrence.
	Duplicates []string
}

// Lookup returns the entry for a citation key.
func (f *File) Lookup(key string) (*Entry, bool) {
	e, ok := f.Entries[key]
	return e, ok
}

// ParseError reports malformed bibTeX syntax. Key is set when the
// offending entry's citation key was already known.
type ParseError struct {
	Path string
	Key  string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Key != "" {
		loc = fmt.Sprintf("entry %q, line %d", e.Key, e.Line)
	}
	if e.Path != "" {
		return fmt.Sprintf("bibtex %s: %s: %s", e.Path, loc, e.Msg)
	}
	return fmt.Sprintf("bibtex: %s: %s", loc, e.Msg)
}

// ParseFile reads and parses the bibliography at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	f, err := Parse(string(data))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	f.Path = path
	return f, nil
}

// Parse parses bibTeX source text. Text between entries is ignored, as
// are @comment, @preamble, and @string blocks. Field values may be
// brace-delimited (with balanced nesting), quote-delimited, or bare;
// concatenation with "#" joins parts with a single space. Whitespace
// runs inside values collapse to one space.
func Parse(src string) (*File, error) {
	f := &File{Entries: make(map[string]*Entry)}
	s := &scanner{src: src, line: 1}

	for {
		if !s.seek('@') {
			return f, nil
		}
		entry, err := s.parseEntry()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue // @comment, @preamble, @string
		}
		if _, dup := f.Entries[entry.Key]; dup {
			f.Duplicates = append(f.Duplicates, entry.Key)
		}
		f.Entries[entry.Key] = entry
	}
}

// scanner walks the source byte by byte, tracking the current line.
type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) cur() byte { return s.src[s.pos] }

func (s *scanner) advance() {
	if s.src[s.pos] == '\n' {
		s.line++
	}
	s.pos++
}

// seek advances to the next occurrence of c, returning false at EOF.
func (s *scanner) seek(c byte) bool {
	for !s.eof() {
		if s.cur() == c {
			return true
		}
		s.advance()
	}
	return false
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.cur()) {
		s.advance()
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (s *scanner) errf(key string, line int, format string, args ...any) error {
	return &ParseError{Key: key, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// parseEntry parses one @type{...} block starting at "@". It returns
// (nil, nil) for non-record blocks (@comment, @string, @preamble).
func (s *scanner) parseEntry() (*Entry, error) {
	startLine := s.line
	s.advance() // consume '@'

	typ := strings.ToLower(s.ident())
	if typ == "" {
		// A stray "@" in free text; skip it.
		return nil, nil
	}

	s.skipSpace()
	if s.eof() || (s.cur() != '{' && s.cur() != '(') {
		// "@word" with no opening delimiter is free text, not an entry:
		// an email address in a comment line, for instance. Keep
		// scanning for the next "@".
		return nil, nil
	}
	open := s.cur()
	close := byte('}')
	if open == '(' {
		close = ')'
	}
	s.advance()

	switch typ {
	case "comment", "preamble", "string":
		if !s.skipGroup(open, close) {
			return nil, s.errf("", startLine, "unterminated @%s block", typ)
		}
		return nil, nil
	}

	s.skipSpace()
	key := s.until(",", close)
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, s.errf("", startLine, "missing citation key in @%s entry", typ)
	}

	entry := &Entry{Type: typ, Key: key, Fields: make(map[string]string), Line: startLine}

	for {
		s.skipSpace()
		if s.eof() {
			return nil, s.errf(key, startLine, "unterminated entry")
		}
		switch s.cur() {
		case close:
			s.advance()
			return entry, nil
		case ',':
			s.advance()
			continue
		}

		name := strings.ToLower(s.ident())
		if name == "" {
			return nil, s.errf(key, s.line, "expected field name, found %q", string(s.cur()))
		}
		s.skipSpace()
		if s.eof() || s.cur() != '=' {
			return nil, s.errf(key, s.line, "expected '=' after field %q", name)
		}
		s.advance()

		value, err := s.value(key, close)
		if err != nil {
			return nil, err
		}
		entry.Fields[name] = normalizeSpace(value)
	}
}

// ident reads a run of letters, digits, and the separators bibTeX allows
// in type and field names.
func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() {
		c := s.cur()
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '_' || c == '-' || c == '.' || c == ':' || c == '+' {
			s.advance()
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// until reads up to (not including) any byte in stops or the given close
// delimiter, consuming the stop byte only when it is ','.
func (s *scanner) until(stops string, close byte) string {
	start := s.pos
	for !s.eof() {
		c := s.cur()
		if c == close || strings.IndexByte(stops, c) >= 0 {
			text := s.src[start:s.pos]
			if c == ',' {
				s.advance()
			}
			return text
		}
		s.advance()
	}
	return s.src[start:]
}

// value parses one field value: brace-delimited, quote-delimited, or
// bare, joined across "#" concatenations.
func (s *scanner) value(key string, close byte) (string, error) {
	var parts []string
	for {
		s.skipSpace()
		if s.eof() {
			return "", s.errf(key, s.line, "unterminated field value")
		}
		var part string
		var err error
		switch s.cur() {
		case '{':
			part, err = s.braced(key)
		case '"':
			part, err = s.quoted(key)
		default:
			part = s.bare(close)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)

		s.skipSpace()
		if !s.eof() && s.cur() == '#' {
			s.advance()
			continue
		}
		return strings.Join(parts, " "), nil
	}
}

// braced reads a {...} group with balanced nested braces, returning the
// content without the outermost braces.
func (s *scanner) braced(key string) (string, error) {
	startLine := s.line
	s.advance() // consume '{'
	start := s.pos
	depth := 1
	for !s.eof() {
		switch s.cur() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := s.src[start:s.pos]
				s.advance()
				return text, nil
			}
		}
		s.advance()
	}
	return "", s.errf(key, startLine, "unbalanced braces in field value")
}

// quoted reads a "..." value. Braces still nest inside quotes, so a
// quote within a brace group does not terminate the value.
func (s *scanner) quoted(key string) (string, error) {
	startLine := s.line
	s.advance() // consume '"'
	start := s.pos
	depth := 0
	for !s.eof() {
		switch s.cur() {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				text := s.src[start:s.pos]
				s.advance()
				return text, nil
			}
		}
		s.advance()
	}
	return "", s.errf(key, startLine, "unterminated quoted value")
}

// bare reads an undelimited value (a number or macro name).
func (s *scanner) bare(close byte) string {
	start := s.pos
	for !s.eof() {
		c := s.cur()
		if c == ',' || c == close || c == '#' || isSpace(c) {
			break
		}
		s.advance()
	}
	return s.src[start:s.pos]
}

// skipGroup consumes a balanced open/close group whose opening delimiter
// has already been consumed. It returns false on EOF.
func (s *scanner) skipGroup(open, close byte) bool {
	depth := 1
	for !s.eof() {
		switch s.cur() {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				s.advance()
				return true
			}
		}
		s.advance()
	}
	return false
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
