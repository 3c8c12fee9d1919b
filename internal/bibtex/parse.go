// Package bibtex reads BibTeX databases into entries and references.
package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// ParseError reports a syntax problem at a line of the input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// monthMacros are predefined by every BibTeX style.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// ParseFile parses the BibTeX database at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads a BibTeX database. Entries are returned in file order.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	p := &parser{
		src:    string(data),
		line:   1,
		macros: make(map[string]string, len(monthMacros)),
	}
	for k, v := range monthMacros {
		p.macros[k] = v
	}
	return p.parse()
}

type parser struct {
	src    string
	pos    int
	line   int
	macros map[string]string
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
	}
	return c
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.next()
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.eof() {
		return p.errorf("unexpected end of input, expected %q", c)
	}
	if got := p.peek(); got != c {
		return p.errorf("expected %q, found %q", c, got)
	}
	p.next()
	return nil
}

func (p *parser) parse() ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]int)

	for {
		// Anything outside an @-command is a comment.
		for !p.eof() && p.peek() != '@' {
			p.next()
		}
		if p.eof() {
			return entries, nil
		}
		p.next() // '@'

		startLine := p.line
		kind := strings.ToLower(p.identifier())
		if kind == "" {
			return nil, p.errorf("missing entry type after '@'")
		}

		switch kind {
		case "comment":
			// A bare @comment is skipped like any text between entries.
			p.skipSpace()
			if c := p.peek(); c == '{' || c == '(' {
				if _, err := p.delimited(); err != nil {
					return nil, err
				}
			}
		case "preamble":
			if _, err := p.delimited(); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseMacro(); err != nil {
				return nil, err
			}
		default:
			e, err := p.parseEntry(kind)
			if err != nil {
				return nil, err
			}
			e.Line = startLine
			// Keys are case-insensitive, as in BibTeX itself.
			folded := strings.ToLower(e.Key)
			if prev, dup := seen[folded]; dup {
				return nil, &ParseError{
					Line: startLine,
					Msg:  fmt.Sprintf("duplicate citation key %q (first defined on line %d)", e.Key, prev),
				}
			}
			seen[folded] = startLine
			entries = append(entries, e)
		}
	}
}

// identifier reads a run of name characters.
func (p *parser) identifier() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if unicode.IsSpace(rune(c)) || strings.IndexByte(`{}(),="#%'@`, c) >= 0 {
			break
		}
		p.next()
	}
	return p.src[start:p.pos]
}

// open consumes '{' or '(' and returns the matching closer.
func (p *parser) open() (byte, error) {
	p.skipSpace()
	switch p.peek() {
	case '{':
		p.next()
		return '}', nil
	case '(':
		p.next()
		return ')', nil
	case 0:
		return 0, p.errorf("unexpected end of input, expected '{'")
	default:
		return 0, p.errorf("expected '{' or '(', found %q", p.peek())
	}
}

// delimited skips a balanced {...} or (...) block.
func (p *parser) delimited() (string, error) {
	closer, err := p.open()
	if err != nil {
		return "", err
	}
	if closer == '}' {
		return p.braced()
	}
	start, line := p.pos, p.line
	depth := 0
	for !p.eof() {
		c := p.next()
		switch {
		case c == '(':
			depth++
		case c == ')' && depth == 0:
			return p.src[start : p.pos-1], nil
		case c == ')':
			depth--
		}
	}
	return "", &ParseError{Line: line, Msg: "unterminated '('"}
}

func (p *parser) parseMacro() error {
	closer, err := p.open()
	if err != nil {
		return err
	}
	name := strings.ToLower(p.identifier())
	if name == "" {
		return p.errorf("@string without a name")
	}
	if err := p.expect('='); err != nil {
		return err
	}
	value, err := p.value()
	if err != nil {
		return err
	}
	p.macros[name] = value
	return p.expect(closer)
}

func (p *parser) parseEntry(kind string) (Entry, error) {
	closer, err := p.open()
	if err != nil {
		return Entry{}, err
	}

	p.skipSpace()
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ',' || c == closer || unicode.IsSpace(rune(c)) {
			break
		}
		p.next()
	}
	key := p.src[start:p.pos]
	if key == "" {
		return Entry{}, p.errorf("@%s entry without a citation key", kind)
	}

	e := Entry{Type: kind, Key: key, fields: make(map[string]string)}

	for {
		p.skipSpace()
		if p.eof() {
			return Entry{}, p.errorf("unterminated entry %q", key)
		}
		if p.peek() == closer {
			p.next()
			return e, nil
		}
		if err := p.expect(','); err != nil {
			return Entry{}, err
		}
		p.skipSpace()
		if p.eof() {
			return Entry{}, p.errorf("unterminated entry %q", key)
		}
		// Trailing comma before the closer.
		if p.peek() == closer {
			p.next()
			return e, nil
		}

		name := strings.ToLower(p.identifier())
		if name == "" {
			return Entry{}, p.errorf("expected field name in entry %q", key)
		}
		if err := p.expect('='); err != nil {
			return Entry{}, err
		}
		value, err := p.value()
		if err != nil {
			return Entry{}, err
		}
		e.set(name, value)
	}
}

// value reads a field value: one or more pieces joined with '#'.
func (p *parser) value() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		piece, err := p.piece()
		if err != nil {
			return "", err
		}
		b.WriteString(piece)

		p.skipSpace()
		if p.peek() != '#' {
			// Line breaks inside values are layout, not content.
			return strings.Join(strings.Fields(b.String()), " "), nil
		}
		p.next()
	}
}

func (p *parser) piece() (string, error) {
	switch c := p.peek(); {
	case c == '{':
		p.next()
		return p.braced()
	case c == '"':
		p.next()
		return p.quoted()
	case c >= '0' && c <= '9':
		start := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.next()
		}
		return p.src[start:p.pos], nil
	case c == 0:
		return "", p.errorf("unexpected end of input, expected a value")
	default:
		name := strings.ToLower(p.identifier())
		if name == "" {
			return "", p.errorf("unexpected %q in value", c)
		}
		v, ok := p.macros[name]
		if !ok {
			return "", p.errorf("undefined macro %q", name)
		}
		return v, nil
	}
}

// braced reads up to the brace matching an already consumed '{'.
// Inner braces are kept.
func (p *parser) braced() (string, error) {
	start, line := p.pos, p.line
	depth := 0
	for !p.eof() {
		switch p.next() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return p.src[start : p.pos-1], nil
			}
			depth--
		}
	}
	return "", &ParseError{Line: line, Msg: "unterminated '{'"}
}

// quoted reads up to the closing '"' at brace depth zero.
func (p *parser) quoted() (string, error) {
	start, line := p.pos, p.line
	depth := 0
	for !p.eof() {
		switch p.next() {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				return p.src[start : p.pos-1], nil
			}
		}
	}
	return "", &ParseError{Line: line, Msg: "unterminated '\"'"}
}
