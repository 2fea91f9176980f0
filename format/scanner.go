package format

import (
	"github.com/wippyai/wasm-printnf/errors"
)

// TokenKind distinguishes scanner tokens.
type TokenKind uint8

const (
	TokenText    TokenKind = iota // literal run without '%'
	TokenPercent                  // "%%"
	TokenSpec                     // a conversion specifier
)

// Token is one element of a format string.
type Token struct {
	// Text is the literal run for TokenText and the raw specifier otherwise.
	Text string
	// Name is the struct name of a "%{NAME}" specifier, untrimmed.
	Name string
	// Pos is the byte offset of the token in the format string.
	Pos  int
	Kind TokenKind
	Verb Verb
}

// Scanner walks a format string once, left to right.
type Scanner struct {
	err error
	src string
	tok Token
	pos int
}

// NewScanner returns a scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Reset rewinds the scanner onto a new source.
func (s *Scanner) Reset(src string) {
	s.src = src
	s.pos = 0
	s.err = nil
	s.tok = Token{}
}

// Next advances to the next token. It returns false at the end of input or
// on the first error; Err distinguishes the two.
func (s *Scanner) Next() bool {
	if s.err != nil || s.pos >= len(s.src) {
		return false
	}
	start := s.pos
	if s.src[start] != '%' {
		end := start
		for end < len(s.src) && s.src[end] != '%' {
			end++
		}
		s.pos = end
		s.tok = Token{Kind: TokenText, Text: s.src[start:end], Pos: start}
		return true
	}

	if start+1 >= len(s.src) {
		s.err = errors.UnsupportedSpecifier(errors.PhaseScan, start, 0)
		return false
	}
	c := s.src[start+1]
	switch {
	case c == '%':
		s.pos = start + 2
		s.tok = Token{Kind: TokenPercent, Text: "%%", Pos: start}
		return true
	case Verb(c) == VerbStruct:
		nameStart := start + 2
		end := nameStart
		for end < len(s.src) && s.src[end] != '}' {
			end++
		}
		if end >= len(s.src) {
			s.err = errors.UnterminatedStruct(errors.PhaseScan, start, s.src[nameStart:])
			return false
		}
		s.pos = end + 1
		s.tok = Token{
			Kind: TokenSpec,
			Verb: VerbStruct,
			Text: s.src[start:s.pos],
			Name: s.src[nameStart:end],
			Pos:  start,
		}
		return true
	case Verb(c).Valid():
		s.pos = start + 2
		s.tok = Token{Kind: TokenSpec, Verb: Verb(c), Text: s.src[start:s.pos], Pos: start}
		return true
	default:
		s.err = errors.UnsupportedSpecifier(errors.PhaseScan, start, c)
		return false
	}
}

// Token returns the current token.
func (s *Scanner) Token() Token {
	return s.tok
}

// Err returns the error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Specs returns every specifier in src, or the first scan error.
func Specs(src string) ([]Token, error) {
	var specs []Token
	s := NewScanner(src)
	for s.Next() {
		if tok := s.Token(); tok.Kind == TokenSpec {
			specs = append(specs, tok)
		}
	}
	return specs, s.Err()
}
