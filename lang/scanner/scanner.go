// Package scanner tokenizes slo source text for the compiler to consume. It
// is pull-based: construct a Scanner with Init, then call Scan repeatedly
// until it returns a token.EOF token.
package scanner

import (
	"fmt"

	"github.com/mhr3/slo/lang/token"
)

// Scanner turns a source byte slice into a stream of tokens. The zero value
// is not usable; call Init first.
type Scanner struct {
	src  []byte
	cur  byte // current byte, 0 at EOF
	off  int  // offset of cur in src
	roff int  // offset of the byte following cur
	line int  // 1-based line of cur
}

// Init (re)initializes the scanner to tokenize src.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.off = 0
	s.roff = 0
	s.line = 1
	s.cur = 0
	if len(src) > 0 {
		s.cur = src[0]
		s.roff = 1
	}
}

// peek returns the byte following cur, or 0 at EOF.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) atEnd() bool {
	return s.off >= len(s.src)
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = 0
		return
	}
	s.off = s.roff
	s.cur = s.src[s.roff]
	s.roff++
}

func (s *Scanner) match(b byte) bool {
	if s.atEnd() || s.cur != b {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		switch s.cur {
		case ' ', '\t', '\r', '\n':
			s.advance()
		case '/':
			if s.peek() == '/' {
				for !s.atEnd() && s.cur != '\n' {
					s.advance()
				}
				continue
			}
			return
		case '#':
			for !s.atEnd() && s.cur != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

// Scan returns the next token. Once it returns a token.EOF token, every
// subsequent call also returns token.EOF.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespaceAndComments()

	start := s.off
	line := s.line

	if s.atEnd() {
		return token.Token{Kind: token.EOF, Start: start, Line: line}
	}

	c := s.cur

	switch {
	case isAlpha(c):
		return s.scanIdent(start, line)
	case isDigit(c) || (c == '.' && isDigit(s.peek())):
		return s.scanNumber(start, line)
	case c == '"':
		return s.scanString(start, line)
	}

	s.advance()
	mk := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Start: start, Length: s.off - start, Line: line}
	}

	switch c {
	case '(':
		return mk(token.LPAREN)
	case ')':
		return mk(token.RPAREN)
	case '[':
		return mk(token.LBRACK)
	case ']':
		return mk(token.RBRACK)
	case '{':
		return mk(token.LBRACE)
	case '}':
		return mk(token.RBRACE)
	case ';':
		return mk(token.SEMI)
	case ',':
		return mk(token.COMMA)
	case '.':
		return mk(token.DOT)
	case '%':
		return mk(token.PERCENT)
	case ':':
		return mk(token.COLON)
	case '+':
		if s.match('+') {
			return mk(token.PLUS_PLUS)
		}
		if s.match('=') {
			return mk(token.PLUS_EQ)
		}
		return mk(token.PLUS)
	case '-':
		if s.match('-') {
			return mk(token.MINUS_MINUS)
		}
		if s.match('=') {
			return mk(token.MINUS_EQ)
		}
		return mk(token.MINUS)
	case '*':
		if s.match('*') {
			return mk(token.STAR_STAR)
		}
		if s.match('=') {
			return mk(token.STAR_EQ)
		}
		return mk(token.STAR)
	case '/':
		if s.match('=') {
			return mk(token.SLASH_EQ)
		}
		return mk(token.SLASH)
	case '!':
		if s.match('=') {
			return mk(token.BANG_EQ)
		}
		return mk(token.BANG)
	case '=':
		if s.match('=') {
			return mk(token.EQ_EQ)
		}
		return mk(token.EQ)
	case '<':
		if s.match('=') {
			return mk(token.LE)
		}
		return mk(token.LT)
	case '>':
		if s.match('=') {
			return mk(token.GE)
		}
		return mk(token.GT)
	default:
		t := mk(token.ILLEGAL)
		t.Lexeme = fmt.Sprintf("unexpected character %q", c)
		return t
	}
}

func (s *Scanner) scanIdent(start, line int) token.Token {
	for !s.atEnd() && isAlnum(s.cur) {
		s.advance()
	}
	lexeme := string(s.src[start:s.off])
	return token.Token{Kind: token.Lookup(lexeme), Start: start, Length: s.off - start, Line: line, Lexeme: lexeme}
}

func (s *Scanner) scanNumber(start, line int) token.Token {
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(s.peek()) {
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	lexeme := string(s.src[start:s.off])
	return token.Token{Kind: token.NUMBER, Start: start, Length: s.off - start, Line: line, Lexeme: lexeme}
}

// scanString scans a double-quoted string literal. No escape processing
// happens here: the compiler resolves escapes when it builds the string
// constant. An unterminated string yields an ILLEGAL token.
func (s *Scanner) scanString(start, line int) token.Token {
	s.advance() // opening quote
	for !s.atEnd() && s.cur != '"' {
		if s.cur == '\\' && s.peek() != 0 {
			s.advance()
		}
		s.advance()
	}
	if s.atEnd() {
		t := token.Token{Kind: token.ILLEGAL, Start: start, Length: s.off - start, Line: line}
		t.Lexeme = "unterminated string"
		return t
	}
	s.advance() // closing quote
	// Lexeme is the literal's contents, quotes excluded.
	lexeme := string(s.src[start+1 : s.off-1])
	return token.Token{Kind: token.STRING, Start: start, Length: s.off - start, Line: line, Lexeme: lexeme}
}
