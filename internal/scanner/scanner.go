// Package scanner implements ALAN-2022's lexer (spec.md §4.2): it turns
// the rune stream from internal/source into a stream of internal/token
// tokens, skipping whitespace and nested comments along the way.
package scanner

import (
	"github.com/alan-2022/alanc/internal/diag"
	"github.com/alan-2022/alanc/internal/source"
	"github.com/alan-2022/alanc/internal/token"
)

const maxInitialStringLen = 1024

// Scanner produces one token per call to Next. At EOF it returns an EOF
// token indefinitely.
type Scanner struct {
	r *source.Reader
}

// New wraps a source reader in a Scanner.
func New(r *source.Reader) *Scanner {
	return &Scanner{r: r}
}

// Next consumes whitespace and comments and returns the next token. Its
// Pos is always the position of the token's first character.
func (s *Scanner) Next() token.Token {
	s.skipSpacesAndComments()

	pos := s.r.Pos()
	ch := s.r.Peek()

	switch {
	case ch == source.EOF:
		return token.Token{Kind: token.EOF, Pos: pos}
	case isAlpha(ch) || ch == '_':
		return s.word(pos)
	case isDigit(ch):
		return s.number(pos)
	case ch == '"':
		return s.string(pos)
	}

	return s.punct(pos)
}

func (s *Scanner) skipSpacesAndComments() {
	for {
		switch s.r.Peek() {
		case ' ', '\t', '\r', '\n':
			s.r.Advance()

			continue
		case '{':
			s.skipComment()

			continue
		}

		return
	}
}

// skipComment consumes a {...} comment, which may be nested arbitrarily
// deep. An unterminated comment is fatal at the position of the
// outermost opening brace (spec.md §4.2).
func (s *Scanner) skipComment() {
	start := s.r.Pos()
	depth := 0

	for {
		switch s.r.Peek() {
		case source.EOF:
			diag.Fatalf(diag.Lexical, start, "comment not closed")
		case '{':
			depth++
			s.r.Advance()
		case '}':
			depth--
			s.r.Advance()

			if depth == 0 {
				return
			}
		default:
			s.r.Advance()
		}
	}
}

func (s *Scanner) word(pos token.Pos) token.Token {
	var b []byte

	for isAlpha(s.r.Peek()) || isDigit(s.r.Peek()) || s.r.Peek() == '_' {
		if len(b) >= token.MaxIdentLength {
			diag.Fatalf(diag.Lexical, pos, "identifier too long")
		}

		b = append(b, byte(s.r.Peek()))
		s.r.Advance()
	}

	word := string(b)

	if kind, ok := token.Lookup(word); ok {
		return token.Token{Kind: kind, Pos: pos}
	}

	return token.Token{Kind: token.ID, Pos: pos, Lexeme: word}
}

func (s *Scanner) number(pos token.Pos) token.Token {
	var n int32

	for isDigit(s.r.Peek()) {
		d := int32(s.r.Peek() - '0')

		if n > (1<<31-1-d)/10 {
			diag.Fatalf(diag.Lexical, pos, "number too large")
		}

		n = n*10 + d
		s.r.Advance()
	}

	return token.Token{Kind: token.NUMBER, Pos: pos, Num: n}
}

func (s *Scanner) string(pos token.Pos) token.Token {
	s.r.Advance() // opening quote

	buf := make([]byte, 0, maxInitialStringLen)

	for {
		ch := s.r.Peek()

		switch {
		case ch == '"':
			s.r.Advance()

			return token.Token{Kind: token.STRING, Pos: pos, Str: buf}
		case ch == source.EOF:
			diag.Fatalf(diag.Lexical, pos, "string not closed")
		case ch == '\n':
			diag.Fatalf(diag.Lexical, pos, "newline in string")
		case ch == '\\':
			escPos := s.r.Pos()
			s.r.Advance()

			switch s.r.Peek() {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			default:
				diag.Fatalf(diag.Lexical, escPos, "illegal escape code '\\%c' in string", s.r.Peek())
			}

			s.r.Advance()
		case ch > 126 || ch < 32:
			diag.Fatalf(diag.Lexical, pos, "non-printable character (ASCII #%d) in string", ch)
		default:
			buf = append(buf, byte(ch))
			s.r.Advance()
		}
	}
}

func (s *Scanner) punct(pos token.Pos) token.Token {
	ch := s.r.Peek()
	s.r.Advance()

	switch ch {
	case '=':
		return token.Token{Kind: token.EQUAL, Pos: pos}
	case '+':
		return token.Token{Kind: token.PLUS, Pos: pos}
	case '-':
		return token.Token{Kind: token.MINUS, Pos: pos}
	case '*':
		return token.Token{Kind: token.MULTIPLY, Pos: pos}
	case '/':
		return token.Token{Kind: token.DIVIDE, Pos: pos}
	case ',':
		return token.Token{Kind: token.COMMA, Pos: pos}
	case '.':
		return token.Token{Kind: token.CONCATENATE, Pos: pos}
	case ';':
		return token.Token{Kind: token.SEMICOLON, Pos: pos}
	case '(':
		return token.Token{Kind: token.OPEN_PAREN, Pos: pos}
	case ')':
		return token.Token{Kind: token.CLOSE_PAREN, Pos: pos}
	case '[':
		return token.Token{Kind: token.OPEN_BRACKET, Pos: pos}
	case ']':
		return token.Token{Kind: token.CLOSE_BRACKET, Pos: pos}
	case '<':
		switch s.r.Peek() {
		case '=':
			s.r.Advance()

			return token.Token{Kind: token.LESS_EQUAL, Pos: pos}
		case '>':
			s.r.Advance()

			return token.Token{Kind: token.NOT_EQUAL, Pos: pos}
		default:
			return token.Token{Kind: token.LESS, Pos: pos}
		}
	case '>':
		if s.r.Peek() == '=' {
			s.r.Advance()

			return token.Token{Kind: token.GREATER_EQUAL, Pos: pos}
		}

		return token.Token{Kind: token.GREATER, Pos: pos}
	case ':':
		if s.r.Peek() == '=' {
			s.r.Advance()

			return token.Token{Kind: token.GETS, Pos: pos}
		}

		diag.Fatalf(diag.Lexical, pos, "illegal character ':'")
	default:
		diag.Fatalf(diag.Lexical, pos, "illegal character %q", ch)
	}

	panic("unreachable")
}

func isAlpha(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
