package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alan-2022/alanc/internal/source"
	"github.com/alan-2022/alanc/internal/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()

	s := New(source.New([]byte(src)))

	var toks []token.Token

	for {
		tok := s.Next()
		toks = append(toks, tok)

		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}

	return ks
}

func TestReservedWordsAndIdentifiers(t *testing.T) {
	toks := scan(t, "source P begin relax end")
	require.Equal(t, []token.Kind{
		token.SOURCE, token.ID, token.BEGIN, token.RELAX, token.END, token.EOF,
	}, kinds(toks))
	require.Equal(t, "P", toks[1].Lexeme)
}

func TestNumberLiteral(t *testing.T) {
	toks := scan(t, "12345")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, int32(12345), toks[0].Num)
}

func TestNumberOverflowIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, "2147483648") })
}

func TestNestedCommentsAreSkipped(t *testing.T) {
	toks := scan(t, "{ outer { inner } still outer } relax")
	require.Equal(t, []token.Kind{token.RELAX, token.EOF}, kinds(toks))
}

func TestUnterminatedCommentIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, "{ never closed") })
}

func TestStringEscapes(t *testing.T) {
	toks := scan(t, `"a\nb\tc\"d\\e"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "a\nb\tc\"d\\e", string(toks[0].Str))
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, `"never closed`) })
}

func TestNewlineInStringIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, "\"a\nb\"") })
}

func TestOperatorsAndPunctuation(t *testing.T) {
	toks := scan(t, ":= = <= <> >= < > + - * / , . ; ( ) [ ]")
	require.Equal(t, []token.Kind{
		token.GETS, token.EQUAL, token.LESS_EQUAL, token.NOT_EQUAL,
		token.GREATER_EQUAL, token.LESS, token.GREATER,
		token.PLUS, token.MINUS, token.MULTIPLY, token.DIVIDE,
		token.COMMA, token.CONCATENATE, token.SEMICOLON,
		token.OPEN_PAREN, token.CLOSE_PAREN, token.OPEN_BRACKET, token.CLOSE_BRACKET,
		token.EOF,
	}, kinds(toks))
}

func TestIllegalCharacterIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, "@") })
}

func TestLoneColonIsFatal(t *testing.T) {
	require.Panics(t, func() { scan(t, ":") })
}
