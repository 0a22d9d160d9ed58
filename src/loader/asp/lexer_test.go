package asp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenise runs the lexer to completion and returns every token it produces,
// including the terminal EOF.
func tokenise(t *testing.T, src string) []Token {
	t.Helper()
	l := newLexer(strings.NewReader(src))
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func tokenTypes(toks []Token) []rune {
	types := make([]rune, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexerIdentifiersAndOperators(t *testing.T) {
	toks := tokenise(t, "x = 1 + 2\n")
	require.Len(t, toks, 7)
	assert.Equal(t, Ident, toks[0].Type)
	assert.Equal(t, "x", toks[0].Value)
	assert.Equal(t, rune('='), toks[1].Type)
	assert.Equal(t, Int, toks[2].Type)
	assert.Equal(t, "1", toks[2].Value)
	assert.Equal(t, rune('+'), toks[3].Type)
	assert.Equal(t, Int, toks[4].Type)
	assert.Equal(t, "2", toks[4].Value)
	assert.Equal(t, EOL, toks[5].Type)
	assert.Equal(t, EOF, toks[6].Type)
}

func TestLexerStringLiteralNormalisesQuotes(t *testing.T) {
	toks := tokenise(t, `s = 'hello'` + "\n")
	require.True(t, len(toks) >= 3)
	assert.Equal(t, String, toks[2].Type)
	assert.Equal(t, `"hello"`, toks[2].Value)
}

func TestLexerFStringPrefix(t *testing.T) {
	toks := tokenise(t, `s = f"hello {x}"` + "\n")
	require.True(t, len(toks) >= 3)
	assert.Equal(t, String, toks[2].Type)
	assert.True(t, strings.HasPrefix(toks[2].Value, "f\""))
}

func TestLexerComparisonOperators(t *testing.T) {
	toks := tokenise(t, "a == b\nc != d\ne >= f\n")
	var ops []string
	for _, tok := range toks {
		if tok.Type == LexOperator {
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"==", "!=", ">="}, ops)
}

func TestLexerIndentationProducesUnindent(t *testing.T) {
	toks := tokenise(t, "if x:\n    y = 1\nz = 2\n")
	types := tokenTypes(toks)
	assert.Contains(t, types, Unindent)
}

func TestLexerCommentsAreSkipped(t *testing.T) {
	toks := tokenise(t, "x = 1 # a trailing comment\n")
	for _, tok := range toks {
		assert.NotContains(t, tok.Value, "#")
	}
}

func TestLexerRejectsTabs(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	tokenise(t, "if x:\n\ty = 1\n")
}

func TestLexerNegativeIntegerLiteral(t *testing.T) {
	toks := tokenise(t, "x = -5\n")
	require.True(t, len(toks) >= 3)
	assert.Equal(t, Int, toks[2].Type)
	assert.Equal(t, "-5", toks[2].Value)
}

func TestLexerHexIntegerLiteral(t *testing.T) {
	toks := tokenise(t, "mask = 0x2F\n")
	require.True(t, len(toks) >= 3)
	assert.Equal(t, Int, toks[2].Type)
	assert.Equal(t, "0x2F", toks[2].Value)
}

func TestLexerUnderscoreGroupedIntegerLiteral(t *testing.T) {
	toks := tokenise(t, "big = 1_000_000\n")
	require.True(t, len(toks) >= 3)
	assert.Equal(t, Int, toks[2].Type)
	assert.Equal(t, "1_000_000", toks[2].Value)
}
