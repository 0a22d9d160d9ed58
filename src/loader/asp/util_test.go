package asp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseStatements(t *testing.T, src string) []*Statement {
	t.Helper()
	input, err := parseFileInput(strings.NewReader(src))
	require.NoError(t, err)
	return input.Statements
}

func TestFindTargetLocatesCallByName(t *testing.T) {
	statements := parseStatements(t, `
add_static_library(name = "widgets", sources = ["a.cpp"])
add_executable(name = "app", sources = ["main.cpp"])
`)
	stmt := FindTarget(statements, "app")
	require.NotNil(t, stmt)
	assert.Equal(t, "add_executable", stmt.Ident.Name)
}

func TestFindTargetReturnsNilForUnknownName(t *testing.T) {
	statements := parseStatements(t, `add_static_library(name = "widgets", sources = ["a.cpp"])`+"\n")
	assert.Nil(t, FindTarget(statements, "nonexistent"))
}

func TestFindTargetIgnoresNonCallStatements(t *testing.T) {
	statements := parseStatements(t, "x = 1\n")
	assert.Nil(t, FindTarget(statements, "x"))
}

func TestFindArgumentReturnsNamedArgument(t *testing.T) {
	statements := parseStatements(t, `add_static_library(name = "widgets", sources = ["a.cpp"])`+"\n")
	arg := FindArgument(statements[0], "sources")
	require.NotNil(t, arg)
	require.NotNil(t, arg.Value.Val)
	require.NotNil(t, arg.Value.Val.List)
}

func TestFindArgumentReturnsNilForMissingArgument(t *testing.T) {
	statements := parseStatements(t, `add_static_library(name = "widgets")`+"\n")
	assert.Nil(t, FindArgument(statements[0], "link_private"))
}

func TestNextStatementAndExtents(t *testing.T) {
	statements := parseStatements(t, `
add_static_library(name = "widgets", sources = ["a.cpp"])
add_executable(name = "app", sources = ["main.cpp"])
`)
	next := NextStatement(statements, statements[0])
	require.NotNil(t, next)
	assert.Equal(t, "add_executable", next.Ident.Name)

	start, end := GetExtents(statements, statements[0], 10)
	assert.Equal(t, statements[0].Pos.Line, start)
	assert.Equal(t, statements[1].Pos.Line-1, end)

	_, lastEnd := GetExtents(statements, statements[1], 10)
	assert.Equal(t, 10, lastEnd)
}

func TestParseIntLiteralDecimal(t *testing.T) {
	i, err := parseIntLiteral("42")
	require.NoError(t, err)
	assert.Equal(t, 42, i)
}

func TestParseIntLiteralNegative(t *testing.T) {
	i, err := parseIntLiteral("-7")
	require.NoError(t, err)
	assert.Equal(t, -7, i)
}

func TestParseIntLiteralHex(t *testing.T) {
	i, err := parseIntLiteral("0x2F")
	require.NoError(t, err)
	assert.Equal(t, 47, i)
}

func TestParseIntLiteralUnderscoreSeparated(t *testing.T) {
	i, err := parseIntLiteral("1_000_000")
	require.NoError(t, err)
	assert.Equal(t, 1000000, i)
}

func TestParseIntLiteralDoesNotTreatLeadingZeroAsOctal(t *testing.T) {
	i, err := parseIntLiteral("010")
	require.NoError(t, err)
	assert.Equal(t, 10, i)
}
