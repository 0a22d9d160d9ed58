package asp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
	"github.com/catapult-build/catapult/src/manifest"
)

// evalModule parses and evaluates src as a module, returning the scope its
// top-level statements ran in so the test can inspect bound names.
func evalModule(t *testing.T, src string) *scope {
	t.Helper()
	input, err := parseFileInput(strings.NewReader(src))
	require.NoError(t, err)
	i := newInterpreter()
	p := core.NewProject("test", "/proj", manifest.Manifest{})
	s := i.NewModuleScope("test.catapult", "/proj", p, graph.New())
	require.NoError(t, interpretModule(s, input.Statements))
	return s
}

// newTestScope builds a fresh module scope for tests that need to construct
// their own statements (e.g. to assert on evaluation errors) rather than
// going through evalModule's require.NoError.
func newTestScope(t *testing.T) *scope {
	t.Helper()
	i := newInterpreter()
	p := core.NewProject("test", "/proj", manifest.Manifest{})
	return i.NewModuleScope("test.catapult", "/proj", p, graph.New())
}

func TestHexAndUnderscoreSeparatedIntLiterals(t *testing.T) {
	s := evalModule(t, "mask = 0x2F\nbig = 1_000_000\n")
	assert.Equal(t, pyInt(47), s.LocalLookup("mask"))
	assert.Equal(t, pyInt(1000000), s.LocalLookup("big"))
}

func TestArithmeticAndComparison(t *testing.T) {
	s := evalModule(t, "x = 2 + 3 * 4\ny = x > 10\n")
	assert.Equal(t, pyInt(14), s.LocalLookup("x"))
	assert.Equal(t, True, s.LocalLookup("y"))
}

func TestIfElifElse(t *testing.T) {
	s := evalModule(t, `
def classify(n):
    if n < 0:
        return "negative"
    elif n == 0:
        return "zero"
    else:
        return "positive"

a = classify(-1)
b = classify(0)
c = classify(5)
`)
	assert.Equal(t, pyString("negative"), s.LocalLookup("a"))
	assert.Equal(t, pyString("zero"), s.LocalLookup("b"))
	assert.Equal(t, pyString("positive"), s.LocalLookup("c"))
}

func TestForLoopAndContinue(t *testing.T) {
	s := evalModule(t, `
total = 0
for n in [1, 2, 3, 4, 5]:
    if n == 3:
        continue
    total += n
`)
	assert.Equal(t, pyInt(1+2+4+5), s.LocalLookup("total"))
}

func TestListComprehension(t *testing.T) {
	s := evalModule(t, "squares = [n * n for n in [1, 2, 3]]\n")
	assert.Equal(t, pyList{pyInt(1), pyInt(4), pyInt(9)}, s.LocalLookup("squares"))
}

func TestListComprehensionWithFilter(t *testing.T) {
	s := evalModule(t, "evens = [n for n in [1, 2, 3, 4, 5, 6] if n % 2 == 0]\n")
	assert.Equal(t, pyList{pyInt(2), pyInt(4), pyInt(6)}, s.LocalLookup("evens"))
}

func TestDictAndProperty(t *testing.T) {
	s := evalModule(t, `
d = {"a": 1, "b": 2}
keys = sorted(d.keys())
`)
	d, ok := s.LocalLookup("d").(pyDict)
	require.True(t, ok)
	assert.Equal(t, pyInt(1), d["a"])
	assert.Equal(t, pyList{pyString("a"), pyString("b")}, s.LocalLookup("keys"))
}

func TestFunctionDefaultArgument(t *testing.T) {
	s := evalModule(t, `
def greet(name, greeting="hello"):
    return greeting + " " + name

a = greet("world")
b = greet("world", greeting="hi")
`)
	assert.Equal(t, pyString("hello world"), s.LocalLookup("a"))
	assert.Equal(t, pyString("hi world"), s.LocalLookup("b"))
}

func TestStringMethods(t *testing.T) {
	s := evalModule(t, `
a = "  Hello ".strip().lower()
b = "-".join(["x", "y", "z"])
`)
	assert.Equal(t, pyString("hello"), s.LocalLookup("a"))
	assert.Equal(t, pyString("x-y-z"), s.LocalLookup("b"))
}

func TestModuleGlobalsFrozenAfterEvaluation(t *testing.T) {
	// evalModule runs the statements through interpretModule, the same
	// entry point the project loader uses; the module scope must come back
	// already frozen, with no separate call needed.
	s := evalModule(t, "x = 1\n")
	assert.Panics(t, func() { s.Set("x", pyInt(2)) })
}

func TestNameErrorOnUndefinedVariable(t *testing.T) {
	input, err := parseFileInput(strings.NewReader("y = x + 1\n"))
	require.NoError(t, err)
	s := newTestScope(t)
	assert.Error(t, interpretModule(s, input.Statements))
}
