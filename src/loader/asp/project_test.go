package asp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
	"github.com/catapult-build/catapult/src/manifest"
)

// namedStringReader makes a string source identify itself to the lexer the
// same way loader.go's *os.File does in production, so position filenames
// in returned errors are something other than the empty string.
func namedStringReader(name, src string) *namedReader {
	return &namedReader{r: strings.NewReader(src), name: name}
}

func evalViaHost(t *testing.T, src string) (*core.Project, *graph.Graph, error) {
	t.Helper()
	h := NewHost()
	p := core.NewProject("test", "/proj", manifest.Manifest{})
	g := graph.New()
	err := h.EvalBuildScript(namedStringReader("test.catapult", src), "test.catapult", "/proj", p, nil,
		&core.GlobalOptions{CStandard: "c17", CxxStandard: "c++20"}, &core.Toolchain{}, g)
	return p, g, err
}

func TestEvalBuildScriptFreezesModuleGlobals(t *testing.T) {
	// EvalBuildScript itself never hands back the module scope it built (that's
	// deliberately not part of Host's exported surface), so to assert on the
	// scope after the fact this drives the exact two calls EvalBuildScript
	// makes internally (NewModuleScope then interpretModule) rather than
	// duplicating their logic.
	_, _, err := evalViaHost(t, "x = 1\n")
	require.NoError(t, err)

	h := NewHost()
	p := core.NewProject("test", "/proj", manifest.Manifest{})
	g := graph.New()
	s := h.i.NewModuleScope("test.catapult", "/proj", p, g)
	s.Set("GLOBAL", newPyGlobal(&core.GlobalOptions{}, &core.Toolchain{}))
	input, err := parseFileInput(strings.NewReader("x = 1\n"))
	require.NoError(t, err)
	require.NoError(t, interpretModule(s, input.Statements))

	assert.Panics(t, func() { s.Set("x", pyInt(2)) }, "module globals must be frozen once the script finishes running")
}

func TestEvalBuildScriptSyntaxErrorIsScriptSyntax(t *testing.T) {
	_, _, err := evalViaHost(t, "def broken(:\n    pass\n")
	require.Error(t, err)

	var syntaxErr *caterr.ScriptSyntax
	require.True(t, errors.As(err, &syntaxErr), "expected a *caterr.ScriptSyntax in the error chain, got %T: %v", err, err)
	assert.Equal(t, "test.catapult", syntaxErr.File)
	assert.NotZero(t, syntaxErr.Line)
}

func TestEvalBuildScriptEvalErrorIsScriptEval(t *testing.T) {
	_, _, err := evalViaHost(t, "y = undefined_name + 1\n")
	require.Error(t, err)

	var evalErr *caterr.ScriptEval
	require.True(t, errors.As(err, &evalErr), "expected a *caterr.ScriptEval in the error chain, got %T: %v", err, err)
	assert.Equal(t, "test.catapult", evalErr.File)
	assert.NotZero(t, evalErr.Line)
	assert.Contains(t, evalErr.Message, "undefined_name")
}
