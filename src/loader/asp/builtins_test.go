package asp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
)

func TestAddStaticLibraryConstructsAndRegistersTarget(t *testing.T) {
	s := evalModule(t, `
lib = add_static_library(
    name = "widgets",
    sources = ["widget.cpp", "gadget.cpp"],
    include_dirs_public = ["include"],
    defines_private = ["WIDGETS_INTERNAL"],
)
`)
	target, ok := s.LocalLookup("lib").(*pyTarget)
	require.True(t, ok)
	assert.Equal(t, "widgets", target.t.Name)
	assert.Equal(t, core.StaticLibrary, target.t.Kind)
	assert.Len(t, target.t.Sources, 2)
	assert.Equal(t, []string{"/proj/include"}, target.t.IncludeDirsPublic)
	assert.Equal(t, []string{"WIDGETS_INTERNAL"}, target.t.DefinesPrivate)

	registered, ok := s.project.Target("widgets")
	require.True(t, ok)
	assert.Same(t, target.t, registered)
}

func TestAddExecutableLinksAgainstLibrary(t *testing.T) {
	s := evalModule(t, `
lib = add_static_library(name = "widgets", sources = ["widget.cpp"])
app = add_executable(name = "app", sources = ["main.cpp"], link_private = [lib])
`)
	app, ok := s.LocalLookup("app").(*pyTarget)
	require.True(t, ok)
	require.Len(t, app.t.LinkPrivate, 1)
	lib := s.LocalLookup("lib").(*pyTarget)
	assert.Same(t, lib.t, app.t.LinkPrivate[0])
}

func TestLinksArgumentIsSugarForLinkPrivate(t *testing.T) {
	s := evalModule(t, `
lib = add_static_library(name = "widgets", sources = ["widget.cpp"])
app = add_executable(name = "app", sources = ["main.cpp"], links = [lib])
`)
	app := s.LocalLookup("app").(*pyTarget)
	lib := s.LocalLookup("lib").(*pyTarget)
	require.Len(t, app.t.LinkPrivate, 1)
	assert.Same(t, lib.t, app.t.LinkPrivate[0])
}

func TestInterfaceLibraryRejectsSources(t *testing.T) {
	input, err := parseFileInput(strings.NewReader(`add_interface_library(name = "hdrs", sources = ["x.cpp"])` + "\n"))
	require.NoError(t, err)
	s := newTestScope(t)
	assert.Error(t, interpretModule(s, input.Statements))
}

func TestLinkPrivateRejectsStringArgument(t *testing.T) {
	input, err := parseFileInput(strings.NewReader(`app = add_executable(name = "app", sources = ["main.cpp"], link_private = ["widgets"])` + "\n"))
	require.NoError(t, err)
	s := newTestScope(t)
	err = interpretModule(s, input.Statements)
	require.Error(t, err)

	var hostErr *caterr.HostContract
	assert.ErrorAs(t, err, &hostErr)
}

func TestNameIsRequired(t *testing.T) {
	input, err := parseFileInput(strings.NewReader(`add_static_library(sources = ["a.cpp"])` + "\n"))
	require.NoError(t, err)
	s := newTestScope(t)
	assert.Error(t, interpretModule(s, input.Statements))
}

func TestSourcesDefaultToEmptyList(t *testing.T) {
	s := evalModule(t, `lib = add_interface_library(name = "hdrs", include_dirs_public = ["include"])`+"\n")
	target := s.LocalLookup("lib").(*pyTarget)
	assert.Empty(t, target.t.Sources)
	assert.Equal(t, []string{"/proj/include"}, target.t.IncludeDirsPublic)
}

func TestRangeZipAndEnumerateBuiltins(t *testing.T) {
	s := evalModule(t, `
a = [n for n in range(3)]
b = [n for n in range(1, 4)]
c = [n for n in range(0, 10, 5)]
pairs = zip([1, 2], ["x", "y"])
pairs2 = [p for p in enumerate(["x", "y"])]
`)
	assert.Equal(t, pyList{pyInt(0), pyInt(1), pyInt(2)}, s.LocalLookup("a"))
	assert.Equal(t, pyList{pyInt(1), pyInt(2), pyInt(3)}, s.LocalLookup("b"))
	assert.Equal(t, pyList{pyInt(0), pyInt(5)}, s.LocalLookup("c"))
	assert.Equal(t, pyList{pyList{pyInt(1), pyString("x")}, pyList{pyInt(2), pyString("y")}}, s.LocalLookup("pairs"))
	assert.Equal(t, pyList{pyList{pyInt(0), pyString("x")}, pyList{pyInt(1), pyString("y")}}, s.LocalLookup("pairs2"))
}
