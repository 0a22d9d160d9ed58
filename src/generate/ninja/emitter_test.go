package ninja

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
)

func testToolchain() *core.Toolchain {
	return &core.Toolchain{
		CCompiler:   core.CompilerTool{Path: "/usr/bin/cc", ID: "gcc"},
		CxxCompiler: core.CompilerTool{Path: "/usr/bin/c++", ID: "gcc"},
		Linker:      core.CompilerTool{Path: "/usr/bin/c++", ID: "gcc"},
		Archiver:    core.CompilerTool{Path: "/usr/bin/ar", ID: "gcc"},
		Profiles: map[string]core.Profile{
			"Debug": {Name: "Debug", CxxFlags: []string{"-g", "-O0"}},
		},
	}
}

func TestGenerateWritesCompileAndLinkEdges(t *testing.T) {
	g := graph.New()
	lib := core.NewTarget(core.StaticLibrary, "widgets", "/proj/widgets",
		[]core.Source{core.NewSource("widget.cpp")},
		nil, []string{"/proj/widgets/include"}, nil, nil, nil, nil, nil, nil, nil, nil)
	require.NoError(t, g.AddTarget(lib))

	app := core.NewTarget(core.Executable, "app", "/proj/app",
		[]core.Source{core.NewSource("main.cpp")},
		nil, nil, nil, nil, nil, nil, []*core.Target{lib}, nil, nil, nil)
	require.NoError(t, g.AddTarget(app))

	buildDir := t.TempDir()
	err := Generate(g, testToolchain(), "Debug", buildDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(buildDir, "build.ninja"))
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "rule cxx")
	assert.Contains(t, out, "rule ar")
	assert.Contains(t, out, "rule link_exe")
	assert.Contains(t, out, "-I/proj/widgets/include")
	assert.Contains(t, out, "build app: phony")
}

func TestGenerateRejectsUnknownProfile(t *testing.T) {
	g := graph.New()
	err := Generate(g, testToolchain(), "Release", t.TempDir())
	assert.Error(t, err)
}
