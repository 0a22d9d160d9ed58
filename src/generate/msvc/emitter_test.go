package msvc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
)

func testToolchain() *core.Toolchain {
	return &core.Toolchain{
		CCompiler:   core.CompilerTool{Path: "cl.exe"},
		CxxCompiler: core.CompilerTool{Path: "cl.exe"},
		Linker:      core.CompilerTool{Path: "link.exe"},
		Archiver:    core.CompilerTool{Path: "lib.exe"},
		Profiles: map[string]core.Profile{
			"Debug":   {Name: "Debug"},
			"Release": {Name: "Release"},
		},
	}
}

func TestGenerateWritesSolutionAndProjects(t *testing.T) {
	g := graph.New()
	lib := core.NewTarget(core.StaticLibrary, "widgets", "widgets",
		[]core.Source{core.NewSource("widget.cpp")},
		nil, []string{"include"}, nil, nil, nil, nil, nil, nil, nil, nil)
	require.NoError(t, g.AddTarget(lib))

	app := core.NewTarget(core.Executable, "app", "app",
		[]core.Source{core.NewSource("main.cpp")},
		nil, nil, nil, nil, nil, nil, nil, []*core.Target{lib}, nil, nil)
	require.NoError(t, g.AddTarget(app))

	outDir := t.TempDir()
	require.NoError(t, Generate(g, testToolchain(), outDir, "catapult"))

	sln, err := os.ReadFile(filepath.Join(outDir, "catapult.sln"))
	require.NoError(t, err)
	slnText := string(sln)
	assert.Contains(t, slnText, "\r\n")
	assert.Contains(t, slnText, `"widgets"`)
	assert.Contains(t, slnText, `"app"`)
	assert.Contains(t, slnText, "Debug|x64 = Debug|x64")
	assert.Contains(t, slnText, "Release|x64 = Release|x64")

	appProj, err := os.ReadFile(filepath.Join(outDir, "app", "app.vcxproj"))
	require.NoError(t, err)
	appText := string(appProj)
	assert.Contains(t, appText, "<ConfigurationType>Application</ConfigurationType>")
	assert.Contains(t, appText, "ProjectReference")

	libProj, err := os.ReadFile(filepath.Join(outDir, "widgets", "widgets.vcxproj"))
	require.NoError(t, err)
	assert.Contains(t, string(libProj), "<ConfigurationType>StaticLibrary</ConfigurationType>")
}

func TestGenerateRejectsToolchainWithNoProfiles(t *testing.T) {
	g := graph.New()
	tc := &core.Toolchain{}
	err := Generate(g, tc, t.TempDir(), "catapult")
	require.Error(t, err)
	var mismatch *caterr.ToolchainMismatch
	assert.True(t, errors.As(err, &mismatch))
}

func TestRejectProfileFlagRejectsNonEmptyProfile(t *testing.T) {
	assert.Error(t, RejectProfileFlag("Debug"))
	assert.NoError(t, RejectProfileFlag(""))
}
