package asp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/manifest"
)

func TestPyTargetPropertyAndIdentity(t *testing.T) {
	t1 := core.NewTarget(core.StaticLibrary, "widgets", "/proj", nil,
		nil, []string{"/proj/include"}, nil, []string{"WIDGETS"}, nil, nil, nil, nil, nil, nil)
	p1 := newPyTarget(t1)
	p2 := newPyTarget(t1)
	other := newPyTarget(core.NewTarget(core.StaticLibrary, "other", "/proj", nil,
		nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	assert.Equal(t, pyString("widgets"), p1.Property(nil, "name"))
	assert.Equal(t, pyString("static_library"), p1.Property(nil, "kind"))
	assert.Equal(t, pyFrozenList{pyList{pyString("/proj/include")}}, p1.Property(nil, "include_dirs_public"))
	assert.Equal(t, pyFrozenList{pyList{pyString("WIDGETS")}}, p1.Property(nil, "defines_public"))

	assert.Equal(t, True, p1.Operator(Equal, p2))
	assert.Equal(t, False, p1.Operator(Equal, other))
	assert.Equal(t, True, p1.Operator(NotEqual, other))
}

func TestPyDependencyHandleExposesTargetsAndIncludeDirs(t *testing.T) {
	p := core.NewProject("widgets", "/dep", manifest.Manifest{})
	target := core.NewTarget(core.StaticLibrary, "widgets", "/dep", nil,
		nil, []string{"/dep/include"}, nil, nil, nil, nil, nil, nil, nil, nil)
	p.AddTarget(target)
	handle := core.NewDependencyHandle(p)
	ph := newPyDependencyHandle(handle)

	assert.Equal(t, pyFrozenList{pyList{pyString("/dep/include")}}, ph.Property(nil, "include_dirs"))
	got, ok := ph.Property(nil, "widgets").(*pyTarget)
	require.True(t, ok)
	assert.Same(t, target, got.t)
}

func TestPyToolchainExposesToolsAndProfiles(t *testing.T) {
	tc := &core.Toolchain{
		CCompiler:   core.CompilerTool{Path: "/usr/bin/cc", ID: "gcc", Version: core.NewToolVersion("12.2.0")},
		CxxCompiler: core.CompilerTool{Path: "/usr/bin/c++", ID: "gcc", Version: core.NewToolVersion("12.2.0")},
		Profiles: map[string]core.Profile{
			"debug": {Name: "debug", CFlags: []string{"-g"}, LinkFlags: []string{"-rdynamic"}},
		},
	}
	pt := newPyToolchain(tc)

	cc, ok := pt.Property(nil, "cc").(*pyCompilerTool)
	require.True(t, ok)
	assert.True(t, cc.IsTruthy())
	assert.Equal(t, pyString("/usr/bin/cc"), cc.Property(nil, "path"))
	assert.Equal(t, pyString("gcc"), cc.Property(nil, "id"))

	asmTool, ok := pt.Property(nil, "asm").(*pyCompilerTool)
	require.True(t, ok)
	assert.False(t, asmTool.IsTruthy())

	profile, ok := pt.Property(nil, "debug").(*pyProfile)
	require.True(t, ok)
	assert.Equal(t, pyFrozenList{pyList{pyString("-g")}}, profile.Property(nil, "cflags"))
	assert.Equal(t, pyFrozenList{pyList{pyString("-rdynamic")}}, profile.Property(nil, "link_flags"))
}

func TestPyGlobalOptionsExposesFields(t *testing.T) {
	opts := &core.GlobalOptions{
		CStandard:       "c17",
		CxxStandard:     "c++20",
		SelectedProfile: "release",
		TargetPlatform:  "linux-x86_64",
	}
	pg := newPyGlobalOptions(opts)
	assert.Equal(t, pyString("c17"), pg.Property(nil, "c_standard"))
	assert.Equal(t, pyString("c++20"), pg.Property(nil, "cxx_standard"))
	assert.Equal(t, pyString("release"), pg.Property(nil, "selected_profile"))
	assert.Equal(t, pyString("linux-x86_64"), pg.Property(nil, "target_platform"))
}
