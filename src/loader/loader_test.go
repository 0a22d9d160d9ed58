package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
	"github.com/catapult-build/catapult/src/loader/asp"
	"github.com/catapult-build/catapult/src/manifest"
)

func TestTopoSortOrdersDependenciesBeforeDependents(t *testing.T) {
	resolved := manifest.ResolvedDependencyMap{
		"app": {
			Dir: "/app",
			SubDependencies: manifest.ResolvedDependencyMap{
				"net": {
					Dir: "/net",
					SubDependencies: manifest.ResolvedDependencyMap{
						"base": {Dir: "/base"},
					},
				},
				"base": {Dir: "/base"},
			},
		},
	}
	order, err := TopoSort(resolved)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "net", "app"}, order)
}

func TestTopoSortIsDeterministicAcrossEqualWaves(t *testing.T) {
	resolved := manifest.ResolvedDependencyMap{
		"zeta":  {Dir: "/zeta"},
		"alpha": {Dir: "/alpha"},
		"mid":   {Dir: "/mid"},
	}
	order, err := TopoSort(resolved)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
}

func TestTopoSortDetectsCycle(t *testing.T) {
	resolved := manifest.ResolvedDependencyMap{
		"a": {
			Dir: "/a",
			SubDependencies: manifest.ResolvedDependencyMap{
				"b": {
					Dir: "/b",
					SubDependencies: manifest.ResolvedDependencyMap{
						"a": {Dir: "/a"},
					},
				},
			},
		},
	}
	_, err := TopoSort(resolved)
	assert.Error(t, err)
}

func TestTopoSortCollapsesDiamondDependency(t *testing.T) {
	base := manifest.ResolvedDependency{Dir: "/base"}
	resolved := manifest.ResolvedDependencyMap{
		"app": {
			Dir: "/app",
			SubDependencies: manifest.ResolvedDependencyMap{
				"left":  {Dir: "/left", SubDependencies: manifest.ResolvedDependencyMap{"base": base}},
				"right": {Dir: "/right", SubDependencies: manifest.ResolvedDependencyMap{"base": base}},
			},
		},
	}
	order, err := TopoSort(resolved)
	require.NoError(t, err)
	require.Len(t, order, 4)
	assert.Equal(t, "base", order[0])
	assert.Equal(t, "app", order[3])
}

// writeProject creates dir/build.catapult with the given contents, for
// tests that exercise LoadAll end to end against a real filesystem.
func writeProject(t *testing.T, dir, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, BuildScriptName), []byte(script), 0o644))
}

func testOptions(manifests map[string]manifest.Manifest) Options {
	return Options{
		Host: asp.NewHost(),
		ReadManifest: func(dir string) (manifest.Manifest, error) {
			return manifests[dir], nil
		},
		GlobalOptions: &core.GlobalOptions{CStandard: "c17", CxxStandard: "c++20", SelectedProfile: "Debug"},
		Toolchain:     &core.Toolchain{CCompiler: core.CompilerTool{Path: "/usr/bin/cc", ID: "gcc"}},
		Graph:         graph.New(),
	}
}

func TestLoadAllEvaluatesDependencyBeforeRoot(t *testing.T) {
	root := t.TempDir()
	base := t.TempDir()

	writeProject(t, base, `add_static_library(name = "base", sources = ["base.cpp"], include_dirs_public = ["include"])`+"\n")
	writeProject(t, root, `
app = add_executable(name = "app", sources = ["main.cpp"], link_private = [base.base])
`)

	opts := testOptions(map[string]manifest.Manifest{
		base: {Package: manifest.PackageInfo{Name: "base"}},
		root: {
			Package:      manifest.PackageInfo{Name: "app"},
			Dependencies: map[string]manifest.DependencyRequirement{"base": {Version: "1.0.0"}},
		},
	})

	resolved := manifest.ResolvedDependencyMap{
		"base": {Dir: base},
	}

	p, err := LoadAll("app", root, resolved, opts)
	require.NoError(t, err)
	require.Len(t, p.Targets, 1)
	app := p.Targets[0]
	assert.Equal(t, "app", app.Name)
	require.Len(t, app.LinkPrivate, 1)
	assert.Equal(t, "base", app.LinkPrivate[0].Name)
}

func TestLoadAllReportsEveryMissingDependencyDirectory(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `add_executable(name = "app", sources = ["main.cpp"])`+"\n")

	opts := testOptions(map[string]manifest.Manifest{
		root: {Package: manifest.PackageInfo{Name: "app"}},
	})

	resolved := manifest.ResolvedDependencyMap{
		"missing-one": {Dir: filepath.Join(root, "does-not-exist-1")},
		"missing-two": {Dir: filepath.Join(root, "does-not-exist-2")},
	}

	_, err := LoadAll("app", root, resolved, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-one")
	assert.Contains(t, err.Error(), "missing-two")
}

func TestLoadProjectRejectsUnresolvedDeclaredDependency(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `add_executable(name = "app", sources = ["main.cpp"])`+"\n")

	opts := testOptions(map[string]manifest.Manifest{
		root: {
			Package:      manifest.PackageInfo{Name: "app"},
			Dependencies: map[string]manifest.DependencyRequirement{"missing": {Version: "1.0.0"}},
		},
	})

	_, err := loadProject("app", root, map[string]*core.Project{}, opts)
	assert.Error(t, err)
}

func TestLoadProjectReturnsIOErrorForMissingBuildScript(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(map[string]manifest.Manifest{dir: {}})
	_, err := loadProject("lonely", dir, nil, opts)
	assert.Error(t, err)
}
