package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadFileDecodesPackageAndDependencies(t *testing.T) {
	path := writeJSON(t, "catapult.manifest.json", `{
		"package": {"name": "widgets", "version": "1.2.0"},
		"dependencies": {
			"base": {"version": "^1.0.0", "registry": "default", "channel": "stable"}
		}
	}`)

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "widgets", m.Package.Name)
	assert.Equal(t, "1.2.0", m.Package.Version)
	assert.Equal(t, []string{"base"}, m.DependencyNames())
	assert.Equal(t, "^1.0.0", m.Dependencies["base"].Version)
}

func TestReadFileReturnsErrorForMissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestReadResolvedDependencyMapFileDecodesNestedSubDependencies(t *testing.T) {
	path := writeJSON(t, "catapult.resolved.json", `{
		"net": {
			"dir": "/deps/net",
			"sub_dependencies": {
				"base": {"dir": "/deps/base"}
			}
		}
	}`)

	m, err := ReadResolvedDependencyMapFile(path)
	require.NoError(t, err)
	require.Contains(t, m, "net")
	assert.Equal(t, "/deps/net", m["net"].Dir)
	require.Contains(t, m["net"].SubDependencies, "base")
	assert.Equal(t, "/deps/base", m["net"].SubDependencies["base"].Dir)
}
