package toolchainrecord

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
	"cc": {"path": "/usr/bin/cc", "id": "gcc", "version": "13.2.0"},
	"cxx": {"path": "/usr/bin/c++", "id": "gcc", "version": "13.2.0"},
	"linker": {"path": "/usr/bin/c++", "id": "gcc"},
	"archiver": {"path": "/usr/bin/ar"},
	"profiles": {
		"Debug": {"cxxflags": ["-g", "-O0"]},
		"Release": {"cxxflags": ["-O2"], "link_flags": ["-s"]}
	}
}`

func writeRecord(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolchain.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadFileDecodesCompilerToolsAndProfiles(t *testing.T) {
	tc, err := ReadFile(writeRecord(t, sampleRecord))
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/cc", tc.CCompiler.Path)
	assert.Equal(t, "gcc", tc.CCompiler.ID)
	assert.Equal(t, int64(13), tc.CCompiler.Version.Major)
	assert.True(t, tc.Linker.IsSet())
	assert.False(t, tc.AsmCompiler.IsSet())

	debug, ok := tc.Profile("Debug")
	require.True(t, ok)
	assert.Equal(t, []string{"-g", "-O0"}, debug.CxxFlags)

	release, ok := tc.Profile("Release")
	require.True(t, ok)
	assert.Equal(t, []string{"-s"}, release.LinkFlags)
}

func TestReadFileReturnsErrorForMissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestReadFileReturnsErrorForMalformedJSON(t *testing.T) {
	_, err := ReadFile(writeRecord(t, `{not json`))
	assert.Error(t, err)
}
