package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catapult-build/catapult/src/core"
)

func mustTarget(t *testing.T, kind core.TargetKind, name string, linkPublic, linkPrivate []*core.Target, includePublic []string) *core.Target {
	t.Helper()
	return core.NewTarget(kind, name, "/proj", nil, nil, includePublic, nil, nil, nil, nil, linkPrivate, linkPublic, nil, nil)
}

func TestAddTargetRejectsDuplicateName(t *testing.T) {
	g := New()
	a := mustTarget(t, core.StaticLibrary, "dup", nil, nil, nil)
	require.NoError(t, g.AddTarget(a))

	b := mustTarget(t, core.StaticLibrary, "dup", nil, nil, nil)
	err := g.AddTarget(b)
	assert.Error(t, err)
}

func TestPublicInterfacePropagatesOnlyPublicEdges(t *testing.T) {
	z := mustTarget(t, core.StaticLibrary, "z", nil, nil, []string{"/z/include"})
	b := mustTarget(t, core.StaticLibrary, "b", nil, []*core.Target{z}, []string{"/b/include"})
	a := mustTarget(t, core.Executable, "a", []*core.Target{b}, nil, nil)

	g := New()
	require.NoError(t, g.AddTarget(z))
	require.NoError(t, g.AddTarget(b))
	require.NoError(t, g.AddTarget(a))

	aIface := PublicInterface(a)
	assert.Contains(t, aIface.IncludeDirs, "/b/include")
	assert.NotContains(t, aIface.IncludeDirs, "/z/include")

	bCompile := CompileInterface(b)
	assert.Contains(t, bCompile.IncludeDirs, "/z/include")
}

func TestLinkOrderIsPostOrderDeduplicated(t *testing.T) {
	z := mustTarget(t, core.StaticLibrary, "z", nil, nil, nil)
	b := mustTarget(t, core.StaticLibrary, "b", nil, []*core.Target{z}, nil)
	c := mustTarget(t, core.StaticLibrary, "c", nil, []*core.Target{z}, nil)
	a := mustTarget(t, core.Executable, "a", nil, []*core.Target{b, c}, nil)

	order := LinkOrder(a)
	names := make([]string, len(order))
	for i, t := range order {
		names[i] = t.Name
	}
	// z must come before both b and c (dependency before dependent), and
	// must appear only once despite being reachable via two paths.
	zIdx, bIdx, cIdx := -1, -1, -1
	for i, n := range names {
		switch n {
		case "z":
			zIdx = i
		case "b":
			bIdx = i
		case "c":
			cIdx = i
		}
	}
	require.NotEqual(t, -1, zIdx)
	assert.Less(t, zIdx, bIdx)
	assert.Less(t, zIdx, cIdx)
	count := 0
	for _, n := range names {
		if n == "z" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
