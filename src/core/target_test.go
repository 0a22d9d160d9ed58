package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTargetCopiesSlicesSoCallerMutationsDoNotLeak(t *testing.T) {
	sources := []Source{NewSource("a.cpp")}
	includes := []string{"/inc"}

	target := NewTarget(StaticLibrary, "lib", "/proj", sources, includes, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	sources[0] = NewSource("b.cpp")
	includes[0] = "/mutated"

	assert.Equal(t, "a.cpp", target.Sources[0].Path)
	assert.Equal(t, "/inc", target.IncludeDirsPrivate[0])
}

func TestAllLinksListsPublicBeforePrivateWithoutDuplicates(t *testing.T) {
	shared := NewTarget(StaticLibrary, "shared", "/proj", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	pub := NewTarget(StaticLibrary, "pub", "/proj", nil, nil, nil, nil, nil, nil, nil, nil, []*Target{shared}, nil, nil)
	priv := NewTarget(StaticLibrary, "priv", "/proj", nil, nil, nil, nil, nil, nil, nil, []*Target{shared}, nil, nil, nil)
	app := NewTarget(Executable, "app", "/proj", nil, nil, nil, nil, nil, nil, nil, []*Target{priv}, []*Target{pub}, nil, nil)

	links := app.AllLinks()
	assert.Equal(t, []*Target{pub, priv}, links)
}

func TestIsLinkedPubliclyDistinguishesLinkLists(t *testing.T) {
	pub := NewTarget(StaticLibrary, "pub", "/proj", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	priv := NewTarget(StaticLibrary, "priv", "/proj", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	app := NewTarget(Executable, "app", "/proj", nil, nil, nil, nil, nil, nil, nil, []*Target{priv}, []*Target{pub}, nil, nil)

	assert.True(t, app.IsLinkedPublicly(pub))
	assert.False(t, app.IsLinkedPublicly(priv))
}
