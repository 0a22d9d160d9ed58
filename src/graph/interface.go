package graph

import "github.com/catapult-build/catapult/src/core"

// An Interface is the flattened set of requirements that propagate to a
// consumer of a target, accumulated by a depth-first walk of the graph.
// Every slice is de-duplicated by first occurrence, matching the teacher's
// own convention for include/define accumulation.
type Interface struct {
	IncludeDirs  []string
	Defines      []string
	CompileFlags []string
	LinkFlags    []string
	LinkTargets  []*core.Target
}

type interfaceBuilder struct {
	iface Interface
	seenIncludeDirs  map[string]bool
	seenDefines      map[string]bool
	seenCompileFlags map[string]bool
	seenLinkFlags    map[string]bool
	seenLinkTargets  map[core.TargetID]bool
}

func newInterfaceBuilder() *interfaceBuilder {
	return &interfaceBuilder{
		seenIncludeDirs:  make(map[string]bool),
		seenDefines:      make(map[string]bool),
		seenCompileFlags: make(map[string]bool),
		seenLinkFlags:    make(map[string]bool),
		seenLinkTargets:  make(map[core.TargetID]bool),
	}
}

func (b *interfaceBuilder) addIncludeDirs(dirs []string) {
	for _, d := range dirs {
		if !b.seenIncludeDirs[d] {
			b.seenIncludeDirs[d] = true
			b.iface.IncludeDirs = append(b.iface.IncludeDirs, d)
		}
	}
}

func (b *interfaceBuilder) addDefines(defines []string) {
	for _, d := range defines {
		if !b.seenDefines[d] {
			b.seenDefines[d] = true
			b.iface.Defines = append(b.iface.Defines, d)
		}
	}
}

func (b *interfaceBuilder) addCompileFlags(flags []string) {
	for _, f := range flags {
		if !b.seenCompileFlags[f] {
			b.seenCompileFlags[f] = true
			b.iface.CompileFlags = append(b.iface.CompileFlags, f)
		}
	}
}

func (b *interfaceBuilder) addLinkFlags(flags []string) {
	for _, f := range flags {
		if !b.seenLinkFlags[f] {
			b.seenLinkFlags[f] = true
			b.iface.LinkFlags = append(b.iface.LinkFlags, f)
		}
	}
}

func (b *interfaceBuilder) addLinkTarget(t *core.Target) {
	id := t.ID()
	if !b.seenLinkTargets[id] {
		b.seenLinkTargets[id] = true
		b.iface.LinkTargets = append(b.iface.LinkTargets, t)
	}
}

// walkPublic accumulates t's public attributes, then recurses into t's
// public link targets only — private links never propagate past their
// owner.
func (b *interfaceBuilder) walkPublic(t *core.Target) {
	b.addIncludeDirs(t.IncludeDirsPublic)
	b.addDefines(t.DefinesPublic)
	b.addCompileFlags(t.CompileFlagsPublic)
	b.addLinkFlags(t.LinkFlagsPublic)
	for _, dep := range t.LinkPublic {
		b.addLinkTarget(dep)
		b.walkPublic(dep)
	}
}

// PublicInterface returns the transitive-closure of t's public
// requirements: a depth-first walk over public edges only. This is what a
// consumer linking t publicly absorbs into its own public interface.
func PublicInterface(t *core.Target) Interface {
	b := newInterfaceBuilder()
	b.walkPublic(t)
	return b.iface
}

// CompileInterface returns the set of requirements visible while compiling
// t itself: its own private and public attributes, plus the public
// interface of everything it links, public or private. A target always
// sees its own private requirements; only its public requirements are
// shared further downstream.
func CompileInterface(t *core.Target) Interface {
	b := newInterfaceBuilder()
	b.addIncludeDirs(t.IncludeDirsPrivate)
	b.addIncludeDirs(t.IncludeDirsPublic)
	b.addDefines(t.DefinesPrivate)
	b.addDefines(t.DefinesPublic)
	b.addCompileFlags(t.CompileFlagsPrivate)
	b.addCompileFlags(t.CompileFlagsPublic)
	b.addLinkFlags(t.LinkFlagsPrivate)
	b.addLinkFlags(t.LinkFlagsPublic)
	for _, dep := range t.AllLinks() {
		b.addLinkTarget(dep)
		b.walkPublic(dep)
	}
	return b.iface
}

// LinkOrder performs a post-order topological walk over all (public and
// private) link edges reachable from root, with duplicates removed by
// first occurrence, matching spec §4.D's "dependency before dependent"
// contract. Object-library targets are left in the result; it is the
// emitter's job to expand them to their constituent object files rather
// than referencing an archive, since that expansion is backend-specific.
func LinkOrder(root *core.Target) []*core.Target {
	visited := make(map[core.TargetID]bool)
	var order []*core.Target
	var walk func(t *core.Target)
	walk = func(t *core.Target) {
		for _, dep := range t.AllLinks() {
			if visited[dep.ID()] {
				continue
			}
			visited[dep.ID()] = true
			walk(dep)
			order = append(order, dep)
		}
	}
	walk(root)
	return order
}
