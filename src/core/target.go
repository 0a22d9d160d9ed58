// Package core contains the value model shared by the script interpreter host,
// the target graph, and the generator backends: targets, toolchains, global
// options and the per-project dependency handle.
package core

import (
	"fmt"
)

// A TargetKind identifies what kind of artifact a Target produces.
type TargetKind int

// The five kinds of target the host builtins can construct.
const (
	StaticLibrary TargetKind = iota
	SharedLibrary
	Executable
	InterfaceLibrary
	ObjectLibrary
)

// String implements fmt.Stringer.
func (k TargetKind) String() string {
	switch k {
	case StaticLibrary:
		return "static_library"
	case SharedLibrary:
		return "shared_library"
	case Executable:
		return "executable"
	case InterfaceLibrary:
		return "interface_library"
	case ObjectLibrary:
		return "object_library"
	default:
		return "unknown"
	}
}

// HasSources returns true for kinds that are actually compiled from source
// (as opposed to interface libraries, which carry no sources of their own).
func (k TargetKind) HasSources() bool {
	return k != InterfaceLibrary
}

// A TargetID is the stable, globally unique identity of a Target: its
// owning project directory plus its name within that directory.
type TargetID struct {
	ProjectDir string
	Name       string
}

// String implements fmt.Stringer.
func (id TargetID) String() string {
	return fmt.Sprintf("%s:%s", id.ProjectDir, id.Name)
}

// A Target is an immutable record identifying one buildable artifact.
// Every Target in existence was constructed exactly once by a host builtin
// (src/loader/asp/builtins.go) and is never subsequently mutated; every
// slice below is owned by the Target and must not be aliased by any caller.
type Target struct {
	Kind       TargetKind
	Name       string
	ProjectDir string

	Sources []Source

	IncludeDirsPrivate []string
	IncludeDirsPublic  []string

	DefinesPrivate []string
	DefinesPublic  []string

	CompileFlagsPrivate []string
	CompileFlagsPublic  []string

	LinkPrivate []*Target
	LinkPublic  []*Target

	LinkFlagsPrivate []string
	LinkFlagsPublic  []string
}

// ID returns the target's stable global identity.
func (t *Target) ID() TargetID {
	return TargetID{ProjectDir: t.ProjectDir, Name: t.Name}
}

// String implements fmt.Stringer, producing a deterministic human-readable
// form used both by the script str() builtin and diagnostic messages.
func (t *Target) String() string {
	return fmt.Sprintf("<%s %s at %s>", t.Kind, t.Name, t.ProjectDir)
}

// NewTarget constructs an immutable Target. Its production caller is the
// host builtins in src/loader/asp/builtins.go, which are responsible for
// validating and normalizing every argument beforehand. Every slice
// argument is copied so the caller's backing array can never alias into
// the constructed Target.
func NewTarget(kind TargetKind, name, projectDir string, sources []Source,
	includeDirsPrivate, includeDirsPublic []string,
	definesPrivate, definesPublic []string,
	compileFlagsPrivate, compileFlagsPublic []string,
	linkPrivate, linkPublic []*Target,
	linkFlagsPrivate, linkFlagsPublic []string) *Target {

	return &Target{
		Kind:                kind,
		Name:                name,
		ProjectDir:          projectDir,
		Sources:             copySources(sources),
		IncludeDirsPrivate:  copyStrings(includeDirsPrivate),
		IncludeDirsPublic:   copyStrings(includeDirsPublic),
		DefinesPrivate:      copyStrings(definesPrivate),
		DefinesPublic:       copyStrings(definesPublic),
		CompileFlagsPrivate: copyStrings(compileFlagsPrivate),
		CompileFlagsPublic:  copyStrings(compileFlagsPublic),
		LinkPrivate:         copyTargets(linkPrivate),
		LinkPublic:          copyTargets(linkPublic),
		LinkFlagsPrivate:    copyStrings(linkFlagsPrivate),
		LinkFlagsPublic:     copyStrings(linkFlagsPublic),
	}
}

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyTargets(s []*Target) []*Target {
	if len(s) == 0 {
		return nil
	}
	out := make([]*Target, len(s))
	copy(out, s)
	return out
}

func copySources(s []Source) []Source {
	if len(s) == 0 {
		return nil
	}
	out := make([]Source, len(s))
	copy(out, s)
	return out
}

// AllLinks returns the target's public and private link lists concatenated,
// public first, matching the order host builtins construct them in.
func (t *Target) AllLinks() []*Target {
	if len(t.LinkPublic) == 0 {
		return t.LinkPrivate
	}
	if len(t.LinkPrivate) == 0 {
		return t.LinkPublic
	}
	out := make([]*Target, 0, len(t.LinkPublic)+len(t.LinkPrivate))
	out = append(out, t.LinkPublic...)
	out = append(out, t.LinkPrivate...)
	return out
}

// IsLinkedPublicly reports whether dep appears in t's public link list.
func (t *Target) IsLinkedPublicly(dep *Target) bool {
	for _, p := range t.LinkPublic {
		if p == dep {
			return true
		}
	}
	return false
}
