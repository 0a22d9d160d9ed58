package core

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// A ToolVersion records a detected tool's version, both as the raw string
// reported by the tool and as a parsed semver for comparisons.
type ToolVersion struct {
	Str   string
	Major int64
	Minor int64
	Patch int64
}

// NewToolVersion parses a raw version string. A string that does not parse
// as semver is kept verbatim in Str with zeroed numeric fields; toolchain
// records are produced upstream of this module and are trusted, but not
// blindly — detection quirks (e.g. a four-part "19.29.30133.0") are common enough in the
// wild that a parse failure should degrade gracefully rather than panic.
func NewToolVersion(raw string) ToolVersion {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return ToolVersion{Str: raw}
	}
	return ToolVersion{
		Str:   raw,
		Major: int64(v.Major()),
		Minor: int64(v.Minor()),
		Patch: int64(v.Patch()),
	}
}

// String implements fmt.Stringer.
func (v ToolVersion) String() string {
	return v.Str
}

// A CompilerTool is one entry of a Toolchain: a path to an executable, its
// detected identity, and its version.
type CompilerTool struct {
	Path    string
	ID      string // e.g. "gcc", "clang", "msvc", "nasm"
	Version ToolVersion
}

// String implements fmt.Stringer.
func (t CompilerTool) String() string {
	return fmt.Sprintf("%s (%s %s)", t.Path, t.ID, t.Version)
}

// IsSet reports whether this tool was actually configured (a zero-value
// CompilerTool represents an absent tool; scripts see it as a falsy
// CompilerTool value, not as None).
func (t CompilerTool) IsSet() bool {
	return t.Path != ""
}

// A Profile is a named flag set, e.g. "Debug" or "Release".
type Profile struct {
	Name string

	CFlags   []string
	CxxFlags []string
	AsmFlags []string

	LinkFlags []string
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return p.Name
}

// A Toolchain is the parsed record of tool paths, detected identities, and
// the set of profiles it defines. The core never parses a toolchain file
// itself; it only consumes an already-populated value of this shape.
type Toolchain struct {
	CCompiler   CompilerTool
	CxxCompiler CompilerTool
	AsmCompiler CompilerTool
	Linker      CompilerTool
	Archiver    CompilerTool

	Profiles map[string]Profile
}

// String implements fmt.Stringer.
func (tc *Toolchain) String() string {
	return fmt.Sprintf("<toolchain cc=%s cxx=%s>", tc.CCompiler.ID, tc.CxxCompiler.ID)
}

// Profile looks up a named profile, reporting whether it exists.
func (tc *Toolchain) Profile(name string) (Profile, bool) {
	p, ok := tc.Profiles[name]
	return p, ok
}

// ProfileNames returns the toolchain's profile names, sorted for
// deterministic iteration (the MSVC emitter lists all of them as solution
// configurations and must do so in a stable order).
func (tc *Toolchain) ProfileNames() []string {
	names := make([]string, 0, len(tc.Profiles))
	for name := range tc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
