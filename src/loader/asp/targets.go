package asp

import (
	"github.com/catapult-build/catapult/src/core"
)

// A pyTarget wraps a constructed core.Target so it can be passed around and
// inspected by build scripts. Once a target is built it never changes: the
// wrapped core.Target is itself immutable, so pyTarget needs no Freeze
// method of its own.
type pyTarget struct {
	t *core.Target
}

func newPyTarget(t *core.Target) *pyTarget {
	return &pyTarget{t: t}
}

func (p *pyTarget) Type() string {
	return "Target"
}

func (p *pyTarget) IsTruthy() bool {
	return true
}

func (p *pyTarget) String() string {
	return p.t.String()
}

func (p *pyTarget) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.t.String() + `"`), nil
}

func (p *pyTarget) Property(s *scope, name string) pyObject {
	switch name {
	case "name":
		return pyString(p.t.Name)
	case "kind":
		return pyString(p.t.Kind.String())
	case "include_dirs_public":
		return stringsToPyList(p.t.IncludeDirsPublic)
	case "include_dirs_private":
		return stringsToPyList(p.t.IncludeDirsPrivate)
	case "defines_public":
		return stringsToPyList(p.t.DefinesPublic)
	case "defines_private":
		return stringsToPyList(p.t.DefinesPrivate)
	}
	return s.Error("Target has no property %s", name)
}

func (p *pyTarget) Operator(operator Operator, operand pyObject) pyObject {
	if operator == Equal {
		o, ok := operand.(*pyTarget)
		return newPyBool(ok && o.t == p.t)
	} else if operator == NotEqual {
		o, ok := operand.(*pyTarget)
		return newPyBool(!ok || o.t != p.t)
	}
	panic("cannot use operator " + operator.String() + " on a Target")
}

// stringsToPyList converts a []string into the frozen list form scripts see
// for any of a Target's string-valued attributes.
func stringsToPyList(ss []string) pyObject {
	l := make(pyList, len(ss))
	for i, s := range ss {
		l[i] = pyString(s)
	}
	return pyFrozenList{l}
}

// A pyDependencyHandle wraps a core.DependencyHandle, exposing its union of
// public include dirs and one named field per target it exports.
type pyDependencyHandle struct {
	h *core.DependencyHandle
}

func newPyDependencyHandle(h *core.DependencyHandle) *pyDependencyHandle {
	return &pyDependencyHandle{h: h}
}

func (p *pyDependencyHandle) Type() string {
	return "DependencyHandle"
}

func (p *pyDependencyHandle) IsTruthy() bool {
	return true
}

func (p *pyDependencyHandle) String() string {
	return "<dependency " + p.h.ProjectName + ">"
}

func (p *pyDependencyHandle) Property(s *scope, name string) pyObject {
	if name == "include_dirs" {
		return stringsToPyList(p.h.IncludeDirs)
	}
	if t, ok := p.h.Target(name); ok {
		return newPyTarget(t)
	}
	return s.Error("dependency %s has no target or attribute %s", p.h.ProjectName, name)
}

func (p *pyDependencyHandle) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a DependencyHandle")
}

// A pyToolchain wraps a core.Toolchain as seen by a build script: its
// compiler/linker/archiver identities and the set of flag profiles it
// defines.
type pyToolchain struct {
	tc *core.Toolchain
}

func newPyToolchain(tc *core.Toolchain) *pyToolchain {
	return &pyToolchain{tc: tc}
}

func (p *pyToolchain) Type() string {
	return "Toolchain"
}

func (p *pyToolchain) IsTruthy() bool {
	return true
}

func (p *pyToolchain) String() string {
	return p.tc.String()
}

func (p *pyToolchain) Property(s *scope, name string) pyObject {
	switch name {
	case "cc":
		return newPyCompilerTool(p.tc.CCompiler)
	case "cxx":
		return newPyCompilerTool(p.tc.CxxCompiler)
	case "asm":
		return newPyCompilerTool(p.tc.AsmCompiler)
	case "linker":
		return newPyCompilerTool(p.tc.Linker)
	case "archiver":
		return newPyCompilerTool(p.tc.Archiver)
	}
	if profile, ok := p.tc.Profile(name); ok {
		return newPyProfile(profile)
	}
	return s.Error("toolchain has no attribute or profile %s", name)
}

func (p *pyToolchain) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a Toolchain")
}

// A pyCompilerTool wraps one tool entry of a Toolchain (its path, detected
// identity and version). A tool that was never configured is still a
// pyCompilerTool (not None); it reports IsTruthy false, following
// core.CompilerTool.IsSet.
type pyCompilerTool struct {
	tool core.CompilerTool
}

func newPyCompilerTool(tool core.CompilerTool) *pyCompilerTool {
	return &pyCompilerTool{tool: tool}
}

func (p *pyCompilerTool) Type() string {
	return "CompilerTool"
}

func (p *pyCompilerTool) IsTruthy() bool {
	return p.tool.IsSet()
}

func (p *pyCompilerTool) String() string {
	return p.tool.String()
}

func (p *pyCompilerTool) Property(s *scope, name string) pyObject {
	switch name {
	case "path":
		return pyString(p.tool.Path)
	case "id":
		return pyString(p.tool.ID)
	case "version":
		return newPyToolVersion(p.tool.Version)
	}
	return s.Error("CompilerTool has no attribute %s", name)
}

func (p *pyCompilerTool) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a CompilerTool")
}

// A pyToolVersion wraps a core.ToolVersion, exposing its raw string form
// plus the parsed semver components.
type pyToolVersion struct {
	v core.ToolVersion
}

func newPyToolVersion(v core.ToolVersion) *pyToolVersion {
	return &pyToolVersion{v: v}
}

func (p *pyToolVersion) Type() string {
	return "ToolVersion"
}

func (p *pyToolVersion) IsTruthy() bool {
	return p.v.Str != ""
}

func (p *pyToolVersion) String() string {
	return p.v.String()
}

func (p *pyToolVersion) Property(s *scope, name string) pyObject {
	switch name {
	case "str":
		return pyString(p.v.Str)
	case "major":
		return newPyInt(int(p.v.Major))
	case "minor":
		return newPyInt(int(p.v.Minor))
	case "patch":
		return newPyInt(int(p.v.Patch))
	}
	return s.Error("ToolVersion has no attribute %s", name)
}

func (p *pyToolVersion) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a ToolVersion")
}

// A pyProfile wraps one named flag profile of a Toolchain.
type pyProfile struct {
	profile core.Profile
}

func newPyProfile(profile core.Profile) *pyProfile {
	return &pyProfile{profile: profile}
}

func (p *pyProfile) Type() string {
	return "Profile"
}

func (p *pyProfile) IsTruthy() bool {
	return true
}

func (p *pyProfile) String() string {
	return p.profile.String()
}

func (p *pyProfile) Property(s *scope, name string) pyObject {
	switch name {
	case "name":
		return pyString(p.profile.Name)
	case "cflags":
		return stringsToPyList(p.profile.CFlags)
	case "cxxflags":
		return stringsToPyList(p.profile.CxxFlags)
	case "asmflags":
		return stringsToPyList(p.profile.AsmFlags)
	case "link_flags":
		return stringsToPyList(p.profile.LinkFlags)
	}
	return s.Error("Profile has no attribute %s", name)
}

func (p *pyProfile) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a Profile")
}

// A pyGlobalOptions wraps the core.GlobalOptions a script's module scope is
// seeded with: the selected C/C++ standard, toolchain profile and target
// platform for this invocation.
type pyGlobalOptions struct {
	opts *core.GlobalOptions
}

func newPyGlobalOptions(opts *core.GlobalOptions) *pyGlobalOptions {
	return &pyGlobalOptions{opts: opts}
}

func (p *pyGlobalOptions) Type() string {
	return "GlobalOptions"
}

func (p *pyGlobalOptions) IsTruthy() bool {
	return true
}

func (p *pyGlobalOptions) String() string {
	return p.opts.String()
}

func (p *pyGlobalOptions) Property(s *scope, name string) pyObject {
	switch name {
	case "c_standard":
		return pyString(p.opts.CStandard)
	case "cxx_standard":
		return pyString(p.opts.CxxStandard)
	case "selected_profile":
		return pyString(p.opts.SelectedProfile)
	case "target_platform":
		return pyString(p.opts.TargetPlatform)
	}
	return s.Error("GlobalOptions has no attribute %s", name)
}

func (p *pyGlobalOptions) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on a GlobalOptions")
}

// A pyGlobal wraps the GLOBAL name every build script is seeded with: the
// global options plus the toolchain record for this invocation.
type pyGlobal struct {
	opts *pyGlobalOptions
	tc   *pyToolchain
}

func newPyGlobal(opts *core.GlobalOptions, tc *core.Toolchain) *pyGlobal {
	return &pyGlobal{opts: newPyGlobalOptions(opts), tc: newPyToolchain(tc)}
}

func (p *pyGlobal) Type() string {
	return "Global"
}

func (p *pyGlobal) IsTruthy() bool {
	return true
}

func (p *pyGlobal) String() string {
	return "<GLOBAL>"
}

func (p *pyGlobal) Property(s *scope, name string) pyObject {
	switch name {
	case "global_options":
		return p.opts
	case "toolchain":
		return p.tc
	}
	return s.Error("GLOBAL has no attribute %s", name)
}

func (p *pyGlobal) Operator(operator Operator, operand pyObject) pyObject {
	panic("cannot use operators on GLOBAL")
}
