package ninja

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/fs"
	"github.com/catapult-build/catapult/src/graph"
)

// Generate lowers every target in g to a single build.ninja file under
// buildDir, using tc's compiler/linker/archiver identities and the named
// profile for flags. It is written to a temporary file in buildDir and then
// renamed onto build.ninja (src/fs.AtomicWriteFile), so a reader never
// observes a partially-written file.
func Generate(g *graph.Graph, tc *core.Toolchain, profileName, buildDir string) error {
	p, ok := tc.Profile(profileName)
	if !ok {
		return &caterr.ToolchainMismatch{Message: fmt.Sprintf("toolchain has no profile %q", profileName)}
	}

	targets := g.Targets()
	e := &emitter{g: g, tc: tc, profile: p, buildDir: buildDir}

	var buf bytes.Buffer
	w := newWriter(&buf)
	if err := e.writeRules(w, targets); err != nil {
		return err
	}
	for _, t := range targets {
		if err := e.writeTarget(w, t); err != nil {
			return err
		}
	}
	if err := e.writeAliases(w, targets); err != nil {
		return err
	}

	return fs.AtomicWriteFile(filepath.Join(buildDir, "build.ninja"), buf.Bytes(), 0o644)
}

type emitter struct {
	g        *graph.Graph
	tc       *core.Toolchain
	profile  core.Profile
	buildDir string
}

// writeRules emits one rule block per compiler/linker/archiver action the
// graph actually exercises, in a fixed, deterministic order.
func (e *emitter) writeRules(w *writer, targets []*core.Target) error {
	var usesC, usesCxx, usesAsm, usesArchive, usesShared, usesExe bool
	for _, t := range targets {
		for _, src := range t.Sources {
			switch src.Kind {
			case core.SourceC:
				usesC = true
			case core.SourceCxx:
				usesCxx = true
			case core.SourceAsm:
				usesAsm = true
			}
		}
		switch t.Kind {
		case core.StaticLibrary:
			usesArchive = true
		case core.SharedLibrary:
			usesShared = true
		case core.Executable:
			usesExe = true
		}
	}

	if usesC {
		if err := e.writeCompileRule(w, "cc", e.tc.CCompiler.Path, e.profile.CFlags); err != nil {
			return err
		}
	}
	if usesCxx {
		if err := e.writeCompileRule(w, "cxx", e.tc.CxxCompiler.Path, e.profile.CxxFlags); err != nil {
			return err
		}
	}
	if usesAsm {
		if err := e.writeCompileRule(w, "asm", e.tc.AsmCompiler.Path, e.profile.AsmFlags); err != nil {
			return err
		}
	}
	if usesArchive {
		if err := w.Rule("ar"); err != nil {
			return err
		}
		if err := w.ScopedAssign("command", fmt.Sprintf("%s rcs $out $in", e.tc.Archiver.Path)); err != nil {
			return err
		}
		if err := w.BlankLine(); err != nil {
			return err
		}
	}
	if usesShared {
		if err := w.Rule("link_shared"); err != nil {
			return err
		}
		if err := w.ScopedAssign("command", fmt.Sprintf("%s -shared -o $out $in $libs %s", e.tc.Linker.Path, strings.Join(e.profile.LinkFlags, " "))); err != nil {
			return err
		}
		if err := w.BlankLine(); err != nil {
			return err
		}
	}
	if usesExe {
		if err := w.Rule("link_exe"); err != nil {
			return err
		}
		if err := w.ScopedAssign("command", fmt.Sprintf("%s -o $out $in $libs %s", e.tc.Linker.Path, strings.Join(e.profile.LinkFlags, " "))); err != nil {
			return err
		}
		if err := w.BlankLine(); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) writeCompileRule(w *writer, name, compiler string, profileFlags []string) error {
	if err := w.Rule(name); err != nil {
		return err
	}
	cmd := fmt.Sprintf("%s %s $flags -c -o $out $in", compiler, strings.Join(profileFlags, " "))
	if err := w.ScopedAssign("command", cmd); err != nil {
		return err
	}
	return w.BlankLine()
}

// objectDir is the per-target scratch directory compiled objects land in:
// <build_dir>/<project_name>/<target_name>.dir/.
func (e *emitter) objectDir(t *core.Target) string {
	return filepath.Join(e.buildDir, filepath.Base(t.ProjectDir), t.Name+".dir")
}

// artifactPath is the final artifact a target produces.
func (e *emitter) artifactPath(t *core.Target) string {
	dir := filepath.Join(e.buildDir, filepath.Base(t.ProjectDir))
	switch t.Kind {
	case core.StaticLibrary:
		return filepath.Join(dir, "lib"+t.Name+".a")
	case core.SharedLibrary:
		return filepath.Join(dir, "lib"+t.Name+".so")
	case core.Executable:
		return filepath.Join(dir, t.Name)
	default:
		return ""
	}
}

// writeTarget emits one build edge per source file, then the edge that
// produces the target's own artifact (skipped entirely for interface and
// object libraries, which contribute only flags/objects to their
// dependents rather than an artifact of their own).
func (e *emitter) writeTarget(w *writer, t *core.Target) error {
	if !t.Kind.HasSources() {
		return nil
	}

	iface := graph.CompileInterface(t)
	flags := compileFlags(iface)

	objects := make([]string, 0, len(t.Sources))
	for _, src := range t.Sources {
		rule, ok := compileRuleFor(src.Kind)
		if !ok {
			continue
		}
		obj := filepath.Join(e.objectDir(t), objectStem(src.Path)+".o")
		in := fs.Normalize(t.ProjectDir, src.Path)
		if err := w.Build([]string{obj}, rule, []string{in}, nil); err != nil {
			return err
		}
		if err := w.ScopedAssign("flags", flags); err != nil {
			return err
		}
		objects = append(objects, obj)
	}

	if t.Kind == core.ObjectLibrary {
		return nil
	}

	artifact := e.artifactPath(t)
	if artifact == "" {
		return nil
	}

	inputs := objectsForLinking(e, t, objects)
	rule := linkRuleFor(t.Kind)
	if err := w.Build([]string{artifact}, rule, inputs, nil); err != nil {
		return err
	}
	if rule != "ar" {
		libs := linkLibs(iface.LinkTargets)
		if len(iface.LinkFlags) > 0 {
			libs = strings.TrimSpace(libs + " " + strings.Join(iface.LinkFlags, " "))
		}
		if err := w.ScopedAssign("libs", libs); err != nil {
			return err
		}
	}
	return nil
}

// objectsForLinking expands any object-library dependency inline (its
// constituent object files, not an archive) and appends the rest of the
// link order as their built artifacts.
func objectsForLinking(e *emitter, t *core.Target, ownObjects []string) []string {
	inputs := append([]string{}, ownObjects...)
	for _, dep := range graph.LinkOrder(t) {
		if dep.Kind == core.ObjectLibrary {
			for _, src := range dep.Sources {
				inputs = append(inputs, filepath.Join(e.objectDir(dep), objectStem(src.Path)+".o"))
			}
			continue
		}
		if dep.Kind == core.InterfaceLibrary {
			continue
		}
		inputs = append(inputs, e.artifactPath(dep))
	}
	return inputs
}

func linkLibs(linkTargets []*core.Target) string {
	seen := make(map[string]bool)
	var libs []string
	for _, t := range linkTargets {
		if t.Kind != core.SharedLibrary && t.Kind != core.StaticLibrary {
			continue
		}
		if !seen[t.Name] {
			seen[t.Name] = true
			libs = append(libs, "-l"+t.Name)
		}
	}
	return strings.Join(libs, " ")
}

func compileFlags(iface graph.Interface) string {
	var parts []string
	for _, d := range iface.IncludeDirs {
		parts = append(parts, "-I"+d)
	}
	for _, d := range iface.Defines {
		parts = append(parts, "-D"+d)
	}
	parts = append(parts, iface.CompileFlags...)
	return strings.Join(parts, " ")
}

func compileRuleFor(k core.SourceKind) (string, bool) {
	switch k {
	case core.SourceC:
		return "cc", true
	case core.SourceCxx:
		return "cxx", true
	case core.SourceAsm:
		return "asm", true
	default:
		return "", false
	}
}

func linkRuleFor(k core.TargetKind) string {
	switch k {
	case core.StaticLibrary:
		return "ar"
	case core.SharedLibrary:
		return "link_shared"
	default:
		return "link_exe"
	}
}

func objectStem(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeAliases emits a `phony` build edge for every executable target,
// giving it a short name independent of its build-directory artifact path.
func (e *emitter) writeAliases(w *writer, targets []*core.Target) error {
	names := make([]string, 0, len(targets))
	byName := make(map[string]*core.Target, len(targets))
	for _, t := range targets {
		if t.Kind != core.Executable {
			continue
		}
		names = append(names, t.Name)
		byName[t.Name] = t
	}
	sort.Strings(names)
	for _, name := range names {
		t := byName[name]
		if err := w.Build([]string{name}, "phony", []string{e.artifactPath(t)}, nil); err != nil {
			return err
		}
	}
	return nil
}
