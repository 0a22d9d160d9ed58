package msvc

import (
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/fs"
	"github.com/catapult-build/catapult/src/graph"
)

// solutionModel is the data text/template walks to produce the .sln file.
type solutionModel struct {
	ProfileNames []string
	Projects     []*projectModel
}

// projectModel is the data text/template walks to produce one target's
// .vcxproj, and also what the solution template references to list and
// link that project.
type projectModel struct {
	Name                   string
	GUID                   uuid.UUID
	VcxprojPath            string
	VcxprojRelPath         string
	ProfileNames           []string
	Sources                []string
	IncludeDirs            []string
	Defines                []string
	CompileFlags           []string
	ProjectReferences      []*projectModel
	AdditionalDependencies []string
	ConfigurationType      string
}

// buildSolution turns every buildable target in g into a solutionModel.
// Interface libraries contribute their flags/includes to dependents (via
// graph.CompileInterface) but get no .vcxproj of their own, matching the
// Ninja emitter's treatment of the same targets.
func buildSolution(g *graph.Graph, tc *core.Toolchain, outDir string) *solutionModel {
	profiles := tc.ProfileNames()

	byID := make(map[core.TargetID]*projectModel)
	var projects []*projectModel
	for _, t := range g.Targets() {
		if !t.Kind.HasSources() {
			continue
		}
		pm := newProjectModel(t, profiles, outDir)
		byID[t.ID()] = pm
		projects = append(projects, pm)
	}

	for _, t := range g.Targets() {
		if !t.Kind.HasSources() {
			continue
		}
		pm := byID[t.ID()]
		iface := graph.CompileInterface(t)
		pm.IncludeDirs = iface.IncludeDirs
		pm.Defines = iface.Defines
		pm.CompileFlags = iface.CompileFlags

		for _, dep := range graph.LinkOrder(t) {
			if !dep.Kind.HasSources() {
				continue
			}
			if t.IsLinkedPublicly(dep) {
				pm.ProjectReferences = append(pm.ProjectReferences, byID[dep.ID()])
			} else {
				pm.AdditionalDependencies = append(pm.AdditionalDependencies, libraryFileName(dep))
			}
		}
	}

	return &solutionModel{ProfileNames: profiles, Projects: projects}
}

func newProjectModel(t *core.Target, profiles []string, outDir string) *projectModel {
	guid := GUIDFor(filepath.Base(t.ProjectDir), t.Name)
	relPath := filepath.Join(filepath.Base(t.ProjectDir), t.Name+".vcxproj")

	var sources []string
	for _, src := range t.Sources {
		if src.Kind == core.SourceHeader {
			continue
		}
		sources = append(sources, fs.Normalize(t.ProjectDir, src.Path))
	}
	sort.Strings(sources)

	return &projectModel{
		Name:              t.Name,
		GUID:              guid,
		VcxprojPath:       filepath.Join(outDir, relPath),
		VcxprojRelPath:    relPath,
		ProfileNames:      profiles,
		Sources:           sources,
		ConfigurationType: configurationType(t.Kind),
	}
}

func configurationType(k core.TargetKind) string {
	switch k {
	case core.StaticLibrary:
		return "StaticLibrary"
	case core.SharedLibrary:
		return "DynamicLibrary"
	default:
		return "Application"
	}
}

func libraryFileName(t *core.Target) string {
	switch t.Kind {
	case core.StaticLibrary:
		return t.Name + ".lib"
	case core.SharedLibrary:
		return t.Name + ".lib"
	default:
		return t.Name + ".exe"
	}
}
