package core

import "github.com/catapult-build/catapult/src/manifest"

// A Project is one directory with a manifest and a single build script,
// contributing a subset of the total target graph. The root project plus
// each resolved dependency is one Project.
type Project struct {
	Name     string
	RootDir  string
	Manifest manifest.Manifest
	Targets  []*Target

	// Handle is filled in once loading of this project's script completes;
	// it is nil while the project's own script is still being evaluated.
	Handle *DependencyHandle
}

// NewProject constructs an empty Project ready to receive targets during
// script evaluation.
func NewProject(name, rootDir string, m manifest.Manifest) *Project {
	return &Project{Name: name, RootDir: rootDir, Manifest: m}
}

// AddTarget registers a target as belonging to this project. It is called
// by the host builtins at construction time, immediately after the target
// itself is built and registered with the shared graph.
func (p *Project) AddTarget(t *Target) {
	p.Targets = append(p.Targets, t)
}

// Target looks up one of this project's own targets by name.
func (p *Project) Target(name string) (*Target, bool) {
	for _, t := range p.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
