package core

// A DependencyHandle is the script-visible view of a loaded dependency
// project: its union of public include dirs, plus one named field per
// target it exports. It is constructed once, after the dependency's own
// build script has finished evaluating, and never changes afterwards.
type DependencyHandle struct {
	ProjectName string
	IncludeDirs []string
	targets     map[string]*Target
}

// NewDependencyHandle builds a DependencyHandle from a fully-loaded
// project: IncludeDirs is the union of all its targets' public include
// dirs, and Target exposes each by name.
func NewDependencyHandle(p *Project) *DependencyHandle {
	h := &DependencyHandle{
		ProjectName: p.Name,
		targets:     make(map[string]*Target, len(p.Targets)),
	}
	seen := make(map[string]bool)
	for _, t := range p.Targets {
		h.targets[t.Name] = t
		for _, dir := range t.IncludeDirsPublic {
			if !seen[dir] {
				seen[dir] = true
				h.IncludeDirs = append(h.IncludeDirs, dir)
			}
		}
	}
	return h
}

// Target returns the exported target of the given name, if this
// dependency declares one.
func (h *DependencyHandle) Target(name string) (*Target, bool) {
	t, ok := h.targets[name]
	return t, ok
}

// TargetNames returns the names of every target this dependency exports,
// in no particular order; callers needing determinism should sort.
func (h *DependencyHandle) TargetNames() []string {
	names := make([]string, 0, len(h.targets))
	for name := range h.targets {
		names = append(names, name)
	}
	return names
}
