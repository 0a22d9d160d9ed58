package asp

import (
	"io"

	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
)

// A Host is the process-wide interpreter shared across every project's
// build script evaluation within a run: every builtin is registered
// exactly once, in newInterpreter, and every project's module scope is a
// child of the same root scope. This is the package's only exported
// surface; the project loader never reaches into scope/interpreter
// directly.
type Host struct {
	i *interpreter
}

// NewHost constructs a Host with the generic language builtins and the
// five target-constructing host builtins registered.
func NewHost() *Host {
	return &Host{i: newInterpreter()}
}

// EvalBuildScript parses and evaluates one project's build.catapult,
// seeding its module scope with GLOBAL and one DependencyHandle binding
// per already-loaded dependency the project declares, then registering
// every target the script constructs with both p and g. filename is used
// only for error messages; dir is the project's root directory, against
// which every relative path a host builtin receives is resolved.
func (h *Host) EvalBuildScript(r io.Reader, filename, dir string, p *core.Project, deps map[string]*core.DependencyHandle, opts *core.GlobalOptions, tc *core.Toolchain, g *graph.Graph) error {
	input, err := parseFileInput(r)
	if err != nil {
		return err
	}
	s := h.i.NewModuleScope(filename, dir, p, g)
	s.Set("GLOBAL", newPyGlobal(opts, tc))
	for name, dep := range deps {
		s.Set(name, newPyDependencyHandle(dep))
	}
	return interpretModule(s, input.Statements)
}
