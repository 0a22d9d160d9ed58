// Package loader walks the root project and its resolved dependencies,
// evaluating each one's build.catapult exactly once in dependency order,
// and assembles the unified target graph that the generator backends
// consume.
//
// Grounded on the teacher's parse/parse_step.go (one-time-per-package
// evaluation guarantee) and parse/internal_package.go (scope seeding),
// generalized from Please's package/subrepo model down to Catapult's
// simpler one-script-per-project model.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/cli/logging"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/graph"
	"github.com/catapult-build/catapult/src/loader/asp"
	"github.com/catapult-build/catapult/src/manifest"
)

var log = logging.Log

// BuildScriptName is the fixed filename the loader reads from every
// project directory.
const BuildScriptName = "build.catapult"

// A ManifestReader loads the already-parsed manifest for a project
// directory. Catapult's core does not parse catapult.toml itself; the CLI
// wires in the real TOML reader at startup, which keeps this package (and
// its tests) ignorant of manifest file syntax entirely.
type ManifestReader func(dir string) (manifest.Manifest, error)

// Options bundles everything LoadAll needs beyond the root directory and
// resolved dependency map: the shared script interpreter host, the
// manifest collaborator, the invocation's global options and toolchain
// record, and the graph every loaded project's targets register with.
type Options struct {
	Host          *asp.Host
	ReadManifest  ManifestReader
	GlobalOptions *core.GlobalOptions
	Toolchain     *core.Toolchain
	Graph         *graph.Graph
}

// LoadAll loads every resolved dependency and finally the root project,
// in topological order (dependencies before dependents), returning the
// fully-populated root core.Project. Every target constructed along the
// way is registered with opts.Graph as a side effect.
func LoadAll(rootName, rootDir string, resolved manifest.ResolvedDependencyMap, opts Options) (*core.Project, error) {
	order, dirs, err := topoSort(resolved)
	if err != nil {
		return nil, err
	}
	dirs[rootName] = rootDir

	if err := checkDirsExist(append(order, rootName), dirs); err != nil {
		return nil, err
	}

	loaded := make(map[string]*core.Project, len(order)+1)
	for _, name := range order {
		log.Debug("Loading dependency %s from %s...", name, dirs[name])
		p, err := loadProject(name, dirs[name], loaded, opts)
		if err != nil {
			return nil, err
		}
		loaded[name] = p
	}

	log.Debug("Loading root project from %s...", rootDir)
	return loadProject(rootName, rootDir, loaded, opts)
}

// checkDirsExist validates every project directory up front, before any
// script is evaluated, so a run with several missing dependency
// checkouts reports all of them at once rather than stopping at the
// first one loadProject happens to reach.
func checkDirsExist(names []string, dirs map[string]string) error {
	var agg caterr.Aggregator
	for _, name := range names {
		dir := dirs[name]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			agg.Add(&caterr.IOError{Path: dir, Message: fmt.Sprintf("project %s's directory does not exist", name)})
		}
	}
	return agg.Err()
}

// TopoSort computes a dependency-first ordering of every name reachable
// from resolved, deduplicating diamond dependencies to a single name each
// (the loader trusts the resolver to have already settled any version
// conflict). It is exported separately from LoadAll so the ordering
// algorithm can be exercised and reasoned about without touching the
// filesystem.
func TopoSort(resolved manifest.ResolvedDependencyMap) ([]string, error) {
	order, _, err := topoSort(resolved)
	return order, err
}

func topoSort(resolved manifest.ResolvedDependencyMap) ([]string, map[string]string, error) {
	deps := map[string][]string{}
	dirs := map[string]string{}
	collectDAG(resolved, deps, dirs)

	order, err := kahn(deps)
	if err != nil {
		return nil, nil, err
	}
	return order, dirs, nil
}

// collectDAG flattens the recursive resolved-dependency tree into a flat
// {name -> names it depends on} adjacency map plus a {name -> directory}
// lookup, visiting each name only once even if it appears at multiple
// levels of the tree.
func collectDAG(m manifest.ResolvedDependencyMap, deps map[string][]string, dirs map[string]string) {
	for name, rd := range m {
		if _, seen := deps[name]; seen {
			continue
		}
		dirs[name] = rd.Dir
		sub := make([]string, 0, len(rd.SubDependencies))
		for subName := range rd.SubDependencies {
			sub = append(sub, subName)
		}
		sort.Strings(sub)
		deps[name] = sub
		collectDAG(rd.SubDependencies, deps, dirs)
	}
}

// kahn performs Kahn's algorithm iteratively (rather than a recursive
// depth-first walk) so that stack depth is independent of how deep the
// dependency tree goes. Ties within a wave of newly-ready nodes are broken
// alphabetically so the resulting order is deterministic across runs.
func kahn(deps map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	for name := range deps {
		inDegree[name] = 0
	}
	for name, ds := range deps {
		for _, d := range ds {
			dependents[d] = append(dependents[d], name)
			inDegree[name]++
		}
	}

	var ready []string
	for name, n := range inDegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(deps))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var next []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
	}

	if len(order) != len(deps) {
		return nil, &caterr.GraphInvariant{Message: "dependency cycle detected among: " + cycleMembers(deps, order)}
	}
	return order, nil
}

// cycleMembers returns the names that kahn's algorithm never managed to
// emit, for a more actionable cycle-detected error message.
func cycleMembers(deps map[string][]string, order []string) string {
	emitted := make(map[string]bool, len(order))
	for _, name := range order {
		emitted[name] = true
	}
	var remaining []string
	for name := range deps {
		if !emitted[name] {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	return fmt.Sprintf("%v", remaining)
}

// loadProject reads and evaluates one project's build.catapult exactly
// once. Its own manifest determines which of the already-loaded projects
// it may see: a name that manifest does not declare as a dependency is
// never bound into its module scope, even if some other already-loaded
// project happens to share the same name.
func loadProject(name, dir string, loaded map[string]*core.Project, opts Options) (*core.Project, error) {
	m, err := opts.ReadManifest(dir)
	if err != nil {
		return nil, &caterr.IOError{Path: dir, Message: "failed to read project manifest", Cause: err}
	}

	scriptPath := filepath.Join(dir, BuildScriptName)
	f, err := os.Open(scriptPath)
	if err != nil {
		return nil, &caterr.IOError{Path: scriptPath, Message: "failed to open build script", Cause: err}
	}
	defer f.Close()

	p := core.NewProject(name, dir, m)
	deps := make(map[string]*core.DependencyHandle, len(m.Dependencies))
	for depName := range m.Dependencies {
		dep, ok := loaded[depName]
		if !ok {
			return nil, &caterr.GraphInvariant{
				Message: fmt.Sprintf("project %s declares dependency %s which was not resolved", name, depName),
			}
		}
		deps[depName] = dep.Handle
	}

	if err := opts.Host.EvalBuildScript(f, scriptPath, dir, p, deps, opts.GlobalOptions, opts.Toolchain, opts.Graph); err != nil {
		return nil, err
	}
	p.Handle = core.NewDependencyHandle(p)
	return p, nil
}
