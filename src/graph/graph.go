// Package graph implements the acyclic target graph: registration with a
// defensive cycle check, and the transitive public/private interface walks
// that both generator backends rely on.
//
// Grounded on the teacher's core/graph.go and core/cycle_detector.go
// (registration-time defensive walk over an adjacency structure) and
// core/build_target.go's depInfo{declared, deps, exported} representation
// of public/private edges, renamed here to the edge type below.
package graph

import (
	"fmt"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
)

// A Graph is the append-only, single-threaded, acyclic collection of every
// target constructed across every project loaded in a run. It is written
// to during loading and only ever read from during emission.
type Graph struct {
	targets []*core.Target
	byID    map[core.TargetID]*core.Target
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{byID: make(map[core.TargetID]*core.Target)}
}

// AddTarget registers a newly-constructed target with the graph. It
// appends to an insertion-ordered slice (the source of the determinism
// contract in spec §5/§8) and defensively checks that none of the
// target's declared link edges would close a cycle back to it, even
// though this cannot happen by construction since link targets must
// already exist as values when referenced.
func (g *Graph) AddTarget(t *core.Target) error {
	id := t.ID()
	if _, exists := g.byID[id]; exists {
		return &caterr.GraphInvariant{
			Message: fmt.Sprintf("duplicate target name %q in project %s", t.Name, t.ProjectDir),
		}
	}
	if err := g.checkAcyclic(t); err != nil {
		return err
	}
	g.targets = append(g.targets, t)
	g.byID[id] = t
	return nil
}

// checkAcyclic walks t's declared link lists looking for a path back to t
// itself. Targets are immutable and constructed in evaluation order, and a
// link_* argument must already be a constructed Target value, so a cycle
// is impossible by construction; this check exists purely as a defensive
// backstop per spec §4.D.
func (g *Graph) checkAcyclic(t *core.Target) error {
	visited := make(map[core.TargetID]bool)
	var walk func(cur *core.Target) error
	walk = func(cur *core.Target) error {
		for _, dep := range cur.AllLinks() {
			if dep == t {
				return &caterr.GraphInvariant{
					Message: fmt.Sprintf("link cycle detected: %s transitively links itself", t.Name),
				}
			}
			id := dep.ID()
			if visited[id] {
				continue
			}
			visited[id] = true
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t)
}

// Targets returns every target registered with the graph, in insertion
// order.
func (g *Graph) Targets() []*core.Target {
	return g.targets
}

// Target looks up a registered target by its stable ID.
func (g *Graph) Target(id core.TargetID) (*core.Target, bool) {
	t, ok := g.byID[id]
	return t, ok
}
