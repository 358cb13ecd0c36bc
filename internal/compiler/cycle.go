package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/renderplan/internal/ir"
)

// CycleError represents a prerequisite cycle between exit nodes.
// A render graph must be acyclic: a node cannot be its own prerequisite.
type CycleError struct {
	Path    []string `json:"path"`    // Cycle path: ["grade", "decode", "grade"]
	Message string   `json:"message"` // Human-readable description
}

func (e CycleError) Error() string { return e.Message }

// AnalyzeCycles detects prerequisite cycles in a fixture.
//
// The algorithm:
//  1. Build the node -> prerequisites graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle
//
// An acyclic fixture returns an empty list. Results follow node declaration
// order, so reports are stable.
func AnalyzeCycles(spec *ir.FixtureSpec) []CycleError {
	g := buildPrerequisiteGraph(spec)

	var cycles []CycleError
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || (len(scc) == 1 && slices.Contains(g.edges[scc[0]], scc[0])) {
			cycles = append(cycles, sccToCycle(scc, g))
		}
	}
	return cycles
}

// prerequisiteGraph maps node name -> prerequisite names, keeping the
// declaration order of nodes for deterministic traversal.
type prerequisiteGraph struct {
	order []string
	edges map[string][]string
}

func buildPrerequisiteGraph(spec *ir.FixtureSpec) prerequisiteGraph {
	g := prerequisiteGraph{edges: make(map[string][]string, len(spec.Nodes))}
	for _, n := range spec.Nodes {
		if _, seen := g.edges[n.Name]; !seen {
			g.order = append(g.order, n.Name)
		}
		// unknown prerequisites are reported by validation, not here
		g.edges[n.Name] = append(g.edges[n.Name], n.Prerequisites...)
	}
	return g
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(g prerequisiteGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, known := g.edges[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycle(scc []string, g prerequisiteGraph) CycleError {
	if len(scc) == 1 {
		return CycleError{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("node %s requires itself", scc[0]),
		}
	}
	path := reconstructCyclePath(scc, g)
	return CycleError{
		Path:    path,
		Message: fmt.Sprintf("prerequisite cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath walks from the earliest declared SCC member along
// prerequisite edges inside the SCC until it returns to the start.
func reconstructCyclePath(scc []string, g prerequisiteGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	var start string
	for _, n := range g.order {
		if members[n] {
			start = n
			break
		}
	}

	path := []string{start}
	visited := map[string]bool{}
	for current := start; ; {
		visited[current] = true
		var next string
		for _, w := range g.edges[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
