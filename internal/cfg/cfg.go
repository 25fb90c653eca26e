// Package cfg builds control-flow and control-dependence graphs from a
// body. The truncated CFG omits unwind edges; the CDG is derived from
// it by the standard post-dominator construction. No instrumentation
// decision depends on these graphs; they annotate the emitted record.
package cfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rbrinfo/rbrinfo/internal/mir"
)

// Edge is one directed edge between blocks
type Edge struct {
	From mir.BlockID
	To   mir.BlockID
}

// Graph is a block-level directed graph
type Graph struct {
	Blocks int
	Edges  []Edge
}

// Build constructs the full CFG of a body, unwind edges included
func Build(body *mir.Body) *Graph {
	g := &Graph{Blocks: len(body.Blocks)}
	for i := range body.Blocks {
		t := body.Blocks[i].Terminator
		if t == nil {
			continue
		}
		for _, succ := range t.Successors() {
			if int(succ) < len(body.Blocks) {
				g.Edges = append(g.Edges, Edge{From: mir.BlockID(i), To: succ})
			}
		}
	}
	return g
}

// BuildTruncated constructs the CFG with unwind and cleanup edges
// omitted
func BuildTruncated(body *mir.Body) *Graph {
	g := &Graph{Blocks: len(body.Blocks)}
	for i := range body.Blocks {
		t := body.Blocks[i].Terminator
		if t == nil {
			continue
		}
		unwind := make(map[mir.BlockID]bool)
		for _, u := range mir.UnwindEdges(t) {
			unwind[u] = true
		}
		for _, succ := range t.Successors() {
			if int(succ) < len(body.Blocks) && !unwind[succ] {
				g.Edges = append(g.Edges, Edge{From: mir.BlockID(i), To: succ})
			}
		}
	}
	return g
}

// Successors returns the adjacency list of the graph
func (g *Graph) Successors() [][]mir.BlockID {
	succs := make([][]mir.BlockID, g.Blocks)
	for _, e := range g.Edges {
		succs[e.From] = append(succs[e.From], e.To)
	}
	return succs
}

// Predecessors returns the reverse adjacency list of the graph
func (g *Graph) Predecessors() [][]mir.BlockID {
	preds := make([][]mir.BlockID, g.Blocks)
	for _, e := range g.Edges {
		preds[e.To] = append(preds[e.To], e.From)
	}
	return preds
}

// Dot renders the graph in dot-compatible textual form
func (g *Graph) Dot(name string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("digraph %s {\n", name))
	for i := 0; i < g.Blocks; i++ {
		sb.WriteString(fmt.Sprintf("  bb%d;\n", i))
	}
	edges := append([]Edge(nil), g.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("  bb%d -> bb%d;\n", e.From, e.To))
	}
	sb.WriteString("}\n")
	return sb.String()
}
