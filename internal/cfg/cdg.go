package cfg

import (
	"github.com/rbrinfo/rbrinfo/internal/mir"
)

// virtualExit is the synthetic sink every return-like block feeds into
// during post-dominance computation
const virtualExit = -1

// BuildCDG derives the control-dependence graph from a (truncated)
// CFG. An edge X -> Y means Y's execution is controlled by the branch
// at X: for some CFG edge X -> S, Y post-dominates S but does not
// post-dominate X.
func BuildCDG(g *Graph) *Graph {
	ipdom := postDominators(g)
	cdg := &Graph{Blocks: g.Blocks}

	seen := make(map[Edge]bool)
	for _, e := range g.Edges {
		// Walk the post-dominator tree from the successor up to (but
		// not including) X's immediate post-dominator.
		runner := int(e.To)
		stop := ipdom[e.From]
		visited := make(map[int]bool)
		for runner != stop && runner != virtualExit && !visited[runner] {
			visited[runner] = true
			dep := Edge{From: e.From, To: mir.BlockID(runner)}
			if !seen[dep] {
				seen[dep] = true
				cdg.Edges = append(cdg.Edges, dep)
			}
			runner = ipdom[runner]
		}
	}
	return cdg
}

// postDominators computes the immediate post-dominator of every block
// by the iterative dataflow algorithm on the reversed graph, with a
// virtual exit joining every block that has no successors.
func postDominators(g *Graph) []int {
	succs := g.Successors()
	ipdom := make([]int, g.Blocks)
	processed := make([]bool, g.Blocks)
	for i := range ipdom {
		ipdom[i] = virtualExit
	}

	// Exit blocks post-dominate only themselves.
	for i := 0; i < g.Blocks; i++ {
		if len(succs[i]) == 0 {
			processed[i] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for i := g.Blocks - 1; i >= 0; i-- {
			if len(succs[i]) == 0 {
				continue
			}
			newDom := -2 // unset
			for _, s := range succs[i] {
				if !processed[s] {
					continue
				}
				if newDom == -2 {
					newDom = int(s)
				} else {
					newDom = intersect(newDom, int(s), ipdom, processed)
				}
			}
			if newDom == -2 {
				continue
			}
			if !processed[i] || ipdom[i] != newDom {
				ipdom[i] = newDom
				processed[i] = true
				changed = true
			}
		}
	}
	return ipdom
}

// intersect finds the common post-dominator of two blocks by walking
// both paths toward the virtual exit
func intersect(a, b int, ipdom []int, processed []bool) int {
	onPath := make(map[int]bool)
	for cur := a; cur != virtualExit && !onPath[cur]; cur = ipdom[cur] {
		onPath[cur] = true
		if !processed[cur] {
			break
		}
	}
	visited := make(map[int]bool)
	for cur := b; cur != virtualExit && !visited[cur]; cur = ipdom[cur] {
		visited[cur] = true
		if onPath[cur] {
			return cur
		}
		if !processed[cur] {
			break
		}
	}
	return virtualExit
}
