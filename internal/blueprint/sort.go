package blueprint

import (
	"fmt"
	"sort"
)

// topologicalRanks orders the dependency graph with Kahn's algorithm and
// returns a rank per node such that every dependency ranks strictly lower
// than its dependents. Edges point from dependent to dependency, so the raw
// Kahn output (dependents first) is reversed before ranks are assigned.
//
// Nodes that appear only as ref endpoints (implicit resources have edges but
// no manifest entry of their own) are included in the ordering. Duplicate
// edges are collapsed; counting them twice would leave nodes permanently
// undrained. A graph that does not drain is cyclic and returns
// ErrCyclicDependency naming the stuck nodes.
func topologicalRanks(nodes []string, refs [][2]string) (map[string]int, error) {
	inDegree := make(map[string]int, len(nodes))
	outgoing := make(map[string][]string, len(nodes))
	seenEdge := make(map[[2]string]bool, len(refs))

	for _, n := range nodes {
		if _, ok := inDegree[n]; !ok {
			inDegree[n] = 0
		}
	}
	for _, ref := range refs {
		if seenEdge[ref] {
			continue
		}
		seenEdge[ref] = true
		from, to := ref[0], ref[1]
		if _, ok := inDegree[from]; !ok {
			inDegree[from] = 0
		}
		if _, ok := inDegree[to]; !ok {
			inDegree[to] = 0
		}
		outgoing[from] = append(outgoing[from], to)
		inDegree[to]++
	}

	queue := make([]string, 0, len(inDegree))
	for n, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	ordered := make([]string, 0, len(inDegree))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		ordered = append(ordered, n)
		next := outgoing[n]
		sort.Strings(next)
		for _, to := range next {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(ordered) != len(inDegree) {
		stuck := make([]string, 0, len(inDegree)-len(ordered))
		for n, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, n)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %v", ErrCyclicDependency, stuck)
	}

	ranks := make(map[string]int, len(ordered))
	for i, n := range ordered {
		ranks[n] = len(ordered) - 1 - i
	}
	return ranks, nil
}
