package workflow

import (
	"sort"
)

// Sequence computes a deterministic execution order over the graph: for every
// connection, the source id appears before the target id. Downstream prompt
// generation depends on this order being stable across runs, so ties between
// simultaneously-ready tools are broken by ascending id.
//
// A non-nil scope restricts the ordering to the induced subgraph on those
// ids: only connections with both endpoints in scope count as dependencies,
// and tools outside scope are invisible, including as dependency sources.
// Scope ids that name no tool in the graph are silently ignored. A nil scope
// orders the whole graph.
//
// If the induced subgraph contains a cycle, Sequence returns a
// *CycleDetectedError naming the tools on cycles; it never truncates or
// guesses a partial order. The graph is not mutated.
func Sequence(g *Graph, scope map[string]struct{}) ([]string, error) {
	inScope := func(id string) bool {
		if scope == nil {
			return true
		}
		_, ok := scope[id]
		return ok
	}

	var ids []string
	for _, id := range g.order {
		if inScope(id) {
			ids = append(ids, id)
		}
	}

	indeg := make(map[string]int, len(ids))
	succ := make(map[string][]string, len(ids))
	for _, id := range ids {
		indeg[id] = 0
	}
	for _, c := range g.connections {
		if !inScope(c.SourceID) || !inScope(c.TargetID) {
			continue
		}
		succ[c.SourceID] = append(succ[c.SourceID], c.TargetID)
		indeg[c.TargetID]++
	}

	// Kahn's algorithm with the ready set kept in ascending id order.
	var ready []string
	for _, id := range ids {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return lessID(ready[i], ready[j]) })

	push := func(id string) {
		at := sort.Search(len(ready), func(i int) bool { return !lessID(ready[i], id) })
		ready = append(ready, "")
		copy(ready[at+1:], ready[at:])
		ready[at] = id
	}

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range succ[id] {
			indeg[next]--
			if indeg[next] == 0 {
				push(next)
			}
		}
	}

	if len(order) < len(ids) {
		return nil, &CycleDetectedError{IDs: cyclicNodes(ids, succ)}
	}
	return order, nil
}

// cyclicNodes returns, in ascending id order, the ids that sit on at least
// one cycle of the subgraph described by succ. It computes strongly connected
// components with Tarjan's algorithm; a component is cyclic when it has more
// than one member or a self-edge.
func cyclicNodes(ids []string, succ map[string][]string) []string {
	index := make(map[string]int, len(ids))
	low := make(map[string]int, len(ids))
	onStack := make(map[string]bool, len(ids))
	var stack []string
	next := 0

	var cyclic []string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succ[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && index[w] < low[v] {
				low[v] = index[w]
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 {
				cyclic = append(cyclic, comp...)
				return
			}
			// Single-member component: cyclic only via a self-edge.
			for _, w := range succ[comp[0]] {
				if w == comp[0] {
					cyclic = append(cyclic, comp[0])
					break
				}
			}
		}
	}

	for _, id := range ids {
		if _, seen := index[id]; !seen {
			strongconnect(id)
		}
	}

	sort.Slice(cyclic, func(i, j int) bool { return lessID(cyclic[i], cyclic[j]) })
	return cyclic
}
