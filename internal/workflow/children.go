package workflow

import "sort"

// ChildrenOf resolves the tools nested inside a container. With transitive
// false it returns the direct children only; with transitive true it returns
// the full closure, following nested containers.
//
// An unknown container id, or a container with no children, yields an empty
// set and no error. A loop in container references — a tool that is its own
// ancestor, directly or through nesting — yields a *ContainerCycleError
// instead of recursing forever.
func ChildrenOf(g *Graph, containerID string, transitive bool) (map[string]struct{}, error) {
	out := make(map[string]struct{})

	if !transitive {
		for _, id := range g.children[containerID] {
			out[id] = struct{}{}
		}
		return out, nil
	}

	// A tool naming itself as its container is pruned from the child index
	// at build time, so the walk below would quietly return nothing. It has
	// to fail instead.
	if n, ok := g.nodes[containerID]; ok && n.ContainerID == containerID {
		return nil, &ContainerCycleError{IDs: []string{containerID}}
	}

	// Every tool has exactly one container reference, so each id appears in
	// exactly one child list. The only way the walk can meet an id twice, or
	// climb back to the starting container, is a containment loop.
	queue := append([]string(nil), g.children[containerID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == containerID {
			return nil, &ContainerCycleError{IDs: containmentLoop(g, id)}
		}
		if _, seen := out[id]; seen {
			return nil, &ContainerCycleError{IDs: containmentLoop(g, id)}
		}
		out[id] = struct{}{}
		queue = append(queue, g.children[id]...)
	}
	return out, nil
}

// containmentLoop follows ContainerID references upward from a tool known to
// sit on a containment loop and returns the loop's ids in ascending order.
func containmentLoop(g *Graph, id string) []string {
	seen := map[string]int{}
	var chain []string
	cur := id
	for {
		n, ok := g.nodes[cur]
		if !ok || n.ContainerID == "" {
			// Shouldn't happen for a tool on a loop; report what we have.
			return sortedIDs(append(chain, cur))
		}
		if at, dup := seen[cur]; dup {
			return sortedIDs(chain[at:])
		}
		seen[cur] = len(chain)
		chain = append(chain, cur)
		cur = n.ContainerID
	}
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return lessID(out[i], out[j]) })
	return out
}
