package workflow

import (
	"sort"
	"strconv"
)

// Build validates the parsed tool and connection tables and assembles the
// immutable graph, precomputing the adjacency and container indices.
//
// Build is pure: it performs no I/O and keeps its own copies of the inputs.
// A duplicate tool id yields a *DuplicateNodeError; a connection endpoint
// that names no tool yields a *DanglingConnectionError. Whether to drop the
// offending data and retry is the caller's policy, not Build's.
func Build(nodes []ToolNode, connections []Connection) (*Graph, error) {
	g := &Graph{
		nodes:       make(map[string]ToolNode, len(nodes)),
		order:       make([]string, 0, len(nodes)),
		connections: make([]Connection, len(connections)),
		outgoing:    make(map[string][]Connection),
		incoming:    make(map[string][]Connection),
		children:    make(map[string][]string),
	}

	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, &DuplicateNodeError{ID: n.ID}
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	copy(g.connections, connections)
	for _, c := range g.connections {
		if _, ok := g.nodes[c.SourceID]; !ok {
			return nil, &DanglingConnectionError{SourceID: c.SourceID, TargetID: c.TargetID, MissingID: c.SourceID}
		}
		if _, ok := g.nodes[c.TargetID]; !ok {
			return nil, &DanglingConnectionError{SourceID: c.SourceID, TargetID: c.TargetID, MissingID: c.TargetID}
		}
		g.outgoing[c.SourceID] = append(g.outgoing[c.SourceID], c)
		g.incoming[c.TargetID] = append(g.incoming[c.TargetID], c)
	}

	// Container index: direct children only, a tool never counted as its own
	// child. Nesting loops are tolerated here and surfaced by ChildrenOf.
	for _, id := range g.order {
		n := g.nodes[id]
		if n.ContainerID == "" || n.ContainerID == n.ID {
			continue
		}
		g.children[n.ContainerID] = append(g.children[n.ContainerID], n.ID)
	}

	return g, nil
}

// SortIDs sorts tool ids in place into the package's canonical ascending
// order and returns the slice for convenience.
func SortIDs(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
	return ids
}

// lessID orders tool ids ascending: numerically when both ids are decimal
// integers (the Alteryx case, where "9" precedes "10"), lexicographically
// otherwise.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		if ai != bi {
			return ai < bi
		}
		return a < b
	}
	return a < b
}
