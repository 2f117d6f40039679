package workflow

// ToolNode is one configured processing step in an Alteryx workflow.
type ToolNode struct {
	// ID is the unique ToolID from the workflow file. Alteryx assigns
	// decimal strings, but the graph treats ids as opaque keys.
	ID string
	// Type names the tool kind, e.g. "Filter", "Join", "Toolcontainer".
	Type string
	// Configuration carries the tool-specific parameters extracted from the
	// XML. It is opaque to every algorithm in this package.
	Configuration map[string]any
	// ContainerID references the enclosing container tool, or "" when the
	// tool sits at the workflow's top level. It is a weak reference, not
	// ownership.
	ContainerID string
}

// Connection is a directed data-flow edge between two tools. Multiple
// connections may share a source (fan-out, e.g. a Filter's True/False
// branches) or a target (fan-in, e.g. a Join's Left/Right inputs).
type Connection struct {
	SourceID   string
	TargetID   string
	SourcePort string
	TargetPort string
}

// Graph owns the full set of tools and connections of one workflow, with
// adjacency and container indices precomputed at build time. A Graph is
// immutable after Build returns it.
type Graph struct {
	nodes       map[string]ToolNode
	order       []string // node ids in insertion order
	connections []Connection
	outgoing    map[string][]Connection
	incoming    map[string][]Connection
	children    map[string][]string // container id -> direct child ids
}

// Node returns the tool with the given id.
func (g *Graph) Node(id string) (ToolNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all tool ids in the order the tools were supplied to Build.
// The returned slice is a copy.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Len reports the number of tools in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Connections returns every connection in the workflow, in file order. The
// returned slice is a copy.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, len(g.connections))
	copy(out, g.connections)
	return out
}

// Outgoing returns the connections whose source is the given tool, in file
// order. The returned slice is a copy.
func (g *Graph) Outgoing(id string) []Connection {
	return append([]Connection(nil), g.outgoing[id]...)
}

// Incoming returns the connections whose target is the given tool, in file
// order. The returned slice is a copy.
func (g *Graph) Incoming(id string) []Connection {
	return append([]Connection(nil), g.incoming[id]...)
}
