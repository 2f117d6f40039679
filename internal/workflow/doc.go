// Package workflow holds the in-memory model of a parsed Alteryx workflow:
// the tools, the directed data-flow connections between them, and the
// container nesting index. It provides the three structural queries the rest
// of the application is built on: graph construction with integrity
// validation, deterministic topological sequencing, and container child
// resolution.
//
// The graph is built once per uploaded workflow and is read-only afterwards.
// None of the operations here perform I/O or interpret tool configuration.
package workflow
