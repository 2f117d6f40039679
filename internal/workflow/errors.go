package workflow

import (
	"fmt"
	"strings"
)

// DuplicateNodeError reports two tools sharing one ToolID.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate tool id %q", e.ID)
}

// DanglingConnectionError reports a connection whose endpoint references a
// tool that does not exist in the workflow.
type DanglingConnectionError struct {
	SourceID  string
	TargetID  string
	MissingID string
}

func (e *DanglingConnectionError) Error() string {
	return fmt.Sprintf("connection %s -> %s references unknown tool id %q",
		e.SourceID, e.TargetID, e.MissingID)
}

// CycleDetectedError reports that the requested ordering is impossible
// because the (sub)graph contains at least one dependency cycle. IDs holds
// every tool participating in a cycle, in ascending id order.
type CycleDetectedError struct {
	IDs []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("cycle detected among tools [%s]", strings.Join(e.IDs, ", "))
}

// ContainerCycleError reports a loop in container nesting, including a tool
// listing itself as its own container. IDs holds the tools on the loop, in
// ascending id order.
type ContainerCycleError struct {
	IDs []string
}

func (e *ContainerCycleError) Error() string {
	return fmt.Sprintf("container nesting cycle among tools [%s]", strings.Join(e.IDs, ", "))
}
