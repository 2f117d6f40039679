package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// echoGenerator answers every prompt with a numbered marker and keeps the
// prompts for inspection.
type echoGenerator struct {
	prompts []string
	failOn  int // 1-based call number to fail at; 0 = never
}

func (e *echoGenerator) Generate(ctx context.Context, p string) (string, error) {
	e.prompts = append(e.prompts, p)
	if e.failOn > 0 && len(e.prompts) == e.failOn {
		return "", errors.New("model unavailable")
	}
	return fmt.Sprintf("generated-%d", len(e.prompts)), nil
}

func pipelineGraph(t *testing.T) *workflow.Graph {
	t.Helper()
	g, err := workflow.Build([]workflow.ToolNode{
		{ID: "1", Type: "Dbfileinput", Configuration: map[string]any{yxmd.ConfigXML: "<File>orders.csv</File>"}},
		{ID: "2", Type: "Filter", Configuration: map[string]any{yxmd.ConfigXML: "<Expression>[Amount] &gt; 100</Expression>"}},
		{ID: "3", Type: "Browsev2"},
		{ID: "10", Type: "Toolcontainer"},
	}, []workflow.Connection{
		{SourceID: "1", TargetID: "2", SourcePort: "Output", TargetPort: "Input"},
		{SourceID: "2", TargetID: "3", SourcePort: "True", TargetPort: "Input"},
	})
	require.NoError(t, err)
	return g
}

func TestDirectPython(t *testing.T) {
	gen := &echoGenerator{}
	svc := NewService(gen)
	g := pipelineGraph(t)

	res, err := svc.DirectPython(context.Background(), Request{Graph: g, ToolIDs: []string{"2", "1"}})
	require.NoError(t, err)

	// Two per-tool calls plus one combine call, in execution order.
	require.Len(t, gen.prompts, 3)
	assert.Contains(t, gen.prompts[0], "Tool type: Dbfileinput")
	assert.Contains(t, gen.prompts[1], "Tool type: Filter")
	assert.Contains(t, gen.prompts[2], "Tool 1 code:\ngenerated-1")
	assert.Contains(t, gen.prompts[2], "Tool 2 code:\ngenerated-2")

	assert.Equal(t, "generated-3", res.Code)
	assert.Equal(t, gen.prompts[2], res.Prompt)
	assert.Equal(t, []string{"1", "2", "3", "10"}, res.Sequence)
	require.Len(t, res.Snippets, 2)
	assert.Equal(t, "1", res.Snippets[0].ToolID)
	assert.Empty(t, res.Guide)
}

func TestDirectDefaultSelectionSkipsContainersAndBrowse(t *testing.T) {
	gen := &echoGenerator{}
	svc := NewService(gen)

	res, err := svc.DirectSQL(context.Background(), Request{Graph: pipelineGraph(t)})
	require.NoError(t, err)

	require.Len(t, res.Snippets, 2)
	assert.Equal(t, "1", res.Snippets[0].ToolID)
	assert.Equal(t, "2", res.Snippets[1].ToolID)
}

func TestAdvancedSQL(t *testing.T) {
	gen := &echoGenerator{}
	svc := NewService(gen)

	res, err := svc.Run(context.Background(), TargetSQL, ModeAdvanced,
		Request{Graph: pipelineGraph(t), ToolIDs: []string{"1", "2"}, Instructions: "snowflake dialect"})
	require.NoError(t, err)

	// Two descriptions, one guide, one final generation.
	require.Len(t, gen.prompts, 4)
	assert.Contains(t, gen.prompts[0], "SUPER CONCISE")
	assert.Contains(t, gen.prompts[2], "CTE organization")
	assert.Contains(t, gen.prompts[2], "snowflake dialect")
	assert.Contains(t, gen.prompts[3], "Workflow description: generated-3")

	assert.Equal(t, "generated-3", res.Guide)
	assert.Equal(t, "generated-4", res.Code)
	assert.Equal(t, gen.prompts[3], res.Prompt)
}

func TestRunRejectsUnknownCombination(t *testing.T) {
	svc := NewService(&echoGenerator{})
	_, err := svc.Run(context.Background(), Target("rust"), ModeDirect, Request{Graph: pipelineGraph(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported conversion")
}

func TestUnknownSelectedTool(t *testing.T) {
	svc := NewService(&echoGenerator{})
	_, err := svc.DirectPython(context.Background(), Request{Graph: pipelineGraph(t), ToolIDs: []string{"404"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCycleSurfacesBeforeAnyGeneration(t *testing.T) {
	g, err := workflow.Build([]workflow.ToolNode{
		{ID: "1", Type: "Filter"}, {ID: "2", Type: "Filter"},
	}, []workflow.Connection{
		{SourceID: "1", TargetID: "2"},
		{SourceID: "2", TargetID: "1"},
	})
	require.NoError(t, err)

	gen := &echoGenerator{}
	_, err = NewService(gen).DirectPython(context.Background(), Request{Graph: g})
	var cycle *workflow.CycleDetectedError
	require.ErrorAs(t, err, &cycle)
	assert.Empty(t, gen.prompts, "no model calls after a structural failure")
}

func TestGenerationErrorAbortsPipeline(t *testing.T) {
	gen := &echoGenerator{failOn: 2}
	_, err := NewService(gen).DirectPython(context.Background(),
		Request{Graph: pipelineGraph(t), ToolIDs: []string{"1", "2"}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "tool 2"), "error names the failing tool: %v", err)
}
