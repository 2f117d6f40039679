// Package convert implements the conversion pipelines that turn a parsed
// workflow graph into generated Python or SQL.
//
// Two pipeline families exist, matching the conversion UI's tabs. The direct
// pipeline generates code per tool and merges the snippets in one combine
// call. The advanced pipeline first describes every tool, distills the
// descriptions into a workflow structure guide, then generates the final
// script from guide plus descriptions. Both run the selected tools in graph
// execution order.
package convert

import (
	"context"
	"fmt"

	"github.com/vk/alterflow/internal/ctxlog"
	"github.com/vk/alterflow/internal/llm"
	"github.com/vk/alterflow/internal/prompt"
	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// Target selects the output language of a conversion.
type Target string

// Mode selects the pipeline family.
type Mode string

const (
	TargetPython Target = "python"
	TargetSQL    Target = "sql"

	ModeDirect   Mode = "direct"
	ModeAdvanced Mode = "advanced"
)

// Request describes one conversion over an already built graph.
type Request struct {
	Graph *workflow.Graph
	// ToolIDs restricts the conversion; empty means every convertible tool
	// (containers and Browse previews excluded).
	ToolIDs []string
	// Instructions is free-form user guidance forwarded into the prompts.
	Instructions string
}

// Result carries everything a conversion produced. Prompt holds the final
// combine/generation prompt verbatim, so callers can show the user exactly
// what the model was asked.
type Result struct {
	Code     string
	Prompt   string
	Sequence []string
	// Snippets are the per-tool artifacts of the first stage: code for the
	// direct pipelines, descriptions for the advanced ones.
	Snippets []prompt.Snippet
	// Guide is the workflow structure guide; empty for direct pipelines.
	Guide string
}

// Service runs conversion pipelines against one Generator.
type Service struct {
	gen llm.Generator
}

// NewService wires the pipelines to a generation backend.
func NewService(gen llm.Generator) *Service {
	return &Service{gen: gen}
}

// Run dispatches to the pipeline selected by target and mode.
func (s *Service) Run(ctx context.Context, target Target, mode Mode, req Request) (*Result, error) {
	switch {
	case target == TargetPython && mode == ModeDirect:
		return s.DirectPython(ctx, req)
	case target == TargetPython && mode == ModeAdvanced:
		return s.AdvancedPython(ctx, req)
	case target == TargetSQL && mode == ModeDirect:
		return s.DirectSQL(ctx, req)
	case target == TargetSQL && mode == ModeAdvanced:
		return s.AdvancedSQL(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported conversion: target %q, mode %q", target, mode)
	}
}

// DirectPython generates Python per tool and merges the snippets.
func (s *Service) DirectPython(ctx context.Context, req Request) (*Result, error) {
	return s.direct(ctx, req, prompt.ToolPython, prompt.CombinePython)
}

// DirectSQL generates SQL per tool and merges the snippets.
func (s *Service) DirectSQL(ctx context.Context, req Request) (*Result, error) {
	return s.direct(ctx, req, prompt.ToolSQL, prompt.CombineSQL)
}

// AdvancedPython runs the description → structure guide → final code
// pipeline for Python.
func (s *Service) AdvancedPython(ctx context.Context, req Request) (*Result, error) {
	return s.advanced(ctx, req, prompt.ToolDescription, prompt.StructureGuidePython, prompt.FinalPython)
}

// AdvancedSQL runs the concise description → CTE guide → final SQL pipeline.
func (s *Service) AdvancedSQL(ctx context.Context, req Request) (*Result, error) {
	return s.advanced(ctx, req, prompt.ToolConciseDescription, prompt.StructureGuideSQL, prompt.FinalSQL)
}

type toolPromptFunc func(*workflow.Graph, workflow.ToolNode) (string, error)
type combinePromptFunc func([]prompt.Snippet, []string, string) (string, error)
type finalPromptFunc func([]prompt.Snippet, []string, string, string) (string, error)

func (s *Service) direct(ctx context.Context, req Request, toolPrompt toolPromptFunc, combine combinePromptFunc) (*Result, error) {
	order, selected, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	snippets, err := s.generatePerTool(ctx, req.Graph, selected, toolPrompt)
	if err != nil {
		return nil, err
	}

	combinePrompt, err := combine(snippets, selected, req.Instructions)
	if err != nil {
		return nil, fmt.Errorf("render combine prompt: %w", err)
	}
	code, err := s.gen.Generate(ctx, combinePrompt)
	if err != nil {
		return nil, fmt.Errorf("combine generated code: %w", err)
	}

	return &Result{Code: code, Prompt: combinePrompt, Sequence: order, Snippets: snippets}, nil
}

func (s *Service) advanced(ctx context.Context, req Request, describe toolPromptFunc, guidePrompt combinePromptFunc, final finalPromptFunc) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	order, selected, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	descriptions, err := s.generatePerTool(ctx, req.Graph, selected, describe)
	if err != nil {
		return nil, err
	}

	gp, err := guidePrompt(descriptions, selected, req.Instructions)
	if err != nil {
		return nil, fmt.Errorf("render structure guide prompt: %w", err)
	}
	guide, err := s.gen.Generate(ctx, gp)
	if err != nil {
		return nil, fmt.Errorf("generate structure guide: %w", err)
	}
	logger.Debug("Structure guide generated.", "guide_len", len(guide))

	fp, err := final(descriptions, selected, req.Instructions, guide)
	if err != nil {
		return nil, fmt.Errorf("render final prompt: %w", err)
	}
	code, err := s.gen.Generate(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("generate final code: %w", err)
	}

	return &Result{Code: code, Prompt: fp, Sequence: order, Snippets: descriptions, Guide: guide}, nil
}

// plan computes the graph's execution order and the selected tool ids in
// that order. An empty selection means every convertible tool.
func (s *Service) plan(ctx context.Context, req Request) (order, selected []string, err error) {
	order, err = workflow.Sequence(req.Graph, nil)
	if err != nil {
		return nil, nil, err
	}

	ids := req.ToolIDs
	if len(ids) == 0 {
		ids = convertibleTools(req.Graph, order)
	}
	selected = prompt.AdjustOrder(ids, order)

	ctxlog.FromContext(ctx).Debug("Conversion planned.",
		"graph_tools", req.Graph.Len(), "selected", len(selected))
	return order, selected, nil
}

func (s *Service) generatePerTool(ctx context.Context, g *workflow.Graph, ids []string, render toolPromptFunc) ([]prompt.Snippet, error) {
	logger := ctxlog.FromContext(ctx)

	snippets := make([]prompt.Snippet, 0, len(ids))
	for i, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("selected tool %s not in workflow", id)
		}

		p, err := render(g, n)
		if err != nil {
			return nil, fmt.Errorf("render prompt for tool %s: %w", id, err)
		}
		out, err := s.gen.Generate(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("generate for tool %s (%s): %w", id, n.Type, err)
		}

		snippets = append(snippets, prompt.Snippet{ToolID: id, ToolType: n.Type, Text: out})
		logger.Info("Tool processed.", "tool_id", id, "tool_type", n.Type, "remaining", len(ids)-i-1)
	}
	return snippets, nil
}

// convertibleTools filters the sequenced ids down to tools worth converting:
// containers group, and Browse tools only preview, so neither produces code.
func convertibleTools(g *workflow.Graph, order []string) []string {
	var out []string
	for _, id := range order {
		if n, ok := g.Node(id); ok {
			if n.Type == yxmd.TypeContainer || n.Type == yxmd.TypeBrowse {
				continue
			}
		}
		out = append(out, id)
	}
	return out
}
