// Package prompt renders the prompt text driving code and description
// generation. Every template is a langchaingo PromptTemplate; the rendered
// strings are handed to the llm package verbatim, and each conversion keeps
// its final prompt so the user can inspect what the model was asked.
package prompt

import (
	"fmt"
	"strings"

	"github.com/vk/alterflow/internal/workflow"
)

// InputName is the dataframe-style variable name a tool's input arrives
// under, paired with the input port it connects to.
type InputName struct {
	Name string // e.g. df_580_Output
	Port string // e.g. Left
}

// Inputs lists a tool's inputs in connection order: the variable each
// upstream tool's output is known by, and the port it feeds.
func Inputs(g *workflow.Graph, toolID string) []InputName {
	var out []InputName
	for _, c := range g.Incoming(toolID) {
		out = append(out, InputName{
			Name: fmt.Sprintf("df_%s_%s", c.SourceID, c.SourcePort),
			Port: c.TargetPort,
		})
	}
	return out
}

// Outputs lists the variable names a tool's outputs should be bound to, one
// per distinct output port, in connection order.
func Outputs(g *workflow.Graph, toolID string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, c := range g.Outgoing(toolID) {
		if _, dup := seen[c.SourcePort]; dup {
			continue
		}
		seen[c.SourcePort] = struct{}{}
		out = append(out, fmt.Sprintf("df_%s_%s", toolID, c.SourcePort))
	}
	return out
}

// IOClause renders the input/output naming contract injected into per-tool
// code prompts, so the model wires tools together by the right names.
func IOClause(g *workflow.Graph, toolID string) string {
	inputs := Inputs(g, toolID)
	outputs := Outputs(g, toolID)

	inputStr := "No inputs"
	if len(inputs) > 0 {
		parts := make([]string, len(inputs))
		for i, in := range inputs {
			parts[i] = fmt.Sprintf("%s connects to the '%s'", in.Name, in.Port)
		}
		inputStr = strings.Join(parts, ", ")
	}

	outputStr := "No outputs"
	if len(outputs) > 0 {
		parts := make([]string, len(outputs))
		for i, out := range outputs {
			parts[i] = fmt.Sprintf("name the %s output as %s", ordinal(i+1), out)
		}
		outputStr = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(
		"This tool with id %s has %d input(s), their variable name is %s. Use %s as the input for this tool And %s.",
		toolID, len(inputs), inputStr, inputStr, outputStr)
}

// IONarrative renders the human-readable I/O context used by description
// prompts.
func IONarrative(g *workflow.Graph, toolID string) string {
	inputs := Inputs(g, toolID)
	outputs := Outputs(g, toolID)

	var b strings.Builder
	switch len(inputs) {
	case 0:
		b.WriteString("This tool has no input data")
	case 1:
		fmt.Fprintf(&b, "This tool receives data from %s", inputs[0].Name)
	default:
		names := make([]string, len(inputs))
		for i, in := range inputs {
			names[i] = in.Name
		}
		fmt.Fprintf(&b, "This tool receives data from %s and %s",
			strings.Join(names[:len(names)-1], ", "), names[len(names)-1])
	}

	switch len(outputs) {
	case 0:
		b.WriteString(" and produces no output")
	case 1:
		fmt.Fprintf(&b, " and produces output named %s", outputs[0])
	default:
		fmt.Fprintf(&b, " and produces %d outputs: %s and %s",
			len(outputs), strings.Join(outputs[:len(outputs)-1], ", "), outputs[len(outputs)-1])
	}
	return b.String()
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
