package prompt

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// maxConfigLen caps the raw configuration XML included in a prompt, keeping
// pathological tools inside the model's context window.
const maxConfigLen = 8000

// Snippet is one tool's generated artifact (code or description), carried
// between the per-tool and combine stages of a pipeline.
type Snippet struct {
	ToolID   string
	ToolType string
	Text     string
}

var toolPythonTemplate = prompts.NewPromptTemplate(`You are an expert data engineer. Convert the following Alteryx tool configuration into equivalent Python code using open-source libraries.
Tool type: {{.tool_type}}
Configuration details: {{.config_text}}
I/O details: {{.io_info}}
Additional instructions: {{.additional_instructions}} In the <DefaultAnnotationText> element, there is a text field that contains the high level description of the tool but it could be empty. You can keep it as comment in the code.

Rules:
1. Please return only the Python code that reproduces the functionality of this tool.
2. Include import statements as a comments.
3. Don't include any function definitions or docstrings.
4. Don't include sample data, just the code.
`, []string{"tool_type", "config_text", "io_info", "additional_instructions"})

var toolSQLTemplate = prompts.NewPromptTemplate(`You are an expert SQL data engineer. Convert the following Alteryx tool configuration into equivalent SQL code.
Tool type: {{.tool_type}}
Configuration details: {{.config_text}}
I/O details: {{.io_info}}
Additional instructions: {{.additional_instructions}}

Rules:
1. Return only the SQL code that reproduces the functionality of this tool.
2. Use standard SQL syntax compatible with most databases (Snowflake, BigQuery, etc.).
3. Create CTEs (Common Table Expressions) for intermediate steps when needed.
4. Use meaningful table aliases and column names.
5. Include comments to explain complex logic.
6. Handle data types appropriately (VARCHAR, INTEGER, DECIMAL, DATE, etc.).
7. For joins, specify the join type clearly (INNER, LEFT, RIGHT, FULL).
8. For aggregations, use proper GROUP BY clauses.
9. For filters, use WHERE clauses with proper syntax.
10. For transformations, use CASE statements or other SQL functions as appropriate.

The SQL should be production-ready and follow best practices.
`, []string{"tool_type", "config_text", "io_info", "additional_instructions"})

var toolDescriptionTemplate = prompts.NewPromptTemplate(`You are an expert data engineer analyzing Alteryx tool configurations to generate working Python code.
Analyze the following Alteryx tool configuration and provide a detailed, technical description that includes ALL information needed to implement the tool in Python.

Tool ID: {{.tool_id}}
Tool type: {{.tool_type}}
Configuration details: {{.config_text}}
I/O context: {{.io_context}}
Additional context: {{.additional_context}}

Instructions:
1. Provide a detailed technical description that captures ALL parameters and logic needed for Python implementation
2. Include specific column names, data types, filter values, join conditions, etc.
3. Specify input and output dataframe names clearly
4. For filters: include exact filter conditions, values, AND/OR logic, data types
5. For joins: specify join type (inner, left, right, outer), join columns, and any additional conditions
6. For transformations: include exact formulas, calculations, new column names
7. For aggregations: specify group-by columns, aggregation functions, new column names
8. For sorting: specify sort columns and order (ascending/descending)

Format your response as:

## Tool {{.tool_id}} ({{.tool_type}})

### Tool Purpose
[Brief business purpose in 1-2 sentences]

### Technical Details
- **Input Dataframe(s)**: [exact dataframe names]
- **Output Dataframe**: [exact output name]
- **Operation Type**: [filter/join/transform/aggregate/etc.]

### Specific Parameters
[List all specific parameters found in the configuration]
`, []string{"tool_id", "tool_type", "config_text", "io_context", "additional_context"})

var toolConciseDescriptionTemplate = prompts.NewPromptTemplate(`You are an expert SQL data engineer. Analyze this Alteryx tool configuration and provide a SUPER CONCISE description with only essential information needed to rebuild the data pipeline.

Tool ID: {{.tool_id}}
Tool type: {{.tool_type}}
Configuration: {{.config_text}}
I/O: {{.io_context}}

Instructions:
1. Keep description under 100 words - be extremely concise
2. Focus ONLY on essential parameters needed to rebuild the pipeline
3. Skip technical details like encoding, file paths, or internal configurations
4. Include only: key columns, filter conditions, join criteria, formulas, aggregations
5. Use bullet points for easy skimming
6. Focus on business logic and data transformations

Format as:

**Purpose**: [1-sentence business purpose]

**Key Parameters**:
- [essential parameter 1]
- [essential parameter 2]

**Output**: [what this step produces]
`, []string{"tool_id", "tool_type", "config_text", "io_context"})

var combinePythonTemplate = prompts.NewPromptTemplate(`You are an expert data engineer. We have multiple python code snippets translated from different Alteryx tools, and we want to combine them into a single coherent Python script.

Code snippets:
{{.all_tool_code}}

Extra user instructions: {{.extra_user_instructions}}

Requirements:
1. Please return only the combined Python script, don't use a code block. Just return the code.
2. Do not add any import statements for common packages (Assume they exist), for self-build functions, include import statement as comments
3. Do not write function definitions or docstrings unless needed to chain code together.
4. Merge them in a logical order that respects typical data processing flow (if possible).
5. Eliminate redundant or conflicting statements.
6. Add concise comment to help understand the code.
7. When combining the tools snippets, please strictly follow the order here: {{.execution_sequence}}

Provide only the merged code below:
`, []string{"all_tool_code", "extra_user_instructions", "execution_sequence"})

var combineSQLTemplate = prompts.NewPromptTemplate(`You are an expert SQL data engineer. We have multiple SQL code snippets translated from different Alteryx tools, and we want to combine them into a single coherent SQL query or script.

Code snippets:
{{.all_tool_code}}

Extra user instructions: {{.extra_user_instructions}}

Requirements:
1. Return only the combined SQL script without any code block markers.
2. Chain the snippets with CTEs so each tool's output feeds the next step.
3. Eliminate redundant or conflicting statements.
4. Add concise comments to help understand each step.
5. When combining the snippets, strictly follow the order here: {{.execution_sequence}}

Provide only the merged SQL below:
`, []string{"all_tool_code", "extra_user_instructions", "execution_sequence"})

var structureGuidePythonTemplate = prompts.NewPromptTemplate(`You are an expert Python data engineer. Create a comprehensive Python code structure guide based on the following tool descriptions.

Tool IDs: {{.tool_ids}}
Execution sequence: {{.execution_sequence}}
Extra user instructions: {{.extra_user_instructions}}

Tool descriptions:
{{.combined_descriptions}}

Instructions:
1. Create a detailed Python code structure guide that explains how to implement this workflow
2. Include recommended imports, data structures, and function organization
3. Explain the data flow between tools and how to handle dependencies
4. Include error handling and validation considerations
5. Explain how to handle the execution sequence properly

Format your response as a detailed markdown guide with clear sections and code examples.
`, []string{"tool_ids", "execution_sequence", "extra_user_instructions", "combined_descriptions"})

var structureGuideSQLTemplate = prompts.NewPromptTemplate(`You are an expert SQL data engineer. Create a SUPER CONCISE SQL structure guide based on these tool descriptions.

Tool IDs: {{.tool_ids}}
Execution sequence: {{.execution_sequence}}
Extra instructions: {{.extra_user_instructions}}

Tool descriptions:
{{.combined_descriptions}}

Instructions:
1. Create a BRIEF SQL structure guide (under 300 words)
2. Focus ONLY on CTE organization and logical flow
3. Use bullet points for easy skimming
4. Include only essential naming conventions and structure tips

Format as:

**Pipeline Overview**: [1-sentence summary]

**CTE Structure**:
- [CTE name] - [brief purpose]

**Key Considerations**:
- [essential tip]
`, []string{"tool_ids", "execution_sequence", "extra_user_instructions", "combined_descriptions"})

var finalPythonTemplate = prompts.NewPromptTemplate(`You are an expert Python data engineer. Generate complete, production-ready Python code based on the following information.

Tool IDs: {{.tool_ids}}
Execution sequence: {{.execution_sequence}}
Extra user instructions: {{.extra_user_instructions}}
Workflow description: {{.workflow_description}}

Tool descriptions:
{{.combined_descriptions}}

Instructions:
1. Generate complete, executable Python code that implements the entire workflow
2. Follow the workflow description and structure guide provided
3. Implement all tools in the correct execution sequence
4. Include all necessary imports and dependencies
5. Use proper variable naming and data flow between tools
6. Add comprehensive error handling and validation
7. Make the code production-ready and maintainable

Return only the complete Python code without any additional explanations.
`, []string{"tool_ids", "execution_sequence", "extra_user_instructions", "workflow_description", "combined_descriptions"})

var finalSQLTemplate = prompts.NewPromptTemplate(`You are an expert SQL data engineer. Generate complete, production-ready SQL code based on the following information.

Tool IDs: {{.tool_ids}}
Execution sequence: {{.execution_sequence}}
Extra user instructions: {{.extra_user_instructions}}
Workflow description: {{.workflow_description}}

Tool descriptions:
{{.combined_descriptions}}

Instructions:
1. Generate complete, executable SQL code that implements the entire data pipeline
2. Follow the workflow description and structure guide provided
3. Implement all tools in the correct execution sequence using CTEs
4. Use proper table naming and column references between steps
5. Use standard SQL syntax compatible with most databases
6. Ensure the final query is complete and can be executed directly

Return only the complete SQL code without any additional explanations.
`, []string{"tool_ids", "execution_sequence", "extra_user_instructions", "workflow_description", "combined_descriptions"})

// ToolPython renders the per-tool Python conversion prompt.
func ToolPython(g *workflow.Graph, n workflow.ToolNode) (string, error) {
	return toolPythonTemplate.Format(map[string]any{
		"tool_type":               n.Type,
		"config_text":             configText(n),
		"io_info":                 IOClause(g, n.ID),
		"additional_instructions": Guidance(n.Type),
	})
}

// ToolSQL renders the per-tool SQL conversion prompt.
func ToolSQL(g *workflow.Graph, n workflow.ToolNode) (string, error) {
	return toolSQLTemplate.Format(map[string]any{
		"tool_type":               n.Type,
		"config_text":             configText(n),
		"io_info":                 IOClause(g, n.ID),
		"additional_instructions": Guidance(n.Type),
	})
}

// ToolDescription renders the detailed per-tool description prompt used by
// the advanced Python pipeline.
func ToolDescription(g *workflow.Graph, n workflow.ToolNode) (string, error) {
	return toolDescriptionTemplate.Format(map[string]any{
		"tool_id":            n.ID,
		"tool_type":          n.Type,
		"config_text":        configText(n),
		"io_context":         IONarrative(g, n.ID),
		"additional_context": Guidance(n.Type),
	})
}

// ToolConciseDescription renders the compact per-tool description prompt
// used by the SQL pipeline.
func ToolConciseDescription(g *workflow.Graph, n workflow.ToolNode) (string, error) {
	return toolConciseDescriptionTemplate.Format(map[string]any{
		"tool_id":     n.ID,
		"tool_type":   n.Type,
		"config_text": configText(n),
		"io_context":  IONarrative(g, n.ID),
	})
}

// CombinePython renders the merge prompt for per-tool Python snippets.
func CombinePython(snippets []Snippet, sequence []string, extra string) (string, error) {
	return combinePythonTemplate.Format(map[string]any{
		"all_tool_code":           joinSnippets(snippets, "code"),
		"extra_user_instructions": extra,
		"execution_sequence":      strings.Join(sequence, ", "),
	})
}

// CombineSQL renders the merge prompt for per-tool SQL snippets.
func CombineSQL(snippets []Snippet, sequence []string, extra string) (string, error) {
	return combineSQLTemplate.Format(map[string]any{
		"all_tool_code":           joinSnippets(snippets, "code"),
		"extra_user_instructions": extra,
		"execution_sequence":      strings.Join(sequence, ", "),
	})
}

// StructureGuidePython renders the workflow structure-guide prompt over the
// detailed tool descriptions.
func StructureGuidePython(descriptions []Snippet, sequence []string, extra string) (string, error) {
	return structureGuidePythonTemplate.Format(map[string]any{
		"tool_ids":                snippetIDs(descriptions),
		"execution_sequence":      strings.Join(sequence, ", "),
		"extra_user_instructions": extra,
		"combined_descriptions":   joinSnippets(descriptions, "description"),
	})
}

// StructureGuideSQL renders the concise SQL structure-guide prompt.
func StructureGuideSQL(descriptions []Snippet, sequence []string, extra string) (string, error) {
	return structureGuideSQLTemplate.Format(map[string]any{
		"tool_ids":                snippetIDs(descriptions),
		"execution_sequence":      strings.Join(sequence, ", "),
		"extra_user_instructions": extra,
		"combined_descriptions":   joinSnippets(descriptions, "description"),
	})
}

// FinalPython renders the final code-generation prompt of the advanced
// pipeline, combining the structure guide with the tool descriptions.
func FinalPython(descriptions []Snippet, sequence []string, extra, guide string) (string, error) {
	return finalPythonTemplate.Format(map[string]any{
		"tool_ids":                snippetIDs(descriptions),
		"execution_sequence":      strings.Join(sequence, ", "),
		"extra_user_instructions": extra,
		"workflow_description":    guide,
		"combined_descriptions":   joinSnippets(descriptions, "description"),
	})
}

// FinalSQL renders the final SQL generation prompt.
func FinalSQL(descriptions []Snippet, sequence []string, extra, guide string) (string, error) {
	return finalSQLTemplate.Format(map[string]any{
		"tool_ids":                snippetIDs(descriptions),
		"execution_sequence":      strings.Join(sequence, ", "),
		"extra_user_instructions": extra,
		"workflow_description":    guide,
		"combined_descriptions":   joinSnippets(descriptions, "description"),
	})
}

func configText(n workflow.ToolNode) string {
	text, _ := n.Configuration[yxmd.ConfigXML].(string)
	if len(text) > maxConfigLen {
		text = text[:maxConfigLen] + "... [truncated]"
	}
	return text
}

func joinSnippets(snippets []Snippet, kind string) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = fmt.Sprintf("Tool %s %s:\n%s", s.ToolID, kind, s.Text)
	}
	return strings.Join(parts, "\n\n")
}

func snippetIDs(snippets []Snippet) string {
	ids := make([]string, len(snippets))
	for i, s := range snippets {
		ids[i] = s.ToolID
	}
	return strings.Join(ids, ", ")
}
