package prompt

import "strings"

// Guidance returns curated, tool-specific instructions injected into the
// per-tool prompts as additional context, or "" for tool kinds without an
// entry. Keys are the normalized tool types produced by yxmd.ToolType.
func Guidance(toolType string) string {
	return strings.TrimSpace(toolGuide[toolType])
}

// toolGuide maps normalized Alteryx tool types to conversion notes. The
// entries spell out how each tool's XML configuration maps onto pandas/SQL
// semantics, which the model routinely gets wrong without help.
var toolGuide = map[string]string{
	"Dbfileinput": `
Input Data Tool: detect the extension of the referenced file and generate the matching read call.
- <Delimeter> inside <FormatSpecificOptions> holds the value separator for CSV input.
- <ImportLine>N</ImportLine> sets the first imported record: header=N-1 in pandas terms.
- OutputFileName="" means no extra column; OutputFileName="FileName" adds a FileName column
  holding the base file name without extension; "Path" adds the absolute path instead.
- Excel sheet references carry a trailing '$' that must be stripped ("Sheet1$" reads "Sheet1").
- A '*' wildcard in the path means every matching file in the directory is read and concatenated.
- Do not emit preview or print statements; only the read itself.`,

	"Filter": `
Filter Tool: the <Expression> element holds the condition in Alteryx formula syntax.
Column references appear in square brackets, e.g. [Amount] > 100.
The tool has two outputs: the True branch receives rows matching the expression,
the False branch the rest. Emit both when both output names are requested.`,

	"Join": `
Join Tool: joins two inputs on the field pairs listed in <JoinInfo> elements
(connection "Left" and "Right"). The tool has three outputs: J holds the inner
join, L the unmatched left rows, R the unmatched right rows. Only emit the
branches whose output names are requested. <SelectConfiguration> may rename or
drop columns after the join; apply it to the joined result.`,

	"Union": `
Union Tool: stacks all inputs vertically. <Mode>ByName</Mode> aligns columns by
name (missing columns become nulls); ByPosition aligns by column position.`,

	"Alteryxselect": `
Select Tool: <SelectField> elements control the output columns. selected="False"
drops the field, rename="..." renames it, type/size attributes change its data
type. A trailing *Unknown field selected="True" keeps all unlisted columns.`,

	"Formula": `
Formula Tool: each <FormulaField> adds or replaces one column. expression uses
Alteryx formula syntax with [Column] references; translate IIF/IF-THEN-ELSE to
conditional expressions and keep the declared field order, since later formulas
may reference earlier results.`,

	"Summarize": `
Summarize Tool: <SummarizeField> elements define the aggregation. action="GroupBy"
fields form the grouping key; other actions (Sum, Count, CountDistinct, Min, Max,
Avg, Concat) aggregate the named field, with rename="..." naming the result column.`,

	"Sort": `
Sort Tool: <Field field="..." order="Ascending|Descending"> elements list the sort
keys in priority order.`,

	"Unique": `
Unique Tool: <UniqueFields> lists the columns that determine uniqueness. The U
output keeps the first occurrence of each key, the D output the duplicates.`,

	"Textinput": `
Text Input Tool: the configuration embeds literal rows under <Data>. Materialize
them as an inline table (a DataFrame literal or a VALUES clause), preserving the
declared column names and order.`,

	"Appendfields": `
Append Fields Tool: cartesian-appends the columns of the Source input onto every
row of the Target input. Warn-level configuration about too many records can be
ignored in generated code.`,
}
