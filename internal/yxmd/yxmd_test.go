package yxmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/alterflow/internal/workflow"
)

const sampleWorkflow = `<?xml version="1.0"?>
<AlteryxDocument yxmdVer="2021.4">
  <Nodes>
    <Node ToolID="1">
      <GuiSettings Plugin="AlteryxBasePluginsGui.DbFileInput.DbFileInput">
        <Position x="54" y="54" />
      </GuiSettings>
      <Properties>
        <Configuration>
          <File FileFormat="0">orders.csv</File>
        </Configuration>
        <Annotation DisplayMode="0">
          <DefaultAnnotationText>orders.csv</DefaultAnnotationText>
        </Annotation>
      </Properties>
    </Node>
    <Node ToolID="2">
      <GuiSettings Plugin="AlteryxBasePluginsGui.Filter.Filter">
        <Position x="150" y="54" />
      </GuiSettings>
      <Properties>
        <Configuration>
          <Expression>[Amount] &gt; 100</Expression>
        </Configuration>
        <Annotation DisplayMode="0">
          <DefaultAnnotationText />
        </Annotation>
      </Properties>
    </Node>
    <Node ToolID="10">
      <GuiSettings Plugin="AlteryxGuiToolkit.ToolContainer.ToolContainer">
        <Position x="250" y="30" />
      </GuiSettings>
      <Properties>
        <Configuration>
          <Caption>Cleanup</Caption>
        </Configuration>
      </Properties>
      <ChildNodes>
        <Node ToolID="11">
          <GuiSettings Plugin="AlteryxBasePluginsGui.AlteryxSelect.AlteryxSelect" />
          <Properties />
        </Node>
        <Node ToolID="12">
          <GuiSettings Plugin="AlteryxGuiToolkit.BrowseV2.BrowseV2" />
          <Properties />
        </Node>
      </ChildNodes>
    </Node>
  </Nodes>
  <Connections>
    <Connection>
      <Origin ToolID="1" Connection="Output" />
      <Destination ToolID="2" Connection="Input" />
    </Connection>
    <Connection>
      <Origin ToolID="2" Connection="True" />
      <Destination ToolID="11" Connection="Input" />
    </Connection>
    <Connection>
      <Origin ToolID="11" Connection="Output" />
      <Destination ToolID="12" Connection="Input" />
    </Connection>
  </Connections>
</AlteryxDocument>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleWorkflow))
	require.NoError(t, err)
	assert.Equal(t, "2021.4", doc.Version)

	t.Run("tools are flattened with container ids", func(t *testing.T) {
		require.Len(t, doc.Tools, 5)
		byID := map[string]workflow.ToolNode{}
		for _, n := range doc.Tools {
			byID[n.ID] = n
		}

		assert.Equal(t, "Dbfileinput", byID["1"].Type)
		assert.Equal(t, "Filter", byID["2"].Type)
		assert.Equal(t, "Toolcontainer", byID["10"].Type)
		assert.Equal(t, "Alteryxselect", byID["11"].Type)
		assert.Equal(t, "Browsev2", byID["12"].Type)

		assert.Empty(t, byID["1"].ContainerID)
		assert.Empty(t, byID["10"].ContainerID)
		assert.Equal(t, "10", byID["11"].ContainerID)
		assert.Equal(t, "10", byID["12"].ContainerID)
	})

	t.Run("configuration keeps the raw xml and annotation", func(t *testing.T) {
		var input workflow.ToolNode
		for _, n := range doc.Tools {
			if n.ID == "1" {
				input = n
			}
		}
		assert.Equal(t, "AlteryxBasePluginsGui.DbFileInput.DbFileInput", input.Configuration[ConfigPlugin])
		assert.Contains(t, input.Configuration[ConfigXML], "orders.csv")
		assert.Contains(t, input.Configuration[ConfigXML], "<Configuration>")
		assert.Equal(t, "orders.csv", input.Configuration[ConfigAnnotation])
	})

	t.Run("connections keep ports", func(t *testing.T) {
		require.Len(t, doc.Connections, 3)
		assert.Equal(t, workflow.Connection{
			SourceID: "1", TargetID: "2", SourcePort: "Output", TargetPort: "Input",
		}, doc.Connections[0])
		assert.Equal(t, "True", doc.Connections[1].SourcePort)
	})

	t.Run("parsed tables build a valid graph", func(t *testing.T) {
		g, err := workflow.Build(doc.Tools, doc.Connections)
		require.NoError(t, err)

		order, err := workflow.Sequence(g, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "10", "11", "12"}, order)

		kids, err := workflow.ChildrenOf(g, "10", true)
		require.NoError(t, err)
		assert.Len(t, kids, 2)
		assert.Equal(t, []string{"11"}, SelectableChildren(g, kids))
	})
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<AlteryxDocument><Nodes>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode workflow xml")
}

func TestToolType(t *testing.T) {
	cases := []struct {
		plugin, want string
	}{
		{"AlteryxBasePluginsGui.Filter.Filter", "Filter"},
		{"AlteryxBasePluginsGui.Join.Join", "Join"},
		{"AlteryxGuiToolkit.ToolContainer.ToolContainer", "Toolcontainer"},
		{"AlteryxGuiToolkit.BrowseV2.BrowseV2", "Browsev2"},
		{"AlteryxBasePluginsGui.Formula.Formula()", "Formula"},
		{"Summarize", "Summarize"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToolType(tc.plugin), "plugin %q", tc.plugin)
	}
}
