// Package yxmd parses Alteryx workflow files (.yxmd, an XML format) into the
// tool and connection tables the workflow graph is built from.
//
// A .yxmd document lists every tool as a <Node> element — container tools
// nest their members under <ChildNodes> — and the data-flow edges under
// <Connections>. The parser keeps each tool's inner XML verbatim: that text
// is what the prompt layer hands to the model, and interpreting it per tool
// kind is nobody's business at this layer.
package yxmd

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/alterflow/internal/workflow"
)

// Configuration keys populated for every parsed tool.
const (
	ConfigPlugin     = "plugin"     // full dotted plugin name from GuiSettings
	ConfigXML        = "xml"        // the tool's inner XML, verbatim
	ConfigAnnotation = "annotation" // DefaultAnnotationText, may be empty
)

// Document is the parsed form of one workflow file.
type Document struct {
	// Name is the workflow's display name, derived from the file name.
	Name string
	// Version is the yxmdVer attribute of the document root.
	Version string
	Tools       []workflow.ToolNode
	Connections []workflow.Connection
}

type xmlDocument struct {
	XMLName     xml.Name        `xml:"AlteryxDocument"`
	Version     string          `xml:"yxmdVer,attr"`
	Nodes       []xmlTool       `xml:"Nodes>Node"`
	Connections []xmlConnection `xml:"Connections>Connection"`
}

type xmlTool struct {
	ToolID      string  `xml:"ToolID,attr"`
	GuiSettings xmlGui  `xml:"GuiSettings"`
	Properties  xmlProp `xml:"Properties"`
	// Container tools nest their members here.
	Children []xmlTool `xml:"ChildNodes>Node"`
	Inner    string    `xml:",innerxml"`
}

type xmlGui struct {
	Plugin string `xml:"Plugin,attr"`
}

type xmlProp struct {
	Annotation struct {
		Text string `xml:"DefaultAnnotationText"`
	} `xml:"Annotation"`
}

type xmlConnection struct {
	Origin      xmlEndpoint `xml:"Origin"`
	Destination xmlEndpoint `xml:"Destination"`
}

type xmlEndpoint struct {
	ToolID     string `xml:"ToolID,attr"`
	Connection string `xml:"Connection,attr"`
}

// ParseFile reads and parses a workflow file from disk, naming the document
// after the file.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workflow file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return doc, nil
}

// Parse decodes a .yxmd document from r. Tools nested inside containers are
// flattened into the tool table with their ContainerID set to the enclosing
// container's ToolID. Malformed XML is reported, never panicked on.
func Parse(r io.Reader) (*Document, error) {
	var raw xmlDocument
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode workflow xml: %w", err)
	}

	doc := &Document{Version: raw.Version}
	for i := range raw.Nodes {
		collectTools(&raw.Nodes[i], "", doc)
	}
	for _, c := range raw.Connections {
		doc.Connections = append(doc.Connections, workflow.Connection{
			SourceID:   c.Origin.ToolID,
			TargetID:   c.Destination.ToolID,
			SourcePort: c.Origin.Connection,
			TargetPort: c.Destination.Connection,
		})
	}
	return doc, nil
}

// collectTools appends the tool and, recursively, its container members.
func collectTools(t *xmlTool, containerID string, doc *Document) {
	if t.ToolID == "" {
		return
	}
	doc.Tools = append(doc.Tools, workflow.ToolNode{
		ID:          t.ToolID,
		Type:        ToolType(t.GuiSettings.Plugin),
		ContainerID: containerID,
		Configuration: map[string]any{
			ConfigPlugin:     t.GuiSettings.Plugin,
			ConfigXML:        t.Inner,
			ConfigAnnotation: strings.TrimSpace(t.Properties.Annotation.Text),
		},
	})
	for i := range t.Children {
		collectTools(&t.Children[i], t.ToolID, doc)
	}
}

// ToolType reduces a dotted plugin name to a short tool kind: the last dotted
// component, trailing "()" stripped, first letter upper-cased and the rest
// lowered. "AlteryxGuiToolkit.ToolContainer.ToolContainer" → "Toolcontainer".
func ToolType(plugin string) string {
	if plugin == "" {
		return ""
	}
	name := plugin
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "()")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// TypeContainer is the normalized type of an Alteryx tool container.
const TypeContainer = "Toolcontainer"

// TypeBrowse is the normalized type of the BrowseV2 preview tool.
const TypeBrowse = "Browsev2"

// SelectableChildren filters a container's resolved child set down to the
// tools a user would convert: containers themselves and Browse preview tools
// are dropped, ids unknown to the graph are kept. Mirrors the selection
// behavior of the conversion UI.
func SelectableChildren(g *workflow.Graph, children map[string]struct{}) []string {
	var out []string
	for id := range children {
		if n, ok := g.Node(id); ok {
			if n.Type == TypeContainer || n.Type == TypeBrowse {
				continue
			}
		}
		out = append(out, id)
	}
	return workflow.SortIDs(out)
}
