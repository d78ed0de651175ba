// Package interchange converts flows to and from the JSON document used for file import and export.
//
// The document uses capitalised field names, unlike the flows API:
//
//	{ "Name": "Daily Digest", "Nodes": [ { "Type": "Prompt LLM", "Config": "Summarize" } ] }
//
// Node types are written by display name. Export also writes the flow id and state for
// human inspection; import ignores them and assigns fresh ids.
package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/docflow/pkg/ids"
	"github.com/dukex/docflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when the imported bytes are not an interchange document.
var ErrInvalidDocument = errors.New("invalid flow document")

// DefaultFileName is used when exporting a flow without a name.
const DefaultFileName = "flow"

// Document is the interchange representation of a flow.
type Document struct {
	ID    string         `json:"Id,omitempty"`
	Name  string         `json:"Name"`
	State string         `json:"State,omitempty"`
	Nodes []DocumentNode `json:"Nodes"`
}

// DocumentNode is the interchange representation of a node.
type DocumentNode struct {
	ID     string `json:"Id,omitempty"`
	Type   string `json:"Type"`
	Config string `json:"Config"`
}

const documentSchema = `{
	"type": "object",
	"required": ["Nodes"],
	"properties": {
		"Name": {"type": "string"},
		"Nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["Type"],
				"properties": {
					"Type": {"type": "string"},
					"Config": {"type": ["string", "null"]}
				}
			}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// NewDocument converts a flow into its interchange representation.
func NewDocument(flow models.Flow) Document {
	doc := Document{
		ID:    flow.ID,
		Name:  flow.Name,
		State: flow.DisplayState().String(),
		Nodes: make([]DocumentNode, len(flow.Nodes)),
	}

	for i, node := range flow.Nodes {
		doc.Nodes[i] = DocumentNode{
			ID:     node.ID,
			Type:   node.Type.String(),
			Config: node.Config,
		}
	}

	return doc
}

// FileName returns the download file name for a flow.
func FileName(flow models.Flow) string {
	name := flow.Name
	if name == "" {
		name = DefaultFileName
	}

	return name + ".json"
}

// Export serialises a flow as an indented interchange document and returns it with its file name.
func Export(flow models.Flow) ([]byte, string, error) {
	data, err := json.MarshalIndent(NewDocument(flow), "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal flow %s: %w", flow.ID, err)
	}

	return data, FileName(flow), nil
}

// Decode parses and validates raw interchange bytes.
func Decode(data []byte) (*Document, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
	}

	var doc Document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return &doc, nil
}

// ToFlow maps a decoded document to a new flow with fresh ids. A single unknown node
// type fails the whole conversion.
func ToFlow(doc *Document, gen ids.Generator) (*models.Flow, error) {
	nodes := make([]models.Node, len(doc.Nodes))

	for i, docNode := range doc.Nodes {
		nodeType, err := models.ParseNodeType(docNode.Type)
		if err != nil {
			return nil, err
		}

		nodes[i] = models.Node{Type: nodeType, Config: docNode.Config}
	}

	return &models.Flow{
		ID:    gen.NewID(),
		Name:  doc.Name,
		Nodes: ids.AssignNodeIDs(gen, nodes),
	}, nil
}

// Import decodes raw interchange bytes into a new flow ready to be created.
func Import(data []byte, gen ids.Generator) (*models.Flow, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return ToFlow(doc, gen)
}
