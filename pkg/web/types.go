package web

import "github.com/dukex/docflow/pkg/models"

// NodeRequest is a node as sent by clients.
type NodeRequest struct {
	ID     string          `json:"id"     validate:"required"`
	Type   models.NodeType `json:"type"   validate:"required,oneof=1 2 3"`
	Config string          `json:"config"`
}

// CreateFlowRequest is the body of POST /flows. The id is chosen by the client.
type CreateFlowRequest struct {
	ID    string        `json:"id"    validate:"required"`
	Name  string        `json:"name"`
	Nodes []NodeRequest `json:"nodes" validate:"required,dive"`
}

// UpdateFlowRequest is the body of PUT /flows/:id. An id in the body is ignored.
type UpdateFlowRequest struct {
	ID    string        `json:"id,omitempty"`
	Name  string        `json:"name"`
	Nodes []NodeRequest `json:"nodes" validate:"required,dive"`
}

// NodeTypeResponse describes a node type the server can run.
type NodeTypeResponse struct {
	Type        models.NodeType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      map[string]any  `json:"schema,omitempty"`
}

func toNodes(reqs []NodeRequest) []models.Node {
	nodes := make([]models.Node, 0, len(reqs))
	for _, n := range reqs {
		nodes = append(nodes, models.Node{ID: n.ID, Type: n.Type, Config: n.Config})
	}

	return nodes
}

func (r CreateFlowRequest) toFlow() *models.Flow {
	return &models.Flow{
		ID:    r.ID,
		Name:  r.Name,
		Nodes: toNodes(r.Nodes),
	}
}

func (r UpdateFlowRequest) toFlow(id string) *models.Flow {
	return &models.Flow{
		ID:    id,
		Name:  r.Name,
		Nodes: toNodes(r.Nodes),
	}
}
