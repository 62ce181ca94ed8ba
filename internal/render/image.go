package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/flowdoc/pkg/schema"
)

// TopologyImage renders the service topology as a PNG using graphviz.
// Nodes follow the same rules as Topology: the declared involved-service set
// colored by palette position (domain color wins for domain-owned flows),
// edges styled by interaction kind. Returns the PNG bytes.
func (r *Renderer) TopologyImage(flow *schema.Flow) ([]byte, error) {
	ctx := context.Background()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("render: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)
	if flow.Name != "" {
		graph.SetLabel(flow.Name)
	}

	domainColor := ""
	if flow.DomainID != "" {
		if d := r.res.Domain(flow.DomainID); !d.Missing {
			domainColor = d.Value.Color
		}
	}

	nodes := make(map[string]*cgraph.Node, len(flow.InvolvedServiceIDs))
	for i, svcID := range flow.InvolvedServiceIDs {
		node, nErr := graph.CreateNodeByName(svcID)
		if nErr != nil {
			return nil, fmt.Errorf("render: create node %s: %w", svcID, nErr)
		}
		node.SetLabel(r.res.ServiceLabel(svcID))
		node.SetShape(cgraph.BoxShape)
		node.SetStyle(cgraph.FilledNodeStyle)
		color := paletteColor(i)
		if domainColor != "" {
			color = domainColor
		}
		node.SetFillColor(color)
		node.SetFontColor("white")
		nodes[svcID] = node
	}

	for _, in := range flow.Interactions {
		from, to := nodes[in.FromServiceID], nodes[in.ToServiceID]
		if from == nil || to == nil {
			// Interactions outside the declared involved set have no node
			// in the topology; skip them, matching the markup renderer.
			continue
		}
		edge, eErr := graph.CreateEdgeByName("", from, to)
		if eErr != nil {
			continue
		}
		edge.SetLabel(firstLine(interactionLabel(in)))
		switch in.Kind {
		case schema.InteractionAsynchronous:
			edge.SetStyle(cgraph.DashedEdgeStyle)
		case schema.InteractionEventDriven:
			edge.SetStyle(cgraph.DottedEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: render PNG: %w", err)
	}
	return buf.Bytes(), nil
}
