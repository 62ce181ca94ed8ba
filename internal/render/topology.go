package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Topology renders the service topology as a Mermaid graph in a fenced
// block. Nodes are exactly the flow's declared involved-service set, not the
// services touched by steps; edges are the detailed interaction records. A
// flow without interactions yields nodes and no edges.
func (r *Renderer) Topology(flow *schema.Flow) string {
	var b strings.Builder
	b.WriteString("```mermaid\ngraph LR\n")

	declared := newOrderedSet()
	for _, svcID := range flow.InvolvedServiceIDs {
		declared.Add(svcID)
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", sequenceServiceID(svcID), r.res.ServiceLabel(svcID))
	}

	for _, in := range flow.Interactions {
		if !declared.Has(in.FromServiceID) || !declared.Has(in.ToServiceID) {
			// An edge to an undeclared service would make Mermaid invent a
			// node outside the involved set; the graph stays nodes-first.
			continue
		}
		fmt.Fprintf(&b, "    %s %s|%s| %s\n",
			sequenceServiceID(in.FromServiceID),
			topologyArrow(in.Kind),
			firstLine(interactionLabel(in)),
			sequenceServiceID(in.ToServiceID))
	}

	b.WriteString("```\n")
	return b.String()
}

// topologyArrow maps an interaction kind to a Mermaid edge operator:
// solid for synchronous, dotted for asynchronous, double line for
// event-driven and anything else.
func topologyArrow(kind schema.InteractionKind) string {
	switch kind {
	case schema.InteractionSynchronous, "":
		return "-->"
	case schema.InteractionAsynchronous:
		return "-.->"
	default:
		return "==>"
	}
}
