package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

// matrixDiagonal is the fixed placeholder for a service's own cell.
const matrixDiagonal = "—"

// Matrix renders the N×N interaction adjacency table over the flow's
// involved services in their stored order (row = from, column = to),
// followed by a detailed listing of every interaction record. The matrix is
// not forced symmetric: a cell is filled only when a matching from/to record
// exists.
func (r *Renderer) Matrix(flow *schema.Flow) string {
	if len(flow.InvolvedServiceIDs) == 0 {
		return "No services are declared for this flow.\n"
	}

	var b strings.Builder
	b.WriteString("## Service Interaction Matrix\n\n")

	labels := make([]string, len(flow.InvolvedServiceIDs))
	for i, id := range flow.InvolvedServiceIDs {
		labels[i] = r.res.ServiceLabel(id)
	}

	b.WriteString("| From \\ To |")
	for _, l := range labels {
		b.WriteString(" " + l + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(labels)))
	b.WriteString("\n")

	for i, fromID := range flow.InvolvedServiceIDs {
		fmt.Fprintf(&b, "| **%s** |", labels[i])
		for j, toID := range flow.InvolvedServiceIDs {
			if i == j {
				b.WriteString(" " + matrixDiagonal + " |")
				continue
			}
			b.WriteString(" " + matrixCell(flow, fromID, toID) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	r.matrixDetails(&b, flow)
	return b.String()
}

// matrixCell joins the labels of every interaction from fromID to toID.
// An empty string leaves the cell blank.
func matrixCell(flow *schema.Flow, fromID, toID string) string {
	var entries []string
	for _, in := range flow.Interactions {
		if in.FromServiceID == fromID && in.ToServiceID == toID {
			entries = append(entries, interactionLabel(in))
		}
	}
	return strings.Join(entries, ", ")
}

// matrixDetails emits one subsection per interaction record with every
// recorded attribute.
func (r *Renderer) matrixDetails(b *strings.Builder, flow *schema.Flow) {
	if len(flow.Interactions) == 0 {
		return
	}
	b.WriteString("## Interaction Details\n\n")
	for _, in := range flow.Interactions {
		fmt.Fprintf(b, "### %s → %s\n\n",
			r.res.ServiceLabel(in.FromServiceID), r.res.ServiceLabel(in.ToServiceID))
		detail := func(label, value string) {
			if value == "" {
				return
			}
			fmt.Fprintf(b, "- **%s:** %s\n", label, value)
		}
		detail("Type", interactionKind(in))
		detail("Method", in.Method)
		detail("Endpoint", in.Endpoint)
		detail("Data Format", in.DataFormat)
		detail("Data", in.Data)
		detail("Frequency", in.Frequency)
		detail("Latency", in.Latency)
		detail("Auth", in.Auth)
		detail("Error Handling", in.ErrorHandling)
		b.WriteString("\n")
	}
}
