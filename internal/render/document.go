package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Document produces the archival Markdown document for a flow. Unlike the
// prompt it carries no authoring instructions; the shape is a metadata table,
// an actor list, one subsection per step, integration and rule lists, and a
// closing generation timestamp.
func (r *Renderer) Document(flow *schema.Flow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", flow.Name)
	if flow.Description != "" {
		b.WriteString(flow.Description + "\n\n")
	}

	r.documentMetadata(&b, flow)
	r.documentActors(&b, flow)
	r.documentSteps(&b, flow)
	r.documentIntegrations(&b, flow)
	if len(flow.BusinessRules) > 0 {
		b.WriteString("## Business Rules\n\n")
		for _, rule := range flow.BusinessRules {
			b.WriteString("- " + rule + "\n")
		}
		b.WriteString("\n")
	}
	if flow.Notes != "" {
		b.WriteString("## Notes\n\n")
		b.WriteString(flow.Notes + "\n\n")
	}

	b.WriteString("---\n")
	b.WriteString("_Generated: " + r.timestamp() + "_\n")
	return b.String()
}

func (r *Renderer) documentMetadata(b *strings.Builder, flow *schema.Flow) {
	b.WriteString("| Field | Value |\n")
	b.WriteString("|---|---|\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(b, "| %s | %s |\n", label, value)
	}
	row("Priority", string(flow.Priority))
	row("Status", string(flow.Status))
	row("Version", flow.Version)
	if flow.DomainID != "" {
		row("Domain", r.res.DomainLabel(flow.DomainID))
	}
	row("Entry Point", flow.EntryPoint)
	row("Trigger", flow.Trigger)
	b.WriteString("\n")
}

func (r *Renderer) documentActors(b *strings.Builder, flow *schema.Flow) {
	if len(flow.ActorIDs) == 0 {
		return
	}
	b.WriteString("## Actors\n\n")
	for _, id := range flow.ActorIDs {
		b.WriteString("- " + r.res.ActorLabel(id) + "\n")
	}
	b.WriteString("\n")
}

func (r *Renderer) documentSteps(b *strings.Builder, flow *schema.Flow) {
	b.WriteString("## Steps\n\n")
	if len(flow.Steps) == 0 {
		b.WriteString("No steps defined\n\n")
		return
	}
	for _, step := range flow.Steps {
		fmt.Fprintf(b, "### Step %d: %s\n\n", step.Number, step.Action)
		fmt.Fprintf(b, "- **Actor:** %s\n", r.res.ActorLabel(step.ActorID))
		if len(step.ServiceIDs) > 0 {
			fmt.Fprintf(b, "- **Services:** %s\n", joinLabels(step.ServiceIDs, r.res.ServiceLabel))
		}
		if step.CommunicationTypeID != "" {
			fmt.Fprintf(b, "- **Communication:** %s\n", r.res.IntegrationTypeLabel(step.CommunicationTypeID))
		}
		if step.Input != nil && step.Input.Description != "" {
			fmt.Fprintf(b, "- **Input:** %s\n", step.Input.Description)
		}
		if step.Output != nil && step.Output.Description != "" {
			fmt.Fprintf(b, "- **Output:** %s\n", step.Output.Description)
		}
		if step.IsDecisionPoint {
			paths := make([]string, 0, len(step.ConditionalPaths))
			for _, p := range step.ConditionalPaths {
				paths = append(paths, p.Condition)
			}
			fmt.Fprintf(b, "\n> **Decision:** %s", step.DecisionCriteria)
			if len(paths) > 0 {
				fmt.Fprintf(b, " — paths: %s", strings.Join(paths, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

// documentIntegrations lists both the detailed interaction records and the
// legacy integration records when present.
func (r *Renderer) documentIntegrations(b *strings.Builder, flow *schema.Flow) {
	if len(flow.Interactions) == 0 && len(flow.Integrations) == 0 {
		return
	}
	b.WriteString("## Integrations\n\n")
	for _, in := range flow.Interactions {
		fmt.Fprintf(b, "- %s → %s (%s", r.res.ServiceLabel(in.FromServiceID),
			r.res.ServiceLabel(in.ToServiceID), interactionKind(in))
		if in.Method != "" {
			b.WriteString(", " + in.Method)
		}
		b.WriteString(")")
		if in.Data != "" {
			b.WriteString(": " + in.Data)
		}
		b.WriteString("\n")
	}
	for _, in := range flow.Integrations {
		fmt.Fprintf(b, "- %s → %s (%s)", r.res.ServiceLabel(in.FromServiceID),
			r.res.ServiceLabel(in.ToServiceID), r.res.IntegrationTypeLabel(in.TypeID))
		if in.Data != "" {
			b.WriteString(": " + in.Data)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
