package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

const promptBanner = "======================================================================"
const promptRule = "----------------------------------------------------------------------"

// Prompt produces the long-form instruction text handed to a downstream
// diagram-authoring agent. Sections appear in fixed order and every optional
// section is emitted only when non-empty; the requirements block at the end
// is fixed text parameterized by the flow's palette assignments.
func (r *Renderer) Prompt(flow *schema.Flow) string {
	var b strings.Builder

	b.WriteString(promptBanner + "\n")
	b.WriteString("DIAGRAM AUTHORING INSTRUCTIONS\n")
	b.WriteString("Flow: " + flow.Name + "\n")
	b.WriteString(promptBanner + "\n\n")

	r.promptOverview(&b, flow)
	r.promptSteps(&b, flow)
	r.promptInteractions(&b, flow)
	r.promptIntegrations(&b, flow)
	promptList(&b, "BUSINESS RULES", flow.BusinessRules)
	r.promptErrorScenarios(&b, flow)
	promptList(&b, "PERFORMANCE REQUIREMENTS", flow.PerformanceReqs)
	if flow.Notes != "" {
		promptHeading(&b, "NOTES")
		b.WriteString(flow.Notes + "\n\n")
	}
	r.promptRequirements(&b, flow)

	b.WriteString(promptBanner + "\n")
	b.WriteString("Generated: " + r.timestamp() + "\n")
	return b.String()
}

// promptOverview emits the enumerated basic metadata block.
func (r *Renderer) promptOverview(b *strings.Builder, flow *schema.Flow) {
	promptHeading(b, "FLOW OVERVIEW")

	n := 0
	line := func(label, value string) {
		if value == "" {
			return
		}
		n++
		fmt.Fprintf(b, "%d. %s: %s\n", n, label, value)
	}

	line("Name", flow.Name)
	line("Description", flow.Description)
	line("Priority", string(flow.Priority))
	line("Status", string(flow.Status))
	line("Version", flow.Version)
	if flow.DomainID != "" {
		line("Domain", r.res.DomainLabel(flow.DomainID))
	}
	line("Entry Point", flow.EntryPoint)
	line("Trigger", flow.Trigger)
	if len(flow.ActorIDs) > 0 {
		line("Actors", joinLabels(flow.ActorIDs, r.res.ActorLabel))
	}
	if len(flow.InvolvedServiceIDs) > 0 {
		line("Involved Services", joinLabels(flow.InvolvedServiceIDs, r.res.ServiceLabel))
	}
	if len(flow.Tags) > 0 {
		line("Tags", strings.Join(flow.Tags, ", "))
	}
	b.WriteString("\n")
}

// promptSteps emits one paragraph per step, or a degenerate notice for an
// empty flow. The paragraph count always equals the step count.
func (r *Renderer) promptSteps(b *strings.Builder, flow *schema.Flow) {
	promptHeading(b, "STEPS")

	if len(flow.Steps) == 0 {
		b.WriteString("No steps defined\n\n")
		return
	}

	for _, step := range flow.Steps {
		fmt.Fprintf(b, "Step %d: %s\n", step.Number, step.Action)
		fmt.Fprintf(b, "  Actor: %s\n", r.res.ActorLabel(step.ActorID))
		if len(step.ServiceIDs) > 0 {
			fmt.Fprintf(b, "  Services: %s\n", joinLabels(step.ServiceIDs, r.res.ServiceLabel))
		}
		if step.CommunicationTypeID != "" {
			fmt.Fprintf(b, "  Communication: %s\n", r.res.IntegrationTypeLabel(step.CommunicationTypeID))
		}
		writeDataSpec(b, "Input", step.Input)
		writeDataSpec(b, "Output", step.Output)
		if step.IsDecisionPoint {
			criteria := step.DecisionCriteria
			if criteria == "" {
				criteria = "unspecified"
			}
			fmt.Fprintf(b, "  Decision Point: %s\n", criteria)
			for _, path := range step.ConditionalPaths {
				if path.NextStep > 0 {
					fmt.Fprintf(b, "    - Path: %s (continue at step %d)\n", path.Condition, path.NextStep)
				} else {
					fmt.Fprintf(b, "    - Path: %s\n", path.Condition)
				}
			}
		}
		if len(step.Notifications) > 0 {
			fmt.Fprintf(b, "  Notifications: %s\n", strings.Join(step.Notifications, ", "))
		}
		if step.Duration != "" {
			fmt.Fprintf(b, "  Duration: %s\n", step.Duration)
		}
		if step.SLA != "" {
			fmt.Fprintf(b, "  SLA: %s\n", step.SLA)
		}
		if step.ErrorHandling != "" {
			fmt.Fprintf(b, "  Error Handling: %s\n", step.ErrorHandling)
		}
		b.WriteString("\n")
	}
}

// promptInteractions emits the detailed interactions section when present.
func (r *Renderer) promptInteractions(b *strings.Builder, flow *schema.Flow) {
	if len(flow.Interactions) == 0 {
		return
	}
	promptHeading(b, "SERVICE INTERACTIONS")
	for _, in := range flow.Interactions {
		fmt.Fprintf(b, "- %s -> %s [%s]\n",
			r.res.ServiceLabel(in.FromServiceID), r.res.ServiceLabel(in.ToServiceID), interactionKind(in))
		writeAttr(b, "Method", in.Method)
		writeAttr(b, "Endpoint", in.Endpoint)
		writeAttr(b, "Data Format", in.DataFormat)
		writeAttr(b, "Data", in.Data)
		writeAttr(b, "Frequency", in.Frequency)
		writeAttr(b, "Latency", in.Latency)
		writeAttr(b, "Auth", in.Auth)
		writeAttr(b, "Error Handling", in.ErrorHandling)
	}
	b.WriteString("\n")
}

// promptIntegrations emits the legacy integration records when present.
func (r *Renderer) promptIntegrations(b *strings.Builder, flow *schema.Flow) {
	if len(flow.Integrations) == 0 {
		return
	}
	promptHeading(b, "INTEGRATIONS")
	for _, in := range flow.Integrations {
		fmt.Fprintf(b, "- %s -> %s [%s]",
			r.res.ServiceLabel(in.FromServiceID), r.res.ServiceLabel(in.ToServiceID),
			r.res.IntegrationTypeLabel(in.TypeID))
		if in.Data != "" {
			b.WriteString(": " + in.Data)
		}
		if in.Frequency != "" {
			b.WriteString(" (" + in.Frequency + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (r *Renderer) promptErrorScenarios(b *strings.Builder, flow *schema.Flow) {
	if len(flow.ErrorScenarios) == 0 {
		return
	}
	promptHeading(b, "ERROR SCENARIOS")
	for _, es := range flow.ErrorScenarios {
		b.WriteString("- " + es.Scenario)
		if es.Handling != "" {
			b.WriteString(": " + es.Handling)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// promptRequirements emits the fixed nine-instruction block for the
// downstream diagram-authoring agent.
func (r *Renderer) promptRequirements(b *strings.Builder, flow *schema.Flow) {
	promptHeading(b, "DIAGRAM REQUIREMENTS")

	actors := newOrderedSet()
	for _, step := range flow.Steps {
		actors.Add(r.res.ActorLabel(step.ActorID))
	}

	if actors.Len() > 0 {
		fmt.Fprintf(b, "1. Create one swimlane per distinct actor appearing in any step (%d swimlanes: %s).\n",
			actors.Len(), strings.Join(actors.Keys(), ", "))
	} else {
		b.WriteString("1. Create one swimlane per distinct actor appearing in any step.\n")
	}
	fmt.Fprintf(b, "2. Create exactly one shape per step: the diagram must contain exactly %d step shapes. "+
		"Never merge or summarize steps. Each shape must show the step number, the action text, and the services involved.\n",
		len(flow.Steps))
	b.WriteString("3. Add a callout for every documented service interaction. Arrow style by kind: " +
		"solid = synchronous, dashed = asynchronous, jagged = event-driven.\n")
	b.WriteString("4. Label every connecting arrow with the data it carries and its format.\n")
	b.WriteString("5. Render every decision step as a diamond and enumerate each conditional path as a labeled outgoing edge.\n")
	b.WriteString("6. Badge conventions: gear = automated step, bell = notification, plug = external integration, " +
		"cylinder = datastore access, antenna = remote call.\n")
	b.WriteString("7. Color assignment (deterministic):\n")
	for i, id := range flow.InvolvedServiceIDs {
		fmt.Fprintf(b, "   - %s: %s\n", r.res.ServiceLabel(id), paletteColor(i))
	}
	if flow.DomainID != "" {
		domain := r.res.Domain(flow.DomainID)
		if !domain.Missing && domain.Value.Color != "" {
			fmt.Fprintf(b, "   - Domain-owned elements (%s): %s\n", domain.Value.Name, domain.Value.Color)
		}
	}
	fmt.Fprintf(b, "   - Decision shapes: %s\n", decisionColor)
	fmt.Fprintf(b, "   - Error-handling step borders: %s\n", errorBorderColor)
	b.WriteString("8. Lay the diagram out left to right with at least 40px between shapes and swimlanes aligned to a shared grid.\n")
	b.WriteString("9. Include a legend enumerating every color, line style, icon, and shape convention actually used.\n")
	b.WriteString("\n")
}

// --- helpers ---

func promptHeading(b *strings.Builder, title string) {
	b.WriteString(promptRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(promptRule + "\n")
}

func promptList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	promptHeading(b, title)
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

func writeDataSpec(b *strings.Builder, label string, spec *schema.DataSpec) {
	if spec == nil || (spec.Description == "" && spec.Schema == "") {
		return
	}
	fmt.Fprintf(b, "  %s: %s", label, spec.Description)
	if spec.Schema != "" {
		fmt.Fprintf(b, " (schema: %s)", spec.Schema)
	}
	b.WriteString("\n")
}

func writeAttr(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "    %s: %s\n", label, value)
}

// interactionKind returns the kind, defaulting to synchronous when absent.
func interactionKind(in schema.ServiceInteraction) string {
	if in.Kind == "" {
		return string(schema.InteractionSynchronous)
	}
	return string(in.Kind)
}
