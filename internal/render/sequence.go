package render

import (
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Sequence renders the flow as a Mermaid sequence diagram in a fenced block.
// Participants are collected in first-seen order walking the steps: the
// step's actor first, then every service the step references. Message order
// is strictly the step sequence order; steps are never merged or reordered.
func (r *Renderer) Sequence(flow *schema.Flow) string {
	var b strings.Builder
	b.WriteString("```mermaid\nsequenceDiagram\n")

	participants := newOrderedSet()
	kind := make(map[string]string)  // participant id -> "actor" | "participant"
	label := make(map[string]string) // participant id -> display label

	for _, step := range flow.Steps {
		actorID := sequenceActorID(step.ActorID)
		if participants.Add(actorID) {
			kind[actorID] = "actor"
			label[actorID] = r.res.ActorCode(step.ActorID)
		}
		for _, svcID := range step.ServiceIDs {
			pid := sequenceServiceID(svcID)
			if participants.Add(pid) {
				kind[pid] = "participant"
				label[pid] = r.res.ServiceCode(svcID)
			}
		}
	}

	for _, pid := range participants.Keys() {
		fmt.Fprintf(&b, "    %s %s as %s\n", kind[pid], pid, label[pid])
	}

	for _, step := range flow.Steps {
		r.sequenceStep(&b, step)
	}

	b.WriteString("```\n")
	return b.String()
}

// sequenceStep emits the message lines for one step. Decision steps wrap
// their messages in an alt block: the first conditional path annotates the
// alt line, subsequent paths become empty else branches. alt/end is always
// balanced.
func (r *Renderer) sequenceStep(b *strings.Builder, step schema.Step) {
	actorID := sequenceActorID(step.ActorID)

	inDecision := step.IsDecisionPoint && len(step.ConditionalPaths) > 0
	indent := "    "
	if inDecision {
		first := step.ConditionalPaths[0].Condition
		if step.DecisionCriteria != "" {
			fmt.Fprintf(b, "    alt %s: %s\n", firstLine(step.DecisionCriteria), first)
		} else {
			fmt.Fprintf(b, "    alt %s\n", first)
		}
		indent = "        "
	}

	for _, svcID := range step.ServiceIDs {
		pid := sequenceServiceID(svcID)
		fmt.Fprintf(b, "%s%s->>%s: %d. %s\n", indent, actorID, pid, step.Number, firstLine(step.Action))
		if step.Output != nil && step.Output.Description != "" {
			fmt.Fprintf(b, "%s%s-->>%s: %s\n", indent, pid, actorID, firstLine(step.Output.Description))
		}
	}

	if inDecision {
		for _, path := range step.ConditionalPaths[1:] {
			fmt.Fprintf(b, "    else %s\n", path.Condition)
		}
		b.WriteString("    end\n")
	}

	if step.ErrorHandling != "" {
		fmt.Fprintf(b, "    Note over %s: %s\n", actorID, firstLine(step.ErrorHandling))
	}
}

// sequenceActorID builds a Mermaid-safe participant id for an actor.
func sequenceActorID(actorID string) string {
	return "a_" + safeID(actorID)
}

// sequenceServiceID builds a Mermaid-safe participant id for a service.
func sequenceServiceID(serviceID string) string {
	return "s_" + safeID(serviceID)
}
