package schema

// FlowCandidate is the partial flow model an advisory service proposes from
// a natural-language description and the current catalog. The editor merges
// it into a Flow; the rendering engine never sees this type.
type FlowCandidate struct {
	Name               string               `json:"name,omitempty"`
	Description        string               `json:"description,omitempty"`
	InvolvedServiceIDs []string             `json:"involved_service_ids,omitempty"`
	ActorIDs           []string             `json:"actor_ids,omitempty"`
	Steps              []Step               `json:"steps,omitempty"`
	Interactions       []ServiceInteraction `json:"interactions,omitempty"`
	Gaps               []string             `json:"gaps,omitempty"` // catalog entries the proposal needs but could not find
}

// ApplyTo merges the candidate into an existing flow. Scalar fields fill
// only when the flow's are empty; id lists union preserving the flow's
// order; proposed steps append after the last existing step and are
// renumbered to keep the contiguity invariant. Gaps are advisory output
// for the editor and are never merged.
func (c *FlowCandidate) ApplyTo(flow *Flow) {
	if flow == nil || c == nil {
		return
	}
	if flow.Name == "" {
		flow.Name = c.Name
	}
	if flow.Description == "" {
		flow.Description = c.Description
	}

	flow.InvolvedServiceIDs = unionIDs(flow.InvolvedServiceIDs, c.InvolvedServiceIDs)
	flow.ActorIDs = unionIDs(flow.ActorIDs, c.ActorIDs)

	next := len(flow.Steps) + 1
	for _, step := range c.Steps {
		step.Number = next
		flow.Steps = append(flow.Steps, step)
		next++
	}

	flow.Interactions = append(flow.Interactions, c.Interactions...)
}

func unionIDs(existing, proposed []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range proposed {
		if !seen[id] {
			existing = append(existing, id)
			seen[id] = true
		}
	}
	return existing
}
