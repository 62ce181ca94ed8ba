package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateApplyToFillsEmptyScalars(t *testing.T) {
	flow := &Flow{ID: "f1"}
	c := &FlowCandidate{Name: "Proposed", Description: "From advisory"}

	c.ApplyTo(flow)

	assert.Equal(t, "Proposed", flow.Name)
	assert.Equal(t, "From advisory", flow.Description)
}

func TestCandidateApplyToKeepsExistingScalars(t *testing.T) {
	flow := &Flow{ID: "f1", Name: "Original", Description: "Kept"}
	c := &FlowCandidate{Name: "Proposed", Description: "Ignored"}

	c.ApplyTo(flow)

	assert.Equal(t, "Original", flow.Name)
	assert.Equal(t, "Kept", flow.Description)
}

func TestCandidateApplyToUnionsIDs(t *testing.T) {
	flow := &Flow{
		InvolvedServiceIDs: []string{"s1", "s2"},
		ActorIDs:           []string{"a1"},
	}
	c := &FlowCandidate{
		InvolvedServiceIDs: []string{"s2", "s3"},
		ActorIDs:           []string{"a1", "a2"},
	}

	c.ApplyTo(flow)

	assert.Equal(t, []string{"s1", "s2", "s3"}, flow.InvolvedServiceIDs)
	assert.Equal(t, []string{"a1", "a2"}, flow.ActorIDs)
}

func TestCandidateApplyToRenumbersAppendedSteps(t *testing.T) {
	flow := &Flow{
		Steps: []Step{
			{Number: 1, ActorID: "a1", Action: "Existing"},
		},
	}
	c := &FlowCandidate{
		Steps: []Step{
			{Number: 1, ActorID: "a2", Action: "Proposed first"},
			{Number: 2, ActorID: "a2", Action: "Proposed second"},
		},
		Interactions: []ServiceInteraction{
			{FromServiceID: "s1", ToServiceID: "s2"},
		},
	}

	c.ApplyTo(flow)

	require.Len(t, flow.Steps, 3)
	assert.Equal(t, 2, flow.Steps[1].Number)
	assert.Equal(t, 3, flow.Steps[2].Number)
	assert.Equal(t, "Proposed second", flow.Steps[2].Action)
	assert.Len(t, flow.Interactions, 1)
}

func TestCandidateApplyToNilSafe(t *testing.T) {
	var c *FlowCandidate
	c.ApplyTo(&Flow{})

	(&FlowCandidate{Name: "x"}).ApplyTo(nil)
}
