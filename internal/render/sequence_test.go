package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/flowdoc/pkg/schema"
)

func TestSequenceParticipants(t *testing.T) {
	r := newTestRenderer()
	out := r.Sequence(enrollFlow())

	// Three distinct participants in first-seen order: actor, then services.
	assert.Contains(t, out, "actor a_a1 as AB\n")
	assert.Contains(t, out, "participant s_s1 as INT\n")
	assert.Contains(t, out, "participant s_s2 as REV\n")
	assert.Less(t, strings.Index(out, "actor a_a1"), strings.Index(out, "participant s_s1"))
	assert.Less(t, strings.Index(out, "participant s_s1"), strings.Index(out, "participant s_s2"))

	// Deduplicated: each declared once even though s1 appears in both steps.
	assert.Equal(t, 1, strings.Count(out, "participant s_s1"))
	assert.Equal(t, 1, strings.Count(out, "actor a_a1"))
}

func TestSequenceMessages(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Steps[0].Output = &schema.DataSpec{Description: "submission receipt"}

	out := r.Sequence(flow)

	assert.Contains(t, out, "a_a1->>s_s1: 1. Submit")
	assert.Contains(t, out, "s_s1-->>a_a1: submission receipt")

	// Step order preserved: step 1 before step 2.
	assert.Less(t, strings.Index(out, "1. Submit"), strings.Index(out, "2. Review"))
}

func TestSequenceDecisionBranchBlock(t *testing.T) {
	r := newTestRenderer()
	out := r.Sequence(enrollFlow())

	// First path annotates the alt line; the second becomes an else branch.
	assert.Contains(t, out, "alt complete?: yes")
	assert.Contains(t, out, "else no")

	// Balanced alt/end.
	assert.Equal(t, strings.Count(out, "    alt "), strings.Count(out, "    end\n"))

	// The decision step's messages live inside the block.
	altIdx := strings.Index(out, "alt complete?")
	endIdx := strings.Index(out, "    end\n")
	msgIdx := strings.Index(out, "2. Review")
	assert.Greater(t, msgIdx, altIdx)
	assert.Less(t, msgIdx, endIdx)
}

func TestSequenceErrorHandlingNote(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Steps[0].ErrorHandling = "retry then escalate"

	out := r.Sequence(flow)
	assert.Contains(t, out, "Note over a_a1: retry then escalate")
}

func TestSequenceEmptySteps(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Steps = nil

	out := r.Sequence(flow)
	assert.Contains(t, out, "sequenceDiagram")
	assert.NotContains(t, out, "->>")
	assert.NotContains(t, out, "participant")
}

func TestSequenceUnknownActorUsesSentinel(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Steps[0].ActorID = "ghost"

	out := r.Sequence(flow)
	assert.Contains(t, out, "as "+UnknownActor)
}

func TestSequenceFencedBlock(t *testing.T) {
	r := newTestRenderer()
	out := r.Sequence(enrollFlow())
	assert.True(t, strings.HasPrefix(out, "```mermaid\n"))
	assert.True(t, strings.HasSuffix(out, "```\n"))
}
