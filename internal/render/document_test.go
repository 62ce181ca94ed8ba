package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/flowdoc/pkg/schema"
)

func TestDocumentStepSubsections(t *testing.T) {
	r := newTestRenderer()
	out := r.Document(enrollFlow())

	assert.Equal(t, 2, strings.Count(out, "### Step "))
	assert.Contains(t, out, "### Step 1: Submit")
	assert.Contains(t, out, "### Step 2: Review")
}

func TestDocumentMetadataTable(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Version = "1.2"
	flow.EntryPoint = "Public portal"
	flow.Trigger = "Applicant submits the enrollment form"

	out := r.Document(flow)
	assert.Contains(t, out, "| Field | Value |")
	assert.Contains(t, out, "| Priority | high |")
	assert.Contains(t, out, "| Status | approved |")
	assert.Contains(t, out, "| Version | 1.2 |")
	assert.Contains(t, out, "| Domain | Admissions |")
	assert.Contains(t, out, "| Entry Point | Public portal |")
	assert.Contains(t, out, "| Trigger | Applicant submits the enrollment form |")
}

func TestDocumentActorsAndDecision(t *testing.T) {
	r := newTestRenderer()
	out := r.Document(enrollFlow())

	assert.Contains(t, out, "## Actors")
	assert.Contains(t, out, "- AB - Applicant")
	assert.Contains(t, out, "**Decision:** complete?")
	assert.Contains(t, out, "paths: yes, no")
}

func TestDocumentOmitsAuthoringInstructions(t *testing.T) {
	r := newTestRenderer()
	out := r.Document(enrollFlow())

	// The archival document never carries the agent requirements block.
	assert.NotContains(t, out, "DIAGRAM REQUIREMENTS")
	assert.NotContains(t, out, "swimlane")
	assert.NotContains(t, out, "legend")
}

func TestDocumentIntegrationsBothForms(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Integrations = []schema.Integration{
		{FromServiceID: "s2", ToServiceID: "s1", TypeID: "t1", Data: "status updates"},
	}

	out := r.Document(flow)
	assert.Contains(t, out, "## Integrations")
	assert.Contains(t, out, "Intake Svc → Review Svc (synchronous, validate)")
	assert.Contains(t, out, "Review Svc → Intake Svc (REST): status updates")
}

func TestDocumentEmptySteps(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Steps = nil

	out := r.Document(flow)
	assert.Contains(t, out, "No steps defined")
}

func TestDocumentClosesWithTimestamp(t *testing.T) {
	r := newTestRenderer()
	out := r.Document(enrollFlow())
	assert.True(t, strings.HasSuffix(out, "_Generated: 2025-03-14 09:26:53 UTC_\n"))
}

func TestDocumentBusinessRulesAndNotes(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.BusinessRules = []string{"Applications close at midnight", "One application per applicant"}
	flow.Notes = "Legacy intake path retires next quarter."

	out := r.Document(flow)
	assert.Contains(t, out, "## Business Rules")
	assert.Contains(t, out, "- Applications close at midnight")
	assert.Contains(t, out, "## Notes")
	assert.Contains(t, out, "Legacy intake path retires next quarter.")
}
