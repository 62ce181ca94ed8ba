package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowdoc/pkg/schema"
)

func TestMatrixAsymmetric(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow() // one interaction s1→s2, none s2→s1

	out := r.Matrix(flow)
	lines := strings.Split(out, "\n")

	var intakeRow, reviewRow string
	for _, line := range lines {
		if strings.HasPrefix(line, "| **Intake Svc** |") {
			intakeRow = line
		}
		if strings.HasPrefix(line, "| **Review Svc** |") {
			reviewRow = line
		}
	}
	require.NotEmpty(t, intakeRow)
	require.NotEmpty(t, reviewRow)

	// [Intake][Review] filled, [Review][Intake] blank: not forced symmetric.
	intakeCells := strings.Split(intakeRow, "|")
	reviewCells := strings.Split(reviewRow, "|")
	require.Len(t, intakeCells, 5) // "", name, 2 cells, ""
	assert.Equal(t, "—", strings.TrimSpace(intakeCells[2]))
	assert.Equal(t, "validate", strings.TrimSpace(intakeCells[3]))
	assert.Equal(t, "", strings.TrimSpace(reviewCells[2]))
	assert.Equal(t, "—", strings.TrimSpace(reviewCells[3]))
}

func TestMatrixMethodFallsBackToKind(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Interactions = []schema.ServiceInteraction{
		{FromServiceID: "s1", ToServiceID: "s2", Kind: schema.InteractionEventDriven},
	}

	out := r.Matrix(flow)
	assert.Contains(t, out, "event_driven")
}

func TestMatrixMultipleInteractionsCommaJoined(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Interactions = append(flow.Interactions, schema.ServiceInteraction{
		FromServiceID: "s1", ToServiceID: "s2", Method: "fetch",
	})

	out := r.Matrix(flow)
	assert.Contains(t, out, "validate, fetch")
}

func TestMatrixEmptyInvolvedSet(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.InvolvedServiceIDs = nil

	out := r.Matrix(flow)
	assert.Equal(t, "No services are declared for this flow.\n", out)
	assert.NotContains(t, out, "|")
}

func TestMatrixDetails(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Interactions[0].Frequency = "per submission"
	flow.Interactions[0].Latency = "p99 200ms"
	flow.Interactions[0].Auth = "mTLS"

	out := r.Matrix(flow)
	assert.Contains(t, out, "## Interaction Details")
	assert.Contains(t, out, "### Intake Svc → Review Svc")
	assert.Contains(t, out, "- **Type:** synchronous")
	assert.Contains(t, out, "- **Method:** validate")
	assert.Contains(t, out, "- **Endpoint:** /api/v1/validate")
	assert.Contains(t, out, "- **Data Format:** JSON")
	assert.Contains(t, out, "- **Frequency:** per submission")
	assert.Contains(t, out, "- **Latency:** p99 200ms")
	assert.Contains(t, out, "- **Auth:** mTLS")
}

func TestMatrixNoDetailsWithoutInteractions(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.Interactions = nil

	out := r.Matrix(flow)
	assert.NotContains(t, out, "## Interaction Details")
}

func TestMatrixUnknownServiceSentinel(t *testing.T) {
	r := newTestRenderer()
	flow := enrollFlow()
	flow.InvolvedServiceIDs = []string{"s1", "ghost"}

	out := r.Matrix(flow)
	assert.Contains(t, out, UnknownService)
}
