package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowdoc/pkg/schema"
)

func newValidator(t *testing.T) *JSONSchemaValidator {
	t.Helper()
	v, err := NewJSONSchemaValidator()
	require.NoError(t, err)
	return v
}

func validFlow() *schema.Flow {
	return &schema.Flow{
		ID:                 "f1",
		Name:               "Enroll",
		Priority:           schema.PriorityHigh,
		Status:             schema.FlowStatusDraft,
		InvolvedServiceIDs: []string{"s1"},
		Steps: []schema.Step{
			{Number: 1, ActorID: "a1", Action: "Submit", ServiceIDs: []string{"s1"}},
		},
	}
}

func validCatalog() *schema.Catalog {
	return &schema.Catalog{
		Domains: []schema.ServiceDomain{
			{ID: "d1", Name: "Admissions", Services: []schema.Service{{ID: "s1", Name: "Intake Svc"}}},
		},
		Actors: []schema.Actor{
			{ID: "a1", Code: "AB", Name: "Applicant", Kind: schema.ActorHuman},
		},
	}
}

func TestValidateFlowOK(t *testing.T) {
	v := newValidator(t)
	result := v.ValidateFlow(validFlow(), validCatalog())
	assert.True(t, result.Valid())
	assert.Empty(t, result.Warnings)
}

func TestValidateFlowNil(t *testing.T) {
	v := newValidator(t)
	result := v.ValidateFlow(nil, nil)
	assert.False(t, result.Valid())
}

func TestValidateFlowMissingRequired(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.Name = ""

	result := v.ValidateFlow(flow, nil)
	assert.False(t, result.Valid())
}

func TestValidateFlowBadPriority(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.Priority = "urgent"

	result := v.ValidateFlow(flow, nil)
	assert.False(t, result.Valid())
}

func TestValidateFlowEmptyStepsAllowed(t *testing.T) {
	// Structurally a flow must carry a steps collection; an empty one is
	// valid and renders degenerate but non-crashing output downstream.
	v := newValidator(t)
	flow := validFlow()
	flow.Steps = []schema.Step{}

	result := v.ValidateFlow(flow, validCatalog())
	assert.True(t, result.Valid())
}

func TestValidateFlowNonContiguousSteps(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.Steps = []schema.Step{
		{Number: 1, ActorID: "a1", Action: "Submit"},
		{Number: 3, ActorID: "a1", Action: "Review"},
	}

	result := v.ValidateFlow(flow, nil)
	assert.False(t, result.Valid())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "contiguous")
}

func TestValidateFlowUnresolvedReferencesAreWarnings(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.Steps[0].ActorID = "ghost"
	flow.InvolvedServiceIDs = []string{"nope"}

	result := v.ValidateFlow(flow, validCatalog())
	assert.True(t, result.Valid(), "unresolved references degrade to sentinels, not errors")
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateFlowDecisionWithoutPaths(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.Steps[0].IsDecisionPoint = true

	result := v.ValidateFlow(flow, validCatalog())
	assert.True(t, result.Valid())
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0].Message, "conditional paths")
}

func TestValidateCatalogOK(t *testing.T) {
	v := newValidator(t)
	result := v.ValidateCatalog(validCatalog())
	assert.True(t, result.Valid())
}

func TestValidateCatalogDuplicateIDs(t *testing.T) {
	v := newValidator(t)
	catalog := validCatalog()
	catalog.Actors = append(catalog.Actors, schema.Actor{ID: "a1", Code: "X", Name: "Dup"})

	result := v.ValidateCatalog(catalog)
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "duplicate actor id")
}

func TestValidateCatalogDuplicateServiceAcrossDomains(t *testing.T) {
	v := newValidator(t)
	catalog := validCatalog()
	catalog.Domains = append(catalog.Domains, schema.ServiceDomain{
		ID: "d2", Name: "Billing",
		Services: []schema.Service{{ID: "s1", Name: "Clone Svc"}},
	})

	result := v.ValidateCatalog(catalog)
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "duplicate service id")
}

func TestValidationResultToError(t *testing.T) {
	v := newValidator(t)
	flow := validFlow()
	flow.ID = ""

	err := v.ValidateFlow(flow, nil).ToError()
	require.Error(t, err)
	var ferr *schema.FlowdocError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}
