package validation

import (
	"fmt"

	"github.com/rendis/flowdoc/pkg/schema"
)

// validateFlowSemantics performs the checks JSON Schema cannot express:
// contiguous 1-based step numbering, unique decision path conditions, and
// cross-references into the catalog. Unresolved references are warnings:
// the renderers degrade to sentinel labels instead of failing.
func validateFlowSemantics(flow *schema.Flow, catalog *schema.Catalog) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for i, step := range flow.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		if step.Number != i+1 {
			result.AddError(path+".number", schema.ErrCodeValidation,
				fmt.Sprintf("step numbers must be contiguous starting at 1; got %d at position %d", step.Number, i+1))
		}
		if step.IsDecisionPoint && len(step.ConditionalPaths) == 0 {
			result.AddWarning(path, schema.ErrCodeValidation,
				"decision point has no conditional paths")
		}
		for j, p := range step.ConditionalPaths {
			if p.NextStep > len(flow.Steps) {
				result.AddWarning(fmt.Sprintf("%s.conditional_paths[%d].next_step", path, j),
					schema.ErrCodeValidation,
					fmt.Sprintf("references step %d beyond the last step %d", p.NextStep, len(flow.Steps)))
			}
		}
	}

	if catalog != nil {
		checkReferences(flow, catalog, result)
	}

	return result
}

// checkReferences warns about ids that do not resolve against the catalog.
func checkReferences(flow *schema.Flow, catalog *schema.Catalog, result *schema.ValidationResult) {
	services := make(map[string]bool)
	for _, d := range catalog.Domains {
		for _, s := range d.Services {
			services[s.ID] = true
		}
	}
	actors := make(map[string]bool, len(catalog.Actors))
	for _, a := range catalog.Actors {
		actors[a.ID] = true
	}
	types := make(map[string]bool, len(catalog.IntegrationTypes))
	for _, t := range catalog.IntegrationTypes {
		types[t.ID] = true
	}
	domains := make(map[string]bool, len(catalog.Domains))
	for _, d := range catalog.Domains {
		domains[d.ID] = true
	}

	warnRef := func(path, kind, id string) {
		result.AddWarning(path, schema.ErrCodeNotFound,
			fmt.Sprintf("%s %q is not in the catalog; it will render as a sentinel label", kind, id))
	}

	if flow.DomainID != "" && !domains[flow.DomainID] {
		warnRef("domain_id", "domain", flow.DomainID)
	}
	for i, id := range flow.InvolvedServiceIDs {
		if !services[id] {
			warnRef(fmt.Sprintf("involved_service_ids[%d]", i), "service", id)
		}
	}
	for i, id := range flow.ActorIDs {
		if !actors[id] {
			warnRef(fmt.Sprintf("actor_ids[%d]", i), "actor", id)
		}
	}
	for i, step := range flow.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		if step.ActorID != "" && !actors[step.ActorID] {
			warnRef(path+".actor_id", "actor", step.ActorID)
		}
		for j, id := range step.ServiceIDs {
			if !services[id] {
				warnRef(fmt.Sprintf("%s.service_ids[%d]", path, j), "service", id)
			}
		}
		if step.CommunicationTypeID != "" && !types[step.CommunicationTypeID] {
			warnRef(path+".communication_type_id", "integration type", step.CommunicationTypeID)
		}
	}
	for i, in := range flow.Interactions {
		path := fmt.Sprintf("interactions[%d]", i)
		if !services[in.FromServiceID] {
			warnRef(path+".from_service_id", "service", in.FromServiceID)
		}
		if !services[in.ToServiceID] {
			warnRef(path+".to_service_id", "service", in.ToServiceID)
		}
	}
	for i, in := range flow.Integrations {
		path := fmt.Sprintf("integrations[%d]", i)
		if !services[in.FromServiceID] {
			warnRef(path+".from_service_id", "service", in.FromServiceID)
		}
		if !services[in.ToServiceID] {
			warnRef(path+".to_service_id", "service", in.ToServiceID)
		}
		if in.TypeID != "" && !types[in.TypeID] {
			warnRef(path+".type_id", "integration type", in.TypeID)
		}
	}
}

// validateCatalogSemantics checks id uniqueness within each collection.
func validateCatalogSemantics(catalog *schema.Catalog) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	domainIDs := make(map[string]bool, len(catalog.Domains))
	serviceIDs := make(map[string]bool)
	for i, d := range catalog.Domains {
		if domainIDs[d.ID] {
			result.AddError(fmt.Sprintf("domains[%d].id", i), schema.ErrCodeConflict,
				fmt.Sprintf("duplicate domain id %q", d.ID))
		}
		domainIDs[d.ID] = true
		for j, s := range d.Services {
			if serviceIDs[s.ID] {
				result.AddError(fmt.Sprintf("domains[%d].services[%d].id", i, j), schema.ErrCodeConflict,
					fmt.Sprintf("duplicate service id %q", s.ID))
			}
			serviceIDs[s.ID] = true
		}
	}

	actorIDs := make(map[string]bool, len(catalog.Actors))
	for i, a := range catalog.Actors {
		if actorIDs[a.ID] {
			result.AddError(fmt.Sprintf("actors[%d].id", i), schema.ErrCodeConflict,
				fmt.Sprintf("duplicate actor id %q", a.ID))
		}
		actorIDs[a.ID] = true
	}

	typeIDs := make(map[string]bool, len(catalog.IntegrationTypes))
	for i, t := range catalog.IntegrationTypes {
		if typeIDs[t.ID] {
			result.AddError(fmt.Sprintf("integration_types[%d].id", i), schema.ErrCodeConflict,
				fmt.Sprintf("duplicate integration type id %q", t.ID))
		}
		typeIDs[t.ID] = true
	}

	return result
}
