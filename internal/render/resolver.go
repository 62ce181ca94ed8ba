package render

import (
	"fmt"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Display sentinels for identifiers that do not resolve against the catalog.
// Lookups never fail; a partially edited or out-of-order model still renders
// something inspectable.
const (
	UnknownService = "Unknown Service"
	UnknownActor   = "Unknown Actor"
	UnknownType    = "Unknown Type"
	UnknownDomain  = "Unknown Domain"
)

// Resolved is the result of a catalog lookup: either the matched entity or
// the id that failed to resolve. Rendering code maps Missing to the display
// sentinel explicitly, which keeps the miss case visible to tests.
type Resolved[T any] struct {
	Value   T
	ID      string
	Missing bool
}

func found[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v}
}

func missing[T any](id string) Resolved[T] {
	var zero T
	return Resolved[T]{Value: zero, ID: id, Missing: true}
}

// Resolver provides name/label lookup over a read-only catalog.
// A nil catalog is valid; every lookup is then Missing.
type Resolver struct {
	catalog *schema.Catalog
}

// NewResolver creates a Resolver over the given catalog.
func NewResolver(catalog *schema.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Service scans every domain's service list for the given id.
// Linear scan; catalogs are project-scoped and small.
func (r *Resolver) Service(id string) Resolved[schema.Service] {
	if r.catalog != nil {
		for _, d := range r.catalog.Domains {
			for _, s := range d.Services {
				if s.ID == id {
					return found(s)
				}
			}
		}
	}
	return missing[schema.Service](id)
}

// Actor looks up an actor by id.
func (r *Resolver) Actor(id string) Resolved[schema.Actor] {
	if r.catalog != nil {
		for _, a := range r.catalog.Actors {
			if a.ID == id {
				return found(a)
			}
		}
	}
	return missing[schema.Actor](id)
}

// IntegrationType looks up an integration type by id.
func (r *Resolver) IntegrationType(id string) Resolved[schema.IntegrationType] {
	if r.catalog != nil {
		for _, t := range r.catalog.IntegrationTypes {
			if t.ID == id {
				return found(t)
			}
		}
	}
	return missing[schema.IntegrationType](id)
}

// Domain looks up a service domain by id.
func (r *Resolver) Domain(id string) Resolved[schema.ServiceDomain] {
	if r.catalog != nil {
		for _, d := range r.catalog.Domains {
			if d.ID == id {
				return found(d)
			}
		}
	}
	return missing[schema.ServiceDomain](id)
}

// ServiceLabel returns the service's name (or short code when the name is
// empty), or the sentinel on a miss.
func (r *Resolver) ServiceLabel(id string) string {
	res := r.Service(id)
	if res.Missing {
		return UnknownService
	}
	if res.Value.Name != "" {
		return res.Value.Name
	}
	if res.Value.Code != "" {
		return res.Value.Code
	}
	return UnknownService
}

// ServiceCode returns the service's short code (or name when the code is
// empty), or the sentinel on a miss. Used for compact participant labels.
func (r *Resolver) ServiceCode(id string) string {
	res := r.Service(id)
	if res.Missing {
		return UnknownService
	}
	if res.Value.Code != "" {
		return res.Value.Code
	}
	if res.Value.Name != "" {
		return res.Value.Name
	}
	return UnknownService
}

// ActorLabel returns "<code> - <name>", or the sentinel on a miss.
func (r *Resolver) ActorLabel(id string) string {
	res := r.Actor(id)
	if res.Missing {
		return UnknownActor
	}
	return fmt.Sprintf("%s - %s", res.Value.Code, res.Value.Name)
}

// ActorCode returns the actor's short code, or the sentinel on a miss.
func (r *Resolver) ActorCode(id string) string {
	res := r.Actor(id)
	if res.Missing {
		return UnknownActor
	}
	if res.Value.Code != "" {
		return res.Value.Code
	}
	return res.Value.Name
}

// IntegrationTypeLabel returns the type's name, or the sentinel on a miss.
func (r *Resolver) IntegrationTypeLabel(id string) string {
	res := r.IntegrationType(id)
	if res.Missing {
		return UnknownType
	}
	return res.Value.Name
}

// DomainLabel returns the domain's name, or the sentinel on a miss.
func (r *Resolver) DomainLabel(id string) string {
	res := r.Domain(id)
	if res.Missing {
		return UnknownDomain
	}
	return res.Value.Name
}
