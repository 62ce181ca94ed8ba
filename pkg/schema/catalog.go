package schema

// Catalog is the project-scoped registry of services, actors, and
// integration types referenced by flows. Plain data, no behavior; IDs are
// unique within their collection.
type Catalog struct {
	Domains          []ServiceDomain   `json:"domains,omitempty"`
	Actors           []Actor           `json:"actors,omitempty"`
	IntegrationTypes []IntegrationType `json:"integration_types,omitempty"`
}

// ServiceDomain groups services under a business domain with a display color.
type ServiceDomain struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color,omitempty"`
	Services []Service `json:"services,omitempty"`
}

// Service is one microservice in the catalog.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Datastore   string `json:"datastore,omitempty"`
}

// ActorKind classifies who or what performs a step.
type ActorKind string

const (
	ActorHuman     ActorKind = "human"
	ActorAutomated ActorKind = "automated"
	ActorExternal  ActorKind = "external"
)

// Actor is a participant in flows: a person, an automated process, or an
// external party.
type Actor struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Kind        ActorKind `json:"kind,omitempty"`
}

// IntegrationType describes a communication style between services and how
// it is drawn (line pattern, color, arrow shape).
type IntegrationType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	LinePattern string `json:"line_pattern,omitempty"`
	Color       string `json:"color,omitempty"`
	ArrowShape  string `json:"arrow_shape,omitempty"`
}
