package validation

import "github.com/rendis/flowdoc/pkg/schema"

// Validator checks flow and catalog documents before they enter the store or
// the renderers. Uses JSON Schema Draft 2020-12 for structural validation
// plus semantic checks the schema language cannot express.
type Validator interface {
	ValidateFlow(flow *schema.Flow, catalog *schema.Catalog) *schema.ValidationResult
	ValidateCatalog(catalog *schema.Catalog) *schema.ValidationResult
}
