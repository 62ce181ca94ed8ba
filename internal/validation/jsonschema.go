package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/flowdoc/pkg/schema"
)

// flowSchemaJSON is the JSON Schema for Flow documents.
// Embedded as a constant to avoid filesystem dependencies.
const flowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowdoc.dev/schemas/flow.json",
  "type": "object",
  "required": ["id", "name", "steps"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string", "minLength": 1 },
    "description": { "type": "string" },
    "priority": { "type": "string", "enum": ["low", "medium", "high", "critical"] },
    "status": { "type": "string", "enum": ["draft", "review", "approved", "deprecated"] },
    "version": { "type": "string" },
    "domain_id": { "type": "string" },
    "involved_service_ids": { "type": "array", "items": { "type": "string" } },
    "actor_ids": { "type": "array", "items": { "type": "string" } },
    "entry_point": { "type": "string" },
    "trigger": { "type": "string" },
    "tags": { "type": "array", "items": { "type": "string" } },
    "steps": { "type": "array", "items": { "$ref": "#/$defs/step" } },
    "interactions": { "type": "array", "items": { "$ref": "#/$defs/interaction" } },
    "integrations": { "type": "array", "items": { "$ref": "#/$defs/integration" } },
    "business_rules": { "type": "array", "items": { "type": "string" } },
    "error_scenarios": { "type": "array", "items": { "$ref": "#/$defs/error_scenario" } },
    "performance_reqs": { "type": "array", "items": { "type": "string" } },
    "notes": { "type": "string" }
  },
  "additionalProperties": false,
  "$defs": {
    "step": {
      "type": "object",
      "required": ["number", "actor_id", "action"],
      "properties": {
        "number": { "type": "integer", "minimum": 1 },
        "actor_id": { "type": "string", "minLength": 1 },
        "action": { "type": "string", "minLength": 1 },
        "service_ids": { "type": "array", "items": { "type": "string" } },
        "communication_type_id": { "type": "string" },
        "input": { "$ref": "#/$defs/data_spec" },
        "output": { "$ref": "#/$defs/data_spec" },
        "is_decision_point": { "type": "boolean" },
        "decision_criteria": { "type": "string" },
        "conditional_paths": { "type": "array", "items": { "$ref": "#/$defs/conditional_path" } },
        "notifications": { "type": "array", "items": { "type": "string" } },
        "duration": { "type": "string" },
        "sla": { "type": "string" },
        "error_handling": { "type": "string" }
      },
      "additionalProperties": false
    },
    "data_spec": {
      "type": "object",
      "properties": {
        "description": { "type": "string" },
        "schema": { "type": "string" }
      },
      "additionalProperties": false
    },
    "conditional_path": {
      "type": "object",
      "required": ["condition"],
      "properties": {
        "condition": { "type": "string", "minLength": 1 },
        "next_step": { "type": "integer", "minimum": 1 }
      },
      "additionalProperties": false
    },
    "interaction": {
      "type": "object",
      "required": ["from_service_id", "to_service_id"],
      "properties": {
        "from_service_id": { "type": "string", "minLength": 1 },
        "to_service_id": { "type": "string", "minLength": 1 },
        "kind": { "type": "string", "enum": ["synchronous", "asynchronous", "event_driven"] },
        "method": { "type": "string" },
        "endpoint": { "type": "string" },
        "data_format": { "type": "string" },
        "data": { "type": "string" },
        "frequency": { "type": "string" },
        "latency": { "type": "string" },
        "auth": { "type": "string" },
        "error_handling": { "type": "string" }
      },
      "additionalProperties": false
    },
    "integration": {
      "type": "object",
      "required": ["from_service_id", "to_service_id"],
      "properties": {
        "from_service_id": { "type": "string", "minLength": 1 },
        "to_service_id": { "type": "string", "minLength": 1 },
        "type_id": { "type": "string" },
        "data": { "type": "string" },
        "frequency": { "type": "string" }
      },
      "additionalProperties": false
    },
    "error_scenario": {
      "type": "object",
      "required": ["scenario"],
      "properties": {
        "scenario": { "type": "string", "minLength": 1 },
        "handling": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// catalogSchemaJSON is the JSON Schema for Catalog documents.
const catalogSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowdoc.dev/schemas/catalog.json",
  "type": "object",
  "properties": {
    "domains": { "type": "array", "items": { "$ref": "#/$defs/domain" } },
    "actors": { "type": "array", "items": { "$ref": "#/$defs/actor" } },
    "integration_types": { "type": "array", "items": { "$ref": "#/$defs/integration_type" } }
  },
  "additionalProperties": false,
  "$defs": {
    "domain": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string", "minLength": 1 },
        "color": { "type": "string" },
        "services": { "type": "array", "items": { "$ref": "#/$defs/service" } }
      },
      "additionalProperties": false
    },
    "service": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string", "minLength": 1 },
        "code": { "type": "string" },
        "description": { "type": "string" },
        "datastore": { "type": "string" }
      },
      "additionalProperties": false
    },
    "actor": {
      "type": "object",
      "required": ["id", "code", "name"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "code": { "type": "string", "minLength": 1 },
        "name": { "type": "string", "minLength": 1 },
        "description": { "type": "string" },
        "kind": { "type": "string", "enum": ["human", "automated", "external"] }
      },
      "additionalProperties": false
    },
    "integration_type": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string", "minLength": 1 },
        "code": { "type": "string" },
        "description": { "type": "string" },
        "line_pattern": { "type": "string" },
        "color": { "type": "string" },
        "arrow_shape": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator implements the Validator interface using JSON Schema
// Draft 2020-12. It is safe for concurrent use: both schemas are compiled
// once at construction.
type JSONSchemaValidator struct {
	flowSchema    *jsonschema.Schema
	catalogSchema *jsonschema.Schema
}

// NewJSONSchemaValidator creates a validator with both schemas pre-compiled.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	flowSchema, err := compileResource(c, "https://flowdoc.dev/schemas/flow.json", flowSchemaJSON)
	if err != nil {
		return nil, err
	}
	catalogSchema, err := compileResource(c, "https://flowdoc.dev/schemas/catalog.json", catalogSchemaJSON)
	if err != nil {
		return nil, err
	}

	return &JSONSchemaValidator{
		flowSchema:    flowSchema,
		catalogSchema: catalogSchema,
	}, nil
}

func compileResource(c *jsonschema.Compiler, url, raw string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", url, err)
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", url, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", url, err)
	}
	return compiled, nil
}

// ValidateFlow checks a flow against the flow schema and the semantic rules.
// The catalog may be nil; cross-reference checks are skipped then.
func (v *JSONSchemaValidator) ValidateFlow(flow *schema.Flow, catalog *schema.Catalog) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if flow == nil {
		result.AddError("/", schema.ErrCodeValidation, "flow is nil")
		return result
	}

	if err := validateAgainst(v.flowSchema, flow); err != nil {
		collectSchemaIssues(err, result)
		return result
	}

	result.Merge(validateFlowSemantics(flow, catalog))
	return result
}

// ValidateCatalog checks a catalog against the catalog schema and semantic rules.
func (v *JSONSchemaValidator) ValidateCatalog(catalog *schema.Catalog) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if catalog == nil {
		result.AddError("/", schema.ErrCodeValidation, "catalog is nil")
		return result
	}

	if err := validateAgainst(v.catalogSchema, catalog); err != nil {
		collectSchemaIssues(err, result)
		return result
	}

	result.Merge(validateCatalogSemantics(catalog))
	return result
}

// validateAgainst round-trips the value through JSON so numbers become
// json.Number, as required by the jsonschema library.
func validateAgainst(compiled *jsonschema.Schema, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return fmt.Errorf("reparse document: %w", err)
	}
	return compiled.Validate(doc)
}

// collectSchemaIssues flattens a jsonschema.ValidationError tree into the result.
func collectSchemaIssues(err error, result *schema.ValidationResult) {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return
	}
	for _, msg := range collectViolations(verr) {
		result.AddError(msg.path, schema.ErrCodeValidation, msg.message)
	}
}

type violation struct {
	path    string
	message string
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []violation {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []violation{{path: loc, message: verr.Error()}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

var _ Validator = (*JSONSchemaValidator)(nil)
