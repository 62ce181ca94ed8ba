package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Prefixes that route an expression to a specific engine. Expressions without
// a prefix are evaluated with Expr.
const (
	prefixCEL = "cel:"
	prefixJQ  = "jq:"
)

// Selector evaluates boolean query expressions over flow documents. The
// expression dialect is chosen by prefix: "cel:" routes to CEL, "jq:" to
// GoJQ, anything else to Expr. All three engines see the same environment:
// the keys flow and catalog bound to the JSON forms of the documents.
type Selector struct {
	exprEngine *ExprEngine
	celEngine  *CELEngine
	jqEngine   *GoJQEngine
}

// NewSelector creates a selector with all three engines ready.
func NewSelector() (*Selector, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Selector{
		exprEngine: NewExprEngine(),
		celEngine:  celEngine,
		jqEngine:   NewGoJQEngine(),
	}, nil
}

// Match evaluates the expression against a single flow. An empty expression
// matches every flow. A non-boolean result is a QUERY_ERROR: selectors decide
// membership, they do not transform.
func (s *Selector) Match(ctx context.Context, flow *schema.Flow, catalog *schema.Catalog, expression string) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return true, nil
	}

	env, err := buildEnv(flow, catalog)
	if err != nil {
		return false, err
	}

	engine, expr := s.route(expression)
	out, err := engine.Evaluate(ctx, expr, env)
	if err != nil {
		return false, err
	}

	return truthy(out, expression)
}

// Select filters flows down to those matching the expression, preserving
// input order. Evaluation stops at the first error.
func (s *Selector) Select(ctx context.Context, flows []*schema.Flow, catalog *schema.Catalog, expression string) ([]*schema.Flow, error) {
	matched := make([]*schema.Flow, 0, len(flows))
	for _, flow := range flows {
		ok, err := s.Match(ctx, flow, catalog, expression)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, flow)
		}
	}
	return matched, nil
}

// route picks the engine by prefix and strips the prefix from the expression.
func (s *Selector) route(expression string) (Engine, string) {
	trimmed := strings.TrimSpace(expression)
	switch {
	case strings.HasPrefix(trimmed, prefixCEL):
		return s.celEngine, strings.TrimSpace(strings.TrimPrefix(trimmed, prefixCEL))
	case strings.HasPrefix(trimmed, prefixJQ):
		return s.jqEngine, strings.TrimSpace(strings.TrimPrefix(trimmed, prefixJQ))
	default:
		return s.exprEngine, trimmed
	}
}

// buildEnv converts the flow and catalog to their JSON object forms so all
// three engines see identical field names (snake_case, as on the wire).
func buildEnv(flow *schema.Flow, catalog *schema.Catalog) (map[string]any, error) {
	flowMap, err := toJSONMap(flow)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeQuery, "serialize flow for query: %s", err.Error()).WithCause(err)
	}
	catalogMap, err := toJSONMap(catalog)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeQuery, "serialize catalog for query: %s", err.Error()).WithCause(err)
	}
	return map[string]any{
		"flow":    flowMap,
		"catalog": catalogMap,
	}, nil
}

func toJSONMap(value any) (map[string]any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if string(b) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// truthy converts an engine result to a match decision. Only booleans and nil
// are accepted; nil (e.g. a jq path miss) means no match.
func truthy(out any, expression string) (bool, error) {
	switch v := out.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, schema.NewErrorf(schema.ErrCodeQuery,
			"query %q must evaluate to a boolean, got %T", expression, out).
			WithDetails(map[string]any{"expression": expression, "result": fmt.Sprintf("%v", out)})
	}
}
