package selector

import "context"

// Engine evaluates a query expression against flow data.
// Three implementations: Expr (default), CEL (cel: prefix), GoJQ (jq: prefix).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
