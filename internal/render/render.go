package render

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rendis/flowdoc/pkg/schema"
)

// Format selects the output representation of a flow.
type Format string

const (
	FormatPrompt   Format = "prompt"   // diagram-authoring instruction text
	FormatDocument Format = "document" // archival Markdown document
	FormatSequence Format = "sequence" // Mermaid sequence diagram
	FormatTopology Format = "topology" // Mermaid service topology graph
	FormatMatrix   Format = "matrix"   // Markdown interaction matrix
	FormatJSON     Format = "json"     // verbatim model passthrough
)

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatPrompt, FormatDocument, FormatSequence, FormatTopology, FormatMatrix, FormatJSON}
}

// ParseFormat converts a string into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", schema.NewErrorf(schema.ErrCodeRender, "unsupported format %q", s)
}

// Clock supplies the generation timestamp. Injected so output is fully
// deterministic in tests.
type Clock func() time.Time

// Renderer turns a flow and a catalog into output artifacts. Every Render
// call is a one-shot pure computation over read-only inputs; a Renderer is
// safe for concurrent use.
type Renderer struct {
	res *Resolver
	now Clock
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the timestamp source.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.now = c }
}

// NewRenderer creates a Renderer over the given catalog.
func NewRenderer(catalog *schema.Catalog, opts ...Option) *Renderer {
	r := &Renderer{
		res: NewResolver(catalog),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolver exposes the catalog resolver backing this renderer.
func (r *Renderer) Resolver() *Resolver { return r.res }

// Render produces the requested representation of the flow.
func (r *Renderer) Render(flow *schema.Flow, format Format) (string, error) {
	if flow == nil {
		return "", schema.NewError(schema.ErrCodeRender, "flow is nil")
	}
	switch format {
	case FormatPrompt:
		return r.Prompt(flow), nil
	case FormatDocument:
		return r.Document(flow), nil
	case FormatSequence:
		return r.Sequence(flow), nil
	case FormatTopology:
		return r.Topology(flow), nil
	case FormatMatrix:
		return r.Matrix(flow), nil
	case FormatJSON:
		return r.JSON(flow)
	default:
		return "", schema.NewErrorf(schema.ErrCodeRender, "unsupported format %q", format)
	}
}

// JSON serializes the flow model verbatim, unchanged.
func (r *Renderer) JSON(flow *schema.Flow) (string, error) {
	b, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return "", schema.NewError(schema.ErrCodeRender, "serialize flow").WithCause(err)
	}
	return string(b) + "\n", nil
}

// timestamp formats the generation time in UTC.
func (r *Renderer) timestamp() string {
	return r.now().UTC().Format("2006-01-02 15:04:05 UTC")
}

// SuggestedFilename derives a sink filename from the flow name and format.
func SuggestedFilename(flow *schema.Flow, format Format) string {
	name := slugify(flow.Name)
	if name == "" {
		name = "flow"
	}
	switch format {
	case FormatPrompt:
		return name + "-prompt.txt"
	case FormatDocument:
		return name + ".md"
	case FormatSequence:
		return name + "-sequence.mmd"
	case FormatTopology:
		return name + "-topology.mmd"
	case FormatMatrix:
		return name + "-matrix.md"
	case FormatJSON:
		return name + ".json"
	default:
		return name + ".txt"
	}
}

// slugify lowercases and reduces a name to [a-z0-9-].
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// palette is the fixed 5-color cycle assigned to involved services by
// position. Shared by the prompt requirements block and the image renderer.
var palette = [5]string{"#4C78A8", "#F58518", "#54A24B", "#B279A2", "#E45756"}

const (
	decisionColor    = "#FFD700" // fixed yellow for decision shapes
	errorBorderColor = "#D32F2F" // fixed red border for error-handling steps
)

// paletteColor returns the palette color for the involved service at the
// given position.
func paletteColor(pos int) string {
	return palette[pos%len(palette)]
}

// orderedSet preserves first-seen insertion order with O(1) membership.
// Keeps the participant dedup guarantee explicit instead of relying on a
// particular collection's iteration order.
type orderedSet struct {
	seen map[string]struct{}
	keys []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// Add inserts the key if unseen and reports whether it was inserted.
func (s *orderedSet) Add(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

// Has reports membership.
func (s *orderedSet) Has(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Keys returns the keys in first-seen order.
func (s *orderedSet) Keys() []string { return s.keys }

// Len returns the number of distinct keys.
func (s *orderedSet) Len() int { return len(s.keys) }

// safeID converts an arbitrary identifier to a Mermaid-safe node id.
func safeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// firstLine truncates a label at the first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// joinLabels resolves a list of ids through the given label func and joins
// them with commas.
func joinLabels(ids []string, label func(string) string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, label(id))
	}
	return strings.Join(out, ", ")
}

// interactionLabel returns the method of an interaction, falling back to its
// kind when no method is recorded.
func interactionLabel(in schema.ServiceInteraction) string {
	if in.Method != "" {
		return in.Method
	}
	if in.Kind != "" {
		return string(in.Kind)
	}
	return "interaction"
}
