package schema

// Flow is the JSON-serializable workflow model being documented.
// It is produced outside the engine (editor form state, deserialized file,
// remote API response) and consumed read-only by the renderers.
type Flow struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Description        string               `json:"description,omitempty"`
	Priority           FlowPriority         `json:"priority,omitempty"` // low, medium, high, critical
	Status             FlowStatus           `json:"status,omitempty"`   // draft, review, approved, deprecated
	Version            string               `json:"version,omitempty"`
	DomainID           string               `json:"domain_id,omitempty"`
	InvolvedServiceIDs []string             `json:"involved_service_ids,omitempty"`
	ActorIDs           []string             `json:"actor_ids,omitempty"`
	EntryPoint         string               `json:"entry_point,omitempty"`
	Trigger            string               `json:"trigger,omitempty"`
	Tags               []string             `json:"tags,omitempty"`
	Steps              []Step               `json:"steps"`
	Interactions       []ServiceInteraction `json:"interactions,omitempty"`
	Integrations       []Integration        `json:"integrations,omitempty"`
	BusinessRules      []string             `json:"business_rules,omitempty"`
	ErrorScenarios     []ErrorScenario      `json:"error_scenarios,omitempty"`
	PerformanceReqs    []string             `json:"performance_reqs,omitempty"`
	Notes              string               `json:"notes,omitempty"`
}

// FlowPriority enumerates flow priorities.
type FlowPriority string

const (
	PriorityLow      FlowPriority = "low"
	PriorityMedium   FlowPriority = "medium"
	PriorityHigh     FlowPriority = "high"
	PriorityCritical FlowPriority = "critical"
)

// FlowStatus enumerates the lifecycle states of a flow.
type FlowStatus string

const (
	FlowStatusDraft      FlowStatus = "draft"
	FlowStatusReview     FlowStatus = "review"
	FlowStatusApproved   FlowStatus = "approved"
	FlowStatusDeprecated FlowStatus = "deprecated"
)

// Step describes one step in a flow. Step numbers are 1-based and contiguous;
// the editor enforces that, the renderers only assume it.
type Step struct {
	Number              int               `json:"number"`
	ActorID             string            `json:"actor_id"`
	Action              string            `json:"action"`
	ServiceIDs          []string          `json:"service_ids,omitempty"`
	CommunicationTypeID string            `json:"communication_type_id,omitempty"`
	Input               *DataSpec         `json:"input,omitempty"`
	Output              *DataSpec         `json:"output,omitempty"`
	IsDecisionPoint     bool              `json:"is_decision_point,omitempty"`
	DecisionCriteria    string            `json:"decision_criteria,omitempty"`
	ConditionalPaths    []ConditionalPath `json:"conditional_paths,omitempty"`
	Notifications       []string          `json:"notifications,omitempty"`
	Duration            string            `json:"duration,omitempty"`
	SLA                 string            `json:"sla,omitempty"`
	ErrorHandling       string            `json:"error_handling,omitempty"`
}

// DataSpec describes the data entering or leaving a step.
type DataSpec struct {
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema,omitempty"`
}

// ConditionalPath is one named continuation out of a decision step.
type ConditionalPath struct {
	Condition string `json:"condition"`
	NextStep  int    `json:"next_step,omitempty"` // 0 means unspecified
}

// InteractionKind enumerates how one service calls another.
type InteractionKind string

const (
	InteractionSynchronous  InteractionKind = "synchronous"
	InteractionAsynchronous InteractionKind = "asynchronous"
	InteractionEventDriven  InteractionKind = "event_driven"
)

// ServiceInteraction is a detailed, typed record of one service calling another.
type ServiceInteraction struct {
	FromServiceID string          `json:"from_service_id"`
	ToServiceID   string          `json:"to_service_id"`
	Kind          InteractionKind `json:"kind,omitempty"`
	Method        string          `json:"method,omitempty"`
	Endpoint      string          `json:"endpoint,omitempty"`
	DataFormat    string          `json:"data_format,omitempty"`
	Data          string          `json:"data,omitempty"`
	Frequency     string          `json:"frequency,omitempty"`
	Latency       string          `json:"latency,omitempty"`
	Auth          string          `json:"auth,omitempty"`
	ErrorHandling string          `json:"error_handling,omitempty"`
}

// Integration is the coarser legacy from/to record, kept for backward
// compatibility. Renderers emit both forms when both are present.
type Integration struct {
	FromServiceID string `json:"from_service_id"`
	ToServiceID   string `json:"to_service_id"`
	TypeID        string `json:"type_id,omitempty"`
	Data          string `json:"data,omitempty"`
	Frequency     string `json:"frequency,omitempty"`
}

// ErrorScenario documents a known failure mode and its handling.
type ErrorScenario struct {
	Scenario string `json:"scenario"`
	Handling string `json:"handling,omitempty"`
}
