package workflow

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentType identifies the business document a workflow governs.
type DocumentType string

const (
	DocumentTypeSupplier   DocumentType = "supplier"
	DocumentTypeOrder      DocumentType = "purchase_order"
	DocumentTypeQuotation  DocumentType = "material_quotation"
	DocumentTypePrePayment DocumentType = "pre_payment"
)

type ApprovalMode string

const (
	// ApprovalModeAny completes a level on the first authorized approval.
	ApprovalModeAny ApprovalMode = "any"
	// ApprovalModeAll requires one approval per distinct approver role.
	ApprovalModeAll ApprovalMode = "all"
)

type InstanceStatus string

const (
	InstanceStatusPending   InstanceStatus = "pending"
	InstanceStatusApproved  InstanceStatus = "approved"
	InstanceStatusRejected  InstanceStatus = "rejected"
	InstanceStatusCancelled InstanceStatus = "cancelled"
)

// IsTerminal reports whether no further decisions are accepted.
func (s InstanceStatus) IsTerminal() bool {
	return s == InstanceStatusApproved || s == InstanceStatusRejected || s == InstanceStatusCancelled
}

type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

// Level is one approval stage of a definition.
type Level struct {
	LevelNumber   int          `bson:"level_number" json:"level_number"`
	LevelName     string       `bson:"level_name" json:"level_name"`
	ApproverRoles []string     `bson:"approver_roles" json:"approver_roles"`
	ApprovalMode  ApprovalMode `bson:"approval_mode" json:"approval_mode"`
	// Mandatory levels are always active regardless of routing rules.
	IsMandatory bool `bson:"is_mandatory" json:"is_mandatory"`
}

// RoutingRule activates a non-mandatory level when the instance routing
// value (typically a monetary amount) satisfies the predicate. Rules for
// the same level are OR-combined.
type RoutingRule struct {
	LevelNumber int     `bson:"level_number" json:"level_number"`
	Operator    string  `bson:"operator" json:"operator"` // gte, gt, lte, lt, eq
	Threshold   float64 `bson:"threshold" json:"threshold"`
}

const (
	OperatorGte = "gte"
	OperatorGt  = "gt"
	OperatorLte = "lte"
	OperatorLt  = "lt"
	OperatorEq  = "eq"
)

// WorkflowDefinition is the configured template for one document type.
type WorkflowDefinition struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentType DocumentType       `bson:"document_type" json:"document_type"`
	Name         string             `bson:"name" json:"name"`
	// At most one active default definition per document type.
	IsDefault    bool          `bson:"is_default" json:"is_default"`
	Active       bool          `bson:"active" json:"active"`
	Levels       []Level       `bson:"levels" json:"levels"`
	RoutingRules []RoutingRule `bson:"routing_rules" json:"routing_rules"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// Decision is one append-only entry in an instance's decision log.
type Decision struct {
	LevelNumber int            `bson:"level_number" json:"level_number"`
	ActorID     string         `bson:"actor_id" json:"actor_id"`
	ActorRoles  []string       `bson:"actor_roles" json:"actor_roles"`
	Action      DecisionAction `bson:"action" json:"action"`
	Comment     string         `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
}

// WorkflowInstance is one running approval bound to a single document.
//
// ActiveLevels is frozen at start time (re-evaluated only on resubmit);
// a routing-value change after start never alters an in-flight instance.
// Version is the optimistic-concurrency token: every transition is a
// compare-and-swap conditioned on it.
type WorkflowInstance struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentType DocumentType       `bson:"document_type" json:"document_type"`
	DocumentID   string             `bson:"document_id" json:"document_id"`
	DefinitionID primitive.ObjectID `bson:"definition_id" json:"definition_id"`
	RoutingValue float64            `bson:"routing_value" json:"routing_value"`
	Status       InstanceStatus     `bson:"status" json:"status"`
	ActiveLevels []Level            `bson:"active_levels" json:"active_levels"`
	CurrentIndex int                `bson:"current_index" json:"current_index"`
	// CurrentRoles duplicates the current level's approver roles so the
	// pending query is a plain indexed filter. Rewritten on every
	// transition in the same write as the rest of the state.
	CurrentRoles []string   `bson:"current_roles" json:"current_roles"`
	Decisions    []Decision `bson:"decisions" json:"decisions"`
	Version      int64      `bson:"version" json:"version"`
	CancelReason string     `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	// SupersededBy points at the replacement instance after a resubmit.
	// The old record is kept for audit and excluded from document lookups.
	SupersededBy *primitive.ObjectID `bson:"superseded_by,omitempty" json:"superseded_by,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// CurrentLevel returns the level the instance is waiting on. Only valid
// while the instance is pending.
func (i *WorkflowInstance) CurrentLevel() *Level {
	if i.CurrentIndex < 0 || i.CurrentIndex >= len(i.ActiveLevels) {
		return nil
	}
	return &i.ActiveLevels[i.CurrentIndex]
}
