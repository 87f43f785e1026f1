package workflow

import (
	"context"
	"fmt"
	"time"

	common_models "go-procure/internal/common/models"
	"go-procure/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleResolver resolves the role names a user holds. Satisfied by the
// role feature; the engine never reads user records itself.
type RoleResolver interface {
	ResolveUserRoles(ctx context.Context, userID string) ([]string, error)
}

type WorkflowService interface {
	// Definition management
	CreateDefinition(ctx context.Context, def *WorkflowDefinition) error
	UpdateDefinition(ctx context.Context, id string, def *WorkflowDefinition) error
	DeleteDefinition(ctx context.Context, id string) error
	GetDefinition(ctx context.Context, id string) (*WorkflowDefinition, error)
	ListDefinitions(ctx context.Context) ([]WorkflowDefinition, error)

	// Instance lifecycle
	Start(ctx context.Context, docType DocumentType, docID string, routingValue float64) (*WorkflowInstance, error)
	Decide(ctx context.Context, instanceID, actorID string, actorRoles []string, action DecisionAction, comment string, expectedVersion int64) (*WorkflowInstance, error)
	Resubmit(ctx context.Context, instanceID, actorID string, newRoutingValue *float64) (*WorkflowInstance, error)
	Cancel(ctx context.Context, instanceID, actorID, reason string, expectedVersion int64) (*WorkflowInstance, error)

	// Read side
	PendingFor(ctx context.Context, userID string) ([]WorkflowInstance, error)
	GetInstance(ctx context.Context, id string) (*WorkflowInstance, error)
	GetInstanceByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error)
}

type WorkflowServiceImpl struct {
	DefinitionRepo DefinitionRepository
	InstanceRepo   InstanceRepository
	Roles          RoleResolver
	AuditService   audit.AuditService
}

func NewWorkflowService(
	definitionRepo DefinitionRepository,
	instanceRepo InstanceRepository,
	roles RoleResolver,
	auditService audit.AuditService,
) WorkflowService {
	return &WorkflowServiceImpl{
		DefinitionRepo: definitionRepo,
		InstanceRepo:   instanceRepo,
		Roles:          roles,
		AuditService:   auditService,
	}
}

func (s *WorkflowServiceImpl) CreateDefinition(ctx context.Context, def *WorkflowDefinition) error {
	if err := ValidateDefinition(def); err != nil {
		return err
	}
	if err := s.checkDefaultOverlap(ctx, def); err != nil {
		return err
	}

	if def.ID.IsZero() {
		def.ID = primitive.NewObjectID()
	}
	def.CreatedAt = time.Now()
	def.UpdatedAt = time.Now()

	return s.DefinitionRepo.Create(ctx, def)
}

func (s *WorkflowServiceImpl) UpdateDefinition(ctx context.Context, id string, def *WorkflowDefinition) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	def.ID = oid

	if err := ValidateDefinition(def); err != nil {
		return err
	}
	if err := s.checkDefaultOverlap(ctx, def); err != nil {
		return err
	}

	def.UpdatedAt = time.Now()
	return s.DefinitionRepo.Update(ctx, id, def)
}

// checkDefaultOverlap enforces at most one active default definition per
// document type.
func (s *WorkflowServiceImpl) checkDefaultOverlap(ctx context.Context, def *WorkflowDefinition) error {
	if !def.Active || !def.IsDefault {
		return nil
	}

	existing, err := s.DefinitionRepo.ListActiveByType(ctx, def.DocumentType)
	if err != nil {
		return err
	}
	for _, ef := range existing {
		if ef.ID != def.ID && ef.IsDefault {
			return fmt.Errorf("%w: an active default definition already exists for document type %q",
				ErrInvalidDefinition, def.DocumentType)
		}
	}
	return nil
}

func (s *WorkflowServiceImpl) DeleteDefinition(ctx context.Context, id string) error {
	return s.DefinitionRepo.Delete(ctx, id)
}

func (s *WorkflowServiceImpl) GetDefinition(ctx context.Context, id string) (*WorkflowDefinition, error) {
	return s.DefinitionRepo.GetByID(ctx, id)
}

func (s *WorkflowServiceImpl) ListDefinitions(ctx context.Context) ([]WorkflowDefinition, error) {
	return s.DefinitionRepo.List(ctx)
}

func (s *WorkflowServiceImpl) Start(ctx context.Context, docType DocumentType, docID string, routingValue float64) (*WorkflowInstance, error) {
	if docID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	if routingValue < 0 {
		return nil, fmt.Errorf("routing value must not be negative")
	}

	def, err := s.DefinitionRepo.GetDefaultByType(ctx, docType)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, ErrDefinitionNotFound
	}

	existing, err := s.InstanceRepo.GetPendingByDocument(ctx, docType, docID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePendingInstance
	}

	activeLevels := SelectActiveLevels(def, routingValue)
	if len(activeLevels) == 0 {
		return nil, fmt.Errorf("%w: definition %q activates no levels for routing value %v",
			ErrInvalidDefinition, def.Name, routingValue)
	}

	now := time.Now()
	inst := &WorkflowInstance{
		ID:           primitive.NewObjectID(),
		DocumentType: docType,
		DocumentID:   docID,
		DefinitionID: def.ID,
		RoutingValue: routingValue,
		Status:       InstanceStatusPending,
		ActiveLevels: activeLevels,
		CurrentIndex: 0,
		CurrentRoles: activeLevels[0].ApproverRoles,
		Decisions:    []Decision{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.InstanceRepo.Create(ctx, inst); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(docType), docID, map[string]common_models.Change{
		"workflow": {New: "started"},
	})

	return inst, nil
}

func (s *WorkflowServiceImpl) Decide(ctx context.Context, instanceID, actorID string, actorRoles []string, action DecisionAction, comment string, expectedVersion int64) (*WorkflowInstance, error) {
	if action != DecisionApprove && action != DecisionReject {
		return nil, fmt.Errorf("unknown decision action %q", action)
	}

	inst, err := s.InstanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrInstanceNotFound
	}

	if inst.Status != InstanceStatusPending {
		return nil, ErrInstanceNotPending
	}

	level := inst.CurrentLevel()
	if level == nil {
		return nil, fmt.Errorf("instance %s has an out-of-range current level index %d", instanceID, inst.CurrentIndex)
	}

	contributed := intersect(actorRoles, level.ApproverRoles)
	if len(contributed) == 0 {
		return nil, ErrNotAuthorizedForLevel
	}

	if inst.Version != expectedVersion {
		return nil, ErrStaleVersion
	}

	if action == DecisionApprove && level.ApprovalMode == ApprovalModeAll {
		// One approval per distinct role slot. If every role this actor
		// could speak for is already satisfied, the decision adds nothing.
		satisfied := approvedRolesAtLevel(inst.Decisions, level)
		adds := false
		for _, role := range contributed {
			if !satisfied[role] {
				adds = true
				break
			}
		}
		if !adds {
			return nil, ErrDuplicateDecisionByRole
		}
	}

	inst.Decisions = append(inst.Decisions, Decision{
		LevelNumber: level.LevelNumber,
		ActorID:     actorID,
		ActorRoles:  actorRoles,
		Action:      action,
		Comment:     comment,
		Timestamp:   time.Now(),
	})
	inst.Version++
	inst.UpdatedAt = time.Now()

	switch action {
	case DecisionReject:
		// Rejection by any authorized actor at any level fails the whole
		// instance; remaining approvers at the level are irrelevant.
		inst.Status = InstanceStatusRejected
		inst.CurrentRoles = nil

	case DecisionApprove:
		if levelComplete(inst.Decisions, level) {
			if inst.CurrentIndex == len(inst.ActiveLevels)-1 {
				inst.Status = InstanceStatusApproved
				inst.CurrentRoles = nil
			} else {
				inst.CurrentIndex++
				inst.CurrentRoles = inst.ActiveLevels[inst.CurrentIndex].ApproverRoles
			}
		}
		// Incomplete all-mode level: decision recorded, level unchanged.
	}

	if err := s.InstanceRepo.UpdateWithVersion(ctx, inst, expectedVersion); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(inst.DocumentType), inst.DocumentID, map[string]common_models.Change{
		"decision": {New: action},
		"level":    {New: level.LevelNumber},
		"status":   {New: inst.Status},
	})

	return inst, nil
}

func (s *WorkflowServiceImpl) Resubmit(ctx context.Context, instanceID, actorID string, newRoutingValue *float64) (*WorkflowInstance, error) {
	inst, err := s.InstanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrInstanceNotFound
	}

	if inst.Status != InstanceStatusRejected {
		return nil, ErrInstanceNotRejected
	}

	routingValue := inst.RoutingValue
	if newRoutingValue != nil {
		routingValue = *newRoutingValue
	}
	if routingValue < 0 {
		return nil, fmt.Errorf("routing value must not be negative")
	}

	def, err := s.DefinitionRepo.GetByID(ctx, inst.DefinitionID.Hex())
	if err != nil {
		return nil, err
	}
	if def == nil || !def.Active {
		// Definition was retired since the first submission; route
		// through the current default instead.
		def, err = s.DefinitionRepo.GetDefaultByType(ctx, inst.DocumentType)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, ErrDefinitionNotFound
		}
	}

	activeLevels := SelectActiveLevels(def, routingValue)
	if len(activeLevels) == 0 {
		return nil, fmt.Errorf("%w: definition %q activates no levels for routing value %v",
			ErrInvalidDefinition, def.Name, routingValue)
	}

	now := time.Now()
	replacement := &WorkflowInstance{
		ID:           primitive.NewObjectID(),
		DocumentType: inst.DocumentType,
		DocumentID:   inst.DocumentID,
		DefinitionID: def.ID,
		RoutingValue: routingValue,
		Status:       InstanceStatusPending,
		ActiveLevels: activeLevels,
		CurrentIndex: 0,
		CurrentRoles: activeLevels[0].ApproverRoles,
		Decisions:    []Decision{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique pending index arbitrates concurrent resubmits: only one
	// replacement can be created for the document.
	if err := s.InstanceRepo.Create(ctx, replacement); err != nil {
		return nil, err
	}

	// The old record stays for audit; it is only unlinked from document
	// lookups. Its version guard keeps this from racing a concurrent writer.
	inst.SupersededBy = &replacement.ID
	inst.Version++
	inst.UpdatedAt = now
	if err := s.InstanceRepo.UpdateWithVersion(ctx, inst, inst.Version-1); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(inst.DocumentType), inst.DocumentID, map[string]common_models.Change{
		"workflow": {Old: inst.ID.Hex(), New: replacement.ID.Hex()},
	})

	return replacement, nil
}

func (s *WorkflowServiceImpl) Cancel(ctx context.Context, instanceID, actorID, reason string, expectedVersion int64) (*WorkflowInstance, error) {
	inst, err := s.InstanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrInstanceNotFound
	}

	if inst.Status != InstanceStatusPending {
		return nil, ErrInstanceNotPending
	}
	if inst.Version != expectedVersion {
		return nil, ErrStaleVersion
	}

	inst.Status = InstanceStatusCancelled
	inst.CancelReason = reason
	inst.CurrentRoles = nil
	inst.Version++
	inst.UpdatedAt = time.Now()

	if err := s.InstanceRepo.UpdateWithVersion(ctx, inst, expectedVersion); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(inst.DocumentType), inst.DocumentID, map[string]common_models.Change{
		"workflow": {Old: InstanceStatusPending, New: InstanceStatusCancelled},
		"reason":   {New: reason},
	})

	return inst, nil
}

func (s *WorkflowServiceImpl) PendingFor(ctx context.Context, userID string) ([]WorkflowInstance, error) {
	roles, err := s.Roles.ResolveUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.InstanceRepo.ListPendingByRoles(ctx, roles)
}

func (s *WorkflowServiceImpl) GetInstance(ctx context.Context, id string) (*WorkflowInstance, error) {
	return s.InstanceRepo.GetByID(ctx, id)
}

func (s *WorkflowServiceImpl) GetInstanceByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error) {
	return s.InstanceRepo.GetLatestByDocument(ctx, docType, docID)
}

// approvedRolesAtLevel returns the distinct approver-role slots of the
// level that already have a recorded approval.
func approvedRolesAtLevel(decisions []Decision, level *Level) map[string]bool {
	satisfied := make(map[string]bool)
	for _, d := range decisions {
		if d.LevelNumber != level.LevelNumber || d.Action != DecisionApprove {
			continue
		}
		for _, role := range intersect(d.ActorRoles, level.ApproverRoles) {
			satisfied[role] = true
		}
	}
	return satisfied
}

// levelComplete evaluates the level's approval mode against the decision
// log. Roles count, not individuals: two users sharing one role satisfy
// a single slot in all mode.
func levelComplete(decisions []Decision, level *Level) bool {
	satisfied := approvedRolesAtLevel(decisions, level)

	switch level.ApprovalMode {
	case ApprovalModeAny:
		return len(satisfied) > 0
	case ApprovalModeAll:
		for _, role := range level.ApproverRoles {
			if !satisfied[role] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func intersect(a, b []string) []string {
	var out []string
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}
