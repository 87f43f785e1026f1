package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	common_models "go-procure/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDefinitionRepo struct {
	mu   sync.Mutex
	defs map[primitive.ObjectID]*WorkflowDefinition
}

func newFakeDefinitionRepo(defs ...*WorkflowDefinition) *fakeDefinitionRepo {
	repo := &fakeDefinitionRepo{defs: make(map[primitive.ObjectID]*WorkflowDefinition)}
	for _, def := range defs {
		if def.ID.IsZero() {
			def.ID = primitive.NewObjectID()
		}
		repo.defs[def.ID] = def
	}
	return repo
}

func (r *fakeDefinitionRepo) Create(ctx context.Context, def *WorkflowDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = def
	return nil
}

func (r *fakeDefinitionRepo) GetByID(ctx context.Context, id string) (*WorkflowDefinition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defs[oid], nil
}

func (r *fakeDefinitionRepo) GetDefaultByType(ctx context.Context, docType DocumentType) (*WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range r.defs {
		if def.DocumentType == docType && def.IsDefault && def.Active {
			return def, nil
		}
	}
	return nil, nil
}

func (r *fakeDefinitionRepo) ListActiveByType(ctx context.Context, docType DocumentType) ([]WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []WorkflowDefinition
	for _, def := range r.defs {
		if def.DocumentType == docType && def.Active {
			out = append(out, *def)
		}
	}
	return out, nil
}

func (r *fakeDefinitionRepo) List(ctx context.Context) ([]WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []WorkflowDefinition
	for _, def := range r.defs {
		out = append(out, *def)
	}
	return out, nil
}

func (r *fakeDefinitionRepo) Update(ctx context.Context, id string, def *WorkflowDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = def
	return nil
}

func (r *fakeDefinitionRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, oid)
	return nil
}

// fakeInstanceRepo reproduces the two storage invariants the service
// leans on: the unique pending index per document and the version CAS.
type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances map[primitive.ObjectID]*WorkflowInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{instances: make(map[primitive.ObjectID]*WorkflowInstance)}
}

func (r *fakeInstanceRepo) Create(ctx context.Context, inst *WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.instances {
		if existing.DocumentType == inst.DocumentType &&
			existing.DocumentID == inst.DocumentID &&
			existing.Status == InstanceStatusPending {
			return ErrDuplicatePendingInstance
		}
	}
	r.instances[inst.ID] = copyInstance(inst)
	return nil
}

func (r *fakeInstanceRepo) GetByID(ctx context.Context, id string) (*WorkflowInstance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[oid]
	if !ok {
		return nil, nil
	}
	return copyInstance(inst), nil
}

func (r *fakeInstanceRepo) GetPendingByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inst := range r.instances {
		if inst.DocumentType == docType && inst.DocumentID == docID && inst.Status == InstanceStatusPending {
			return copyInstance(inst), nil
		}
	}
	return nil, nil
}

func (r *fakeInstanceRepo) GetLatestByDocument(ctx context.Context, docType DocumentType, docID string) (*WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *WorkflowInstance
	for _, inst := range r.instances {
		if inst.DocumentType != docType || inst.DocumentID != docID || inst.SupersededBy != nil {
			continue
		}
		if latest == nil || inst.CreatedAt.After(latest.CreatedAt) {
			latest = inst
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyInstance(latest), nil
}

func (r *fakeInstanceRepo) ListPendingByRoles(ctx context.Context, roles []string) ([]WorkflowInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roleSet := make(map[string]bool, len(roles))
	for _, role := range roles {
		roleSet[role] = true
	}
	var out []WorkflowInstance
	for _, inst := range r.instances {
		if inst.Status != InstanceStatusPending {
			continue
		}
		for _, role := range inst.CurrentRoles {
			if roleSet[role] {
				out = append(out, *copyInstance(inst))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeInstanceRepo) UpdateWithVersion(ctx context.Context, inst *WorkflowInstance, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.instances[inst.ID]
	if !ok || stored.Version != expectedVersion {
		return ErrStaleVersion
	}
	r.instances[inst.ID] = copyInstance(inst)
	return nil
}

func (r *fakeInstanceRepo) EnsureIndexes(ctx context.Context) error { return nil }

func copyInstance(inst *WorkflowInstance) *WorkflowInstance {
	c := *inst
	c.Decisions = append([]Decision(nil), inst.Decisions...)
	c.CurrentRoles = append([]string(nil), inst.CurrentRoles...)
	return &c
}

type fakeRoleResolver map[string][]string

func (f fakeRoleResolver) ResolveUserRoles(ctx context.Context, userID string) ([]string, error) {
	return f[userID], nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService(roles fakeRoleResolver, defs ...*WorkflowDefinition) (WorkflowService, *fakeInstanceRepo) {
	instRepo := newFakeInstanceRepo()
	svc := NewWorkflowService(newFakeDefinitionRepo(defs...), instRepo, roles, noopAudit{})
	return svc, instRepo
}

func TestStartSelectsLevelsFromRoutingValue(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, err := svc.Start(ctx, DocumentTypeOrder, "po-1", 20000)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if inst.Status != InstanceStatusPending {
		t.Errorf("status = %s, want pending", inst.Status)
	}
	if len(inst.ActiveLevels) != 2 {
		t.Fatalf("got %d active levels, want 2", len(inst.ActiveLevels))
	}
	if inst.Version != 1 {
		t.Errorf("version = %d, want 1", inst.Version)
	}
	if len(inst.CurrentRoles) != 1 || inst.CurrentRoles[0] != "procurement_manager" {
		t.Errorf("current roles = %v, want [procurement_manager]", inst.CurrentRoles)
	}
}

func TestStartRejectsDuplicatePending(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	if _, err := svc.Start(ctx, DocumentTypeOrder, "po-1", 5000); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := svc.Start(ctx, DocumentTypeOrder, "po-1", 5000); !errors.Is(err, ErrDuplicatePendingInstance) {
		t.Fatalf("want ErrDuplicatePendingInstance, got %v", err)
	}
}

func TestStartWithoutDefinition(t *testing.T) {
	svc, _ := newTestService(nil)

	if _, err := svc.Start(context.Background(), DocumentTypeOrder, "po-1", 100); !errors.Is(err, ErrDefinitionNotFound) {
		t.Fatalf("want ErrDefinitionNotFound, got %v", err)
	}
}

func TestApproveAdvancesThroughLevels(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, err := svc.Start(ctx, DocumentTypeOrder, "po-1", 75000)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := inst.ID.Hex()

	inst, err = svc.Decide(ctx, id, "u1", []string{"procurement_manager"}, DecisionApprove, "", 1)
	if err != nil {
		t.Fatalf("level 1 approve: %v", err)
	}
	if inst.CurrentIndex != 1 || inst.Status != InstanceStatusPending {
		t.Fatalf("after level 1: index=%d status=%s", inst.CurrentIndex, inst.Status)
	}
	if inst.CurrentRoles[0] != "cost_center" {
		t.Errorf("current roles = %v, want [cost_center]", inst.CurrentRoles)
	}

	inst, err = svc.Decide(ctx, id, "u2", []string{"cost_center"}, DecisionApprove, "", 2)
	if err != nil {
		t.Fatalf("level 2 approve: %v", err)
	}
	if inst.CurrentIndex != 2 {
		t.Fatalf("after level 2: index=%d", inst.CurrentIndex)
	}

	inst, err = svc.Decide(ctx, id, "u3", []string{"general_manager"}, DecisionApprove, "looks fine", 3)
	if err != nil {
		t.Fatalf("level 3 approve: %v", err)
	}
	if inst.Status != InstanceStatusApproved {
		t.Errorf("status = %s, want approved", inst.Status)
	}
	if inst.CurrentRoles != nil {
		t.Errorf("terminal instance still advertises roles: %v", inst.CurrentRoles)
	}
	if len(inst.Decisions) != 3 {
		t.Errorf("decision log has %d entries, want 3", len(inst.Decisions))
	}
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 20000)
	id := inst.ID.Hex()

	if _, err := svc.Decide(ctx, id, "u1", []string{"procurement_manager"}, DecisionApprove, "", 1); err != nil {
		t.Fatalf("approve: %v", err)
	}

	inst, err := svc.Decide(ctx, id, "u2", []string{"cost_center"}, DecisionReject, "over budget", 2)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if inst.Status != InstanceStatusRejected {
		t.Fatalf("status = %s, want rejected", inst.Status)
	}

	if _, err := svc.Decide(ctx, id, "u1", []string{"procurement_manager"}, DecisionApprove, "", 3); !errors.Is(err, ErrInstanceNotPending) {
		t.Fatalf("decision on rejected instance: want ErrInstanceNotPending, got %v", err)
	}
}

func TestDecideRequiresCurrentLevelRole(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 20000)

	// cost_center sits at level 2, but the instance waits on level 1.
	_, err := svc.Decide(ctx, inst.ID.Hex(), "u2", []string{"cost_center"}, DecisionApprove, "", 1)
	if !errors.Is(err, ErrNotAuthorizedForLevel) {
		t.Fatalf("want ErrNotAuthorizedForLevel, got %v", err)
	}
}

func allModeDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		DocumentType: DocumentTypePrePayment,
		Name:         "Pre-payment approval",
		IsDefault:    true,
		Active:       true,
		Levels: []Level{
			{LevelNumber: 1, ApproverRoles: []string{"finance", "cost_center"}, ApprovalMode: ApprovalModeAll, IsMandatory: true},
		},
	}
}

func TestAllModeRequiresEveryRole(t *testing.T) {
	svc, _ := newTestService(nil, allModeDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypePrePayment, "pay-1", 500)
	id := inst.ID.Hex()

	inst, err := svc.Decide(ctx, id, "u1", []string{"finance"}, DecisionApprove, "", 1)
	if err != nil {
		t.Fatalf("finance approve: %v", err)
	}
	if inst.Status != InstanceStatusPending {
		t.Fatalf("one of two roles approved, status = %s, want pending", inst.Status)
	}
	if inst.CurrentIndex != 0 {
		t.Fatalf("level advanced before all roles signed off")
	}

	inst, err = svc.Decide(ctx, id, "u2", []string{"cost_center"}, DecisionApprove, "", 2)
	if err != nil {
		t.Fatalf("cost center approve: %v", err)
	}
	if inst.Status != InstanceStatusApproved {
		t.Errorf("status = %s, want approved", inst.Status)
	}
}

func TestAllModeCountsRolesNotUsers(t *testing.T) {
	svc, _ := newTestService(nil, allModeDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypePrePayment, "pay-1", 500)
	id := inst.ID.Hex()

	if _, err := svc.Decide(ctx, id, "u1", []string{"finance"}, DecisionApprove, "", 1); err != nil {
		t.Fatalf("first finance approve: %v", err)
	}

	// Another user holding the same role adds nothing to the level.
	_, err := svc.Decide(ctx, id, "u2", []string{"finance"}, DecisionApprove, "", 2)
	if !errors.Is(err, ErrDuplicateDecisionByRole) {
		t.Fatalf("want ErrDuplicateDecisionByRole, got %v", err)
	}
}

func TestAllModeAcceptsPartiallyNewRoles(t *testing.T) {
	svc, _ := newTestService(nil, allModeDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypePrePayment, "pay-1", 500)
	id := inst.ID.Hex()

	if _, err := svc.Decide(ctx, id, "u1", []string{"finance"}, DecisionApprove, "", 1); err != nil {
		t.Fatalf("finance approve: %v", err)
	}

	// Holder of both roles still contributes the unsatisfied one.
	inst, err := svc.Decide(ctx, id, "u2", []string{"finance", "cost_center"}, DecisionApprove, "", 2)
	if err != nil {
		t.Fatalf("dual-role approve: %v", err)
	}
	if inst.Status != InstanceStatusApproved {
		t.Errorf("status = %s, want approved", inst.Status)
	}
}

func TestPendingForShowsOnlyCurrentLevel(t *testing.T) {
	roles := fakeRoleResolver{
		"pm-user": {"procurement_manager"},
		"cc-user": {"cost_center"},
	}
	svc, _ := newTestService(roles, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 20000)

	// Level 1 pending: visible to procurement, invisible to cost center.
	pending, err := svc.PendingFor(ctx, "cc-user")
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("cost center sees %d instances at level 1, want 0", len(pending))
	}

	if _, err := svc.Decide(ctx, inst.ID.Hex(), "pm-user", []string{"procurement_manager"}, DecisionApprove, "", 1); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pending, _ = svc.PendingFor(ctx, "cc-user")
	if len(pending) != 1 {
		t.Fatalf("cost center sees %d instances at level 2, want 1", len(pending))
	}
	pending, _ = svc.PendingFor(ctx, "pm-user")
	if len(pending) != 0 {
		t.Fatalf("procurement still sees %d instances after its level, want 0", len(pending))
	}
}

func TestStaleVersionHasOneWinner(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 20000)
	id := inst.ID.Hex()

	if _, err := svc.Decide(ctx, id, "u1", []string{"procurement_manager"}, DecisionApprove, "", 1); err != nil {
		t.Fatalf("first decide: %v", err)
	}

	// Level 2 is now current; a writer still holding version 1 loses.
	if _, err := svc.Decide(ctx, id, "u2", []string{"cost_center"}, DecisionReject, "", 1); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("second decide with same version: want ErrStaleVersion, got %v", err)
	}
}

func TestConcurrentDecidesExactlyOneSucceeds(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 5000)
	id := inst.ID.Hex()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, action := range []DecisionAction{DecisionApprove, DecisionReject} {
		wg.Add(1)
		go func(a DecisionAction) {
			defer wg.Done()
			_, err := svc.Decide(ctx, id, "u-"+string(a), []string{"procurement_manager"}, a, "", 1)
			errs <- err
		}(action)
	}
	wg.Wait()
	close(errs)

	// The loser observes either the version conflict or, if it reads
	// after the winner's write lands, the already-terminal status.
	var wins, losses int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrStaleVersion) || errors.Is(err, ErrInstanceNotPending):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("got %d winners and %d losers, want exactly one of each", wins, losses)
	}
}

func TestCancelOnlyWhilePending(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 5000)
	id := inst.ID.Hex()

	cancelled, err := svc.Cancel(ctx, id, "author", "submitted too early", 1)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != InstanceStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason != "submitted too early" {
		t.Errorf("cancel reason = %q", cancelled.CancelReason)
	}

	if _, err := svc.Cancel(ctx, id, "author", "again", cancelled.Version); !errors.Is(err, ErrInstanceNotPending) {
		t.Fatalf("second cancel: want ErrInstanceNotPending, got %v", err)
	}
}

func TestResubmitReevaluatesRouting(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 75000)
	id := inst.ID.Hex()

	if _, err := svc.Decide(ctx, id, "u1", []string{"procurement_manager"}, DecisionReject, "too expensive", 1); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Amount cut below every threshold; only the mandatory level remains.
	newValue := 5000.0
	replacement, err := svc.Resubmit(ctx, id, "author", &newValue)
	if err != nil {
		t.Fatalf("Resubmit: %v", err)
	}
	if len(replacement.ActiveLevels) != 1 {
		t.Fatalf("replacement has %d levels, want 1", len(replacement.ActiveLevels))
	}
	if replacement.RoutingValue != newValue {
		t.Errorf("routing value = %v, want %v", replacement.RoutingValue, newValue)
	}

	old, err := svc.GetInstance(ctx, id)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	if old.SupersededBy == nil || *old.SupersededBy != replacement.ID {
		t.Errorf("old instance not linked to replacement")
	}

	latest, err := svc.GetInstanceByDocument(ctx, DocumentTypeOrder, "po-1")
	if err != nil {
		t.Fatalf("GetInstanceByDocument: %v", err)
	}
	if latest.ID != replacement.ID {
		t.Errorf("document lookup returned %s, want replacement %s", latest.ID.Hex(), replacement.ID.Hex())
	}
}

func TestResubmitRequiresRejected(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())
	ctx := context.Background()

	inst, _ := svc.Start(ctx, DocumentTypeOrder, "po-1", 5000)

	if _, err := svc.Resubmit(ctx, inst.ID.Hex(), "author", nil); !errors.Is(err, ErrInstanceNotRejected) {
		t.Fatalf("want ErrInstanceNotRejected, got %v", err)
	}
}

func TestCreateDefinitionEnforcesSingleDefault(t *testing.T) {
	svc, _ := newTestService(nil, orderDefinition())

	second := orderDefinition()
	second.Name = "Alternate order approval"

	err := svc.CreateDefinition(context.Background(), second)
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("second active default: want ErrInvalidDefinition, got %v", err)
	}

	second.IsDefault = false
	if err := svc.CreateDefinition(context.Background(), second); err != nil {
		t.Fatalf("non-default variant should save: %v", err)
	}
}
