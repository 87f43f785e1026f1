package supplier

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "go-procure/internal/common/models"
	"go-procure/internal/features/audit"
	"go-procure/internal/features/export"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SupplierService interface {
	CreateSupplier(ctx context.Context, supplier *Supplier, actorID string) (*Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, *workflow.WorkflowInstance, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, id string, supplier *Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	// Submit starts the onboarding approval. Suppliers have no monetary
	// routing attribute; only mandatory levels activate.
	Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error)
	Withdraw(ctx context.Context, id, actorID, reason string) error
	Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error)

	ExportExcel(ctx context.Context) ([]byte, error)
}

type SupplierServiceImpl struct {
	Repo            SupplierRepository
	WorkflowService workflow.WorkflowService
	ExportService   export.ExportService
	AuditService    audit.AuditService
}

func NewSupplierService(
	repo SupplierRepository,
	workflowService workflow.WorkflowService,
	exportService export.ExportService,
	auditService audit.AuditService,
) SupplierService {
	return &SupplierServiceImpl{
		Repo:            repo,
		WorkflowService: workflowService,
		ExportService:   exportService,
		AuditService:    auditService,
	}
}

func (s *SupplierServiceImpl) CreateSupplier(ctx context.Context, supplier *Supplier, actorID string) (*Supplier, error) {
	if supplier.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	supplier.ID = primitive.NewObjectID()
	supplier.Status = common_models.DocumentStatusDraft
	supplier.CreatedBy = actorID
	supplier.CreatedAt = time.Now()
	supplier.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "supplier", supplier.ID.Hex(), map[string]common_models.Change{
		"name": {New: supplier.Name},
	})

	return supplier, nil
}

// GetSupplier returns the supplier together with its latest workflow
// instance, syncing the mirrored status when the approval has finished.
func (s *SupplierServiceImpl) GetSupplier(ctx context.Context, id string) (*Supplier, *workflow.WorkflowInstance, error) {
	supplier, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if supplier == nil {
		return nil, nil, nil
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeSupplier, id)
	if err != nil {
		return nil, nil, err
	}

	if inst != nil && supplier.Status == common_models.DocumentStatusInApproval {
		if synced := documentStatusFor(inst.Status); synced != supplier.Status {
			supplier.Status = synced
			supplier.UpdatedAt = time.Now()
			if err := s.Repo.Update(ctx, id, supplier); err != nil {
				return nil, nil, err
			}
		}
	}

	return supplier, inst, nil
}

func (s *SupplierServiceImpl) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.Repo.List(ctx)
}

func (s *SupplierServiceImpl) UpdateSupplier(ctx context.Context, id string, supplier *Supplier) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("supplier not found")
	}
	if existing.Status == common_models.DocumentStatusInApproval || existing.Status == common_models.DocumentStatusApproved {
		return fmt.Errorf("supplier cannot be edited while %s", existing.Status)
	}

	supplier.Status = existing.Status
	supplier.WorkflowInstanceID = existing.WorkflowInstanceID
	supplier.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, supplier); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "supplier", id, map[string]common_models.Change{
		"name": {Old: existing.Name, New: supplier.Name},
	})

	return nil
}

func (s *SupplierServiceImpl) DeleteSupplier(ctx context.Context, id string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("supplier not found")
	}
	if existing.Status != common_models.DocumentStatusDraft {
		return errors.New("only draft suppliers can be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "supplier", id, nil)
	return nil
}

func (s *SupplierServiceImpl) Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error) {
	supplier, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, errors.New("supplier not found")
	}
	if supplier.Status != common_models.DocumentStatusDraft {
		return nil, fmt.Errorf("supplier is %s, only drafts can be submitted", supplier.Status)
	}

	inst, err := s.WorkflowService.Start(ctx, workflow.DocumentTypeSupplier, id, 0)
	if err != nil {
		return nil, err
	}

	supplier.Status = common_models.DocumentStatusInApproval
	supplier.WorkflowInstanceID = inst.ID.Hex()
	supplier.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, supplier); err != nil {
		return nil, err
	}

	return inst, nil
}

func (s *SupplierServiceImpl) Withdraw(ctx context.Context, id, actorID, reason string) error {
	supplier, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return errors.New("supplier not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeSupplier, id)
	if err != nil {
		return err
	}
	if inst == nil {
		return errors.New("supplier has no approval in progress")
	}

	if _, err := s.WorkflowService.Cancel(ctx, inst.ID.Hex(), actorID, reason, inst.Version); err != nil {
		return err
	}

	supplier.Status = common_models.DocumentStatusWithdrawn
	supplier.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, id, supplier)
}

func (s *SupplierServiceImpl) Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error) {
	supplier, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, errors.New("supplier not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeSupplier, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errors.New("supplier has no approval to resubmit")
	}

	replacement, err := s.WorkflowService.Resubmit(ctx, inst.ID.Hex(), actorID, nil)
	if err != nil {
		return nil, err
	}

	supplier.Status = common_models.DocumentStatusInApproval
	supplier.WorkflowInstanceID = replacement.ID.Hex()
	supplier.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, supplier); err != nil {
		return nil, err
	}

	return replacement, nil
}

func (s *SupplierServiceImpl) ExportExcel(ctx context.Context) ([]byte, error) {
	suppliers, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"code", "name", "contact_name", "email", "phone", "status", "created_at"}
	rows := make([]map[string]any, 0, len(suppliers))
	for _, sup := range suppliers {
		rows = append(rows, map[string]any{
			"code":         sup.Code,
			"name":         sup.Name,
			"contact_name": sup.ContactName,
			"email":        sup.Email,
			"phone":        sup.Phone,
			"status":       string(sup.Status),
			"created_at":   sup.CreatedAt,
		})
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "supplier", "", nil)

	return s.ExportService.ToExcel("Suppliers", columns, rows)
}

// documentStatusFor maps a terminal workflow status onto the document
// mirror; pending stays in_approval.
func documentStatusFor(status workflow.InstanceStatus) common_models.DocumentStatus {
	switch status {
	case workflow.InstanceStatusApproved:
		return common_models.DocumentStatusApproved
	case workflow.InstanceStatusRejected:
		return common_models.DocumentStatusRejected
	case workflow.InstanceStatusCancelled:
		return common_models.DocumentStatusWithdrawn
	default:
		return common_models.DocumentStatusInApproval
	}
}
