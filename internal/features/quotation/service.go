package quotation

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

type QuotationService interface {
	CreateQuotation(ctx context.Context, quotation *MaterialQuotation, actorID string) (*MaterialQuotation, error)
	GetQuotation(ctx context.Context, id string) (*MaterialQuotation, *workflow.WorkflowInstance, error)
	ListQuotations(ctx context.Context, supplierID string) ([]MaterialQuotation, error)
	UpdateQuotation(ctx context.Context, id string, quotation *MaterialQuotation) error
	DeleteQuotation(ctx context.Context, id string) error

	Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error)
	Withdraw(ctx context.Context, id, actorID, reason string) error
	Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error)

	ExportExcel(ctx context.Context) ([]byte, error)
}

type QuotationServiceImpl struct {
	Repo            QuotationRepository
	WorkflowService workflow.WorkflowService
	ExportService   export.ExportService
	AuditService    audit.AuditService
}

func NewQuotationService(
	repo QuotationRepository,
	workflowService workflow.WorkflowService,
	exportService export.ExportService,
	auditService audit.AuditService,
) QuotationService {
	return &QuotationServiceImpl{
		Repo:            repo,
		WorkflowService: workflowService,
		ExportService:   exportService,
		AuditService:    auditService,
	}
}

func (s *QuotationServiceImpl) CreateQuotation(ctx context.Context, quotation *MaterialQuotation, actorID string) (*MaterialQuotation, error) {
	if quotation.MaterialCode == "" {
		return nil, errors.New("material code is required")
	}
	if quotation.SupplierID == "" {
		return nil, errors.New("supplier is required")
	}

	quotation.ID = primitive.NewObjectID()
	quotation.QuotedAmount = quotation.Quantity * quotation.UnitPrice
	quotation.Status = common_models.DocumentStatusDraft
	quotation.CreatedBy = actorID
	quotation.CreatedAt = time.Now()
	quotation.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, quotation); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "material_quotation", quotation.ID.Hex(), map[string]common_models.Change{
		"material_code": {New: quotation.MaterialCode},
		"quoted_amount": {New: quotation.QuotedAmount},
	})

	return quotation, nil
}

func (s *QuotationServiceImpl) GetQuotation(ctx context.Context, id string) (*MaterialQuotation, *workflow.WorkflowInstance, error) {
	quotation, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if quotation == nil {
		return nil, nil, nil
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeQuotation, id)
	if err != nil {
		return nil, nil, err
	}

	if inst != nil && quotation.Status == common_models.DocumentStatusInApproval {
		if synced := documentStatusFor(inst.Status); synced != quotation.Status {
			quotation.Status = synced
			quotation.UpdatedAt = time.Now()
			if err := s.Repo.Update(ctx, id, quotation); err != nil {
				return nil, nil, err
			}
		}
	}

	return quotation, inst, nil
}

func (s *QuotationServiceImpl) ListQuotations(ctx context.Context, supplierID string) ([]MaterialQuotation, error) {
	if supplierID != "" {
		return s.Repo.ListBySupplier(ctx, supplierID)
	}
	return s.Repo.List(ctx)
}

func (s *QuotationServiceImpl) UpdateQuotation(ctx context.Context, id string, quotation *MaterialQuotation) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("quotation not found")
	}
	if existing.Status == common_models.DocumentStatusInApproval || existing.Status == common_models.DocumentStatusApproved {
		return fmt.Errorf("quotation cannot be edited while %s", existing.Status)
	}

	quotation.QuotedAmount = quotation.Quantity * quotation.UnitPrice
	quotation.Status = existing.Status
	quotation.WorkflowInstanceID = existing.WorkflowInstanceID
	quotation.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, quotation); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "material_quotation", id, map[string]common_models.Change{
		"quoted_amount": {Old: existing.QuotedAmount, New: quotation.QuotedAmount},
	})

	return nil
}

func (s *QuotationServiceImpl) DeleteQuotation(ctx context.Context, id string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("quotation not found")
	}
	if existing.Status != common_models.DocumentStatusDraft {
		return errors.New("only draft quotations can be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "material_quotation", id, nil)
	return nil
}

func (s *QuotationServiceImpl) Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error) {
	quotation, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, errors.New("quotation not found")
	}
	if quotation.Status != common_models.DocumentStatusDraft {
		return nil, fmt.Errorf("quotation is %s, only drafts can be submitted", quotation.Status)
	}

	inst, err := s.WorkflowService.Start(ctx, workflow.DocumentTypeQuotation, id, quotation.QuotedAmount)
	if err != nil {
		return nil, err
	}

	quotation.Status = common_models.DocumentStatusInApproval
	quotation.WorkflowInstanceID = inst.ID.Hex()
	quotation.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, quotation); err != nil {
		return nil, err
	}

	return inst, nil
}

func (s *QuotationServiceImpl) Withdraw(ctx context.Context, id, actorID, reason string) error {
	quotation, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if quotation == nil {
		return errors.New("quotation not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeQuotation, id)
	if err != nil {
		return err
	}
	if inst == nil {
		return errors.New("quotation has no approval in progress")
	}

	if _, err := s.WorkflowService.Cancel(ctx, inst.ID.Hex(), actorID, reason, inst.Version); err != nil {
		return err
	}

	quotation.Status = common_models.DocumentStatusWithdrawn
	quotation.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, id, quotation)
}

func (s *QuotationServiceImpl) Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error) {
	quotation, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, errors.New("quotation not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeQuotation, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errors.New("quotation has no approval to resubmit")
	}

	amount := quotation.QuotedAmount
	replacement, err := s.WorkflowService.Resubmit(ctx, inst.ID.Hex(), actorID, &amount)
	if err != nil {
		return nil, err
	}

	quotation.Status = common_models.DocumentStatusInApproval
	quotation.WorkflowInstanceID = replacement.ID.Hex()
	quotation.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, quotation); err != nil {
		return nil, err
	}

	return replacement, nil
}

func (s *QuotationServiceImpl) ExportExcel(ctx context.Context) ([]byte, error) {
	quotations, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"quotation_number", "supplier_id", "material_code", "material_name", "quantity", "unit_price", "quoted_amount", "status", "created_at"}
	rows := make([]map[string]any, 0, len(quotations))
	for _, q := range quotations {
		rows = append(rows, map[string]any{
			"quotation_number": q.QuotationNumber,
			"supplier_id":      q.SupplierID,
			"material_code":    q.MaterialCode,
			"material_name":    q.MaterialName,
			"quantity":         q.Quantity,
			"unit_price":       q.UnitPrice,
			"quoted_amount":    q.QuotedAmount,
			"status":           string(q.Status),
			"created_at":       q.CreatedAt,
		})
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "material_quotation", "", nil)

	return s.ExportService.ToExcel("MaterialQuotations", columns, rows)
}

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
