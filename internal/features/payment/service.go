package payment

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

type PaymentService interface {
	CreatePayment(ctx context.Context, payment *PrePayment, actorID string) (*PrePayment, error)
	GetPayment(ctx context.Context, id string) (*PrePayment, *workflow.WorkflowInstance, error)
	ListPayments(ctx context.Context, orderID string) ([]PrePayment, error)
	UpdatePayment(ctx context.Context, id string, payment *PrePayment) error
	DeletePayment(ctx context.Context, id string) error

	Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error)
	Withdraw(ctx context.Context, id, actorID, reason string) error
	Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error)

	ExportExcel(ctx context.Context) ([]byte, error)
}

type PaymentServiceImpl struct {
	Repo            PaymentRepository
	WorkflowService workflow.WorkflowService
	ExportService   export.ExportService
	AuditService    audit.AuditService
}

func NewPaymentService(
	repo PaymentRepository,
	workflowService workflow.WorkflowService,
	exportService export.ExportService,
	auditService audit.AuditService,
) PaymentService {
	return &PaymentServiceImpl{
		Repo:            repo,
		WorkflowService: workflowService,
		ExportService:   exportService,
		AuditService:    auditService,
	}
}

func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, payment *PrePayment, actorID string) (*PrePayment, error) {
	if payment.Amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if payment.OrderID == "" {
		return nil, errors.New("order is required")
	}

	payment.ID = primitive.NewObjectID()
	payment.Status = common_models.DocumentStatusDraft
	payment.CreatedBy = actorID
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "pre_payment", payment.ID.Hex(), map[string]common_models.Change{
		"payment_number": {New: payment.PaymentNumber},
		"amount":         {New: payment.Amount},
	})

	return payment, nil
}

func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id string) (*PrePayment, *workflow.WorkflowInstance, error) {
	payment, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, nil
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypePrePayment, id)
	if err != nil {
		return nil, nil, err
	}

	if inst != nil && payment.Status == common_models.DocumentStatusInApproval {
		if synced := documentStatusFor(inst.Status); synced != payment.Status {
			payment.Status = synced
			payment.UpdatedAt = time.Now()
			if err := s.Repo.Update(ctx, id, payment); err != nil {
				return nil, nil, err
			}
		}
	}

	return payment, inst, nil
}

func (s *PaymentServiceImpl) ListPayments(ctx context.Context, orderID string) ([]PrePayment, error) {
	if orderID != "" {
		return s.Repo.ListByOrder(ctx, orderID)
	}
	return s.Repo.List(ctx)
}

func (s *PaymentServiceImpl) UpdatePayment(ctx context.Context, id string, payment *PrePayment) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("payment not found")
	}
	if existing.Status == common_models.DocumentStatusInApproval || existing.Status == common_models.DocumentStatusApproved {
		return fmt.Errorf("payment cannot be edited while %s", existing.Status)
	}
	if payment.Amount <= 0 {
		return errors.New("payment amount must be positive")
	}

	payment.Status = existing.Status
	payment.WorkflowInstanceID = existing.WorkflowInstanceID
	payment.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, payment); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "pre_payment", id, map[string]common_models.Change{
		"amount": {Old: existing.Amount, New: payment.Amount},
	})

	return nil
}

func (s *PaymentServiceImpl) DeletePayment(ctx context.Context, id string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("payment not found")
	}
	if existing.Status != common_models.DocumentStatusDraft {
		return errors.New("only draft payments can be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "pre_payment", id, nil)
	return nil
}

func (s *PaymentServiceImpl) Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error) {
	payment, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.New("payment not found")
	}
	if payment.Status != common_models.DocumentStatusDraft {
		return nil, fmt.Errorf("payment is %s, only drafts can be submitted", payment.Status)
	}

	inst, err := s.WorkflowService.Start(ctx, workflow.DocumentTypePrePayment, id, payment.Amount)
	if err != nil {
		return nil, err
	}

	payment.Status = common_models.DocumentStatusInApproval
	payment.WorkflowInstanceID = inst.ID.Hex()
	payment.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, payment); err != nil {
		return nil, err
	}

	return inst, nil
}

func (s *PaymentServiceImpl) Withdraw(ctx context.Context, id, actorID, reason string) error {
	payment, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if payment == nil {
		return errors.New("payment not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypePrePayment, id)
	if err != nil {
		return err
	}
	if inst == nil {
		return errors.New("payment has no approval in progress")
	}

	if _, err := s.WorkflowService.Cancel(ctx, inst.ID.Hex(), actorID, reason, inst.Version); err != nil {
		return err
	}

	payment.Status = common_models.DocumentStatusWithdrawn
	payment.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, id, payment)
}

func (s *PaymentServiceImpl) Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error) {
	payment, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.New("payment not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypePrePayment, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errors.New("payment has no approval to resubmit")
	}

	amount := payment.Amount
	replacement, err := s.WorkflowService.Resubmit(ctx, inst.ID.Hex(), actorID, &amount)
	if err != nil {
		return nil, err
	}

	payment.Status = common_models.DocumentStatusInApproval
	payment.WorkflowInstanceID = replacement.ID.Hex()
	payment.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, payment); err != nil {
		return nil, err
	}

	return replacement, nil
}

func (s *PaymentServiceImpl) ExportExcel(ctx context.Context) ([]byte, error) {
	payments, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"payment_number", "order_id", "supplier_id", "amount", "currency", "status", "created_at"}
	rows := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]any{
			"payment_number": p.PaymentNumber,
			"order_id":       p.OrderID,
			"supplier_id":    p.SupplierID,
			"amount":         p.Amount,
			"currency":       p.Currency,
			"status":         string(p.Status),
			"created_at":     p.CreatedAt,
		})
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "pre_payment", "", nil)

	return s.ExportService.ToExcel("PrePayments", columns, rows)
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
