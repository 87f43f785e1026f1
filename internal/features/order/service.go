package order

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

type OrderService interface {
	CreateOrder(ctx context.Context, order *PurchaseOrder, actorID string) (*PurchaseOrder, error)
	GetOrder(ctx context.Context, id string) (*PurchaseOrder, *workflow.WorkflowInstance, error)
	ListOrders(ctx context.Context) ([]PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id string, order *PurchaseOrder) error
	DeleteOrder(ctx context.Context, id string) error

	// Submit starts the approval routed on the order's total amount.
	Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error)
	Withdraw(ctx context.Context, id, actorID, reason string) error
	// Resubmit re-evaluates routing against the current total, so an
	// order edited after rejection may activate a different level set.
	Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error)

	ExportExcel(ctx context.Context) ([]byte, error)
}

type OrderServiceImpl struct {
	Repo            OrderRepository
	WorkflowService workflow.WorkflowService
	ExportService   export.ExportService
	AuditService    audit.AuditService
}

func NewOrderService(
	repo OrderRepository,
	workflowService workflow.WorkflowService,
	exportService export.ExportService,
	auditService audit.AuditService,
) OrderService {
	return &OrderServiceImpl{
		Repo:            repo,
		WorkflowService: workflowService,
		ExportService:   exportService,
		AuditService:    auditService,
	}
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, order *PurchaseOrder, actorID string) (*PurchaseOrder, error) {
	if order.OrderNumber == "" {
		return nil, errors.New("order number is required")
	}
	if len(order.Lines) == 0 {
		return nil, errors.New("order needs at least one line")
	}

	order.ID = primitive.NewObjectID()
	order.TotalAmount = order.ComputeTotal()
	order.Status = common_models.DocumentStatusDraft
	order.CreatedBy = actorID
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, order); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "purchase_order", order.ID.Hex(), map[string]common_models.Change{
		"order_number": {New: order.OrderNumber},
		"total_amount": {New: order.TotalAmount},
	})

	return order, nil
}

func (s *OrderServiceImpl) GetOrder(ctx context.Context, id string) (*PurchaseOrder, *workflow.WorkflowInstance, error) {
	order, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, nil
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeOrder, id)
	if err != nil {
		return nil, nil, err
	}

	if inst != nil && order.Status == common_models.DocumentStatusInApproval {
		if synced := documentStatusFor(inst.Status); synced != order.Status {
			order.Status = synced
			order.UpdatedAt = time.Now()
			if err := s.Repo.Update(ctx, id, order); err != nil {
				return nil, nil, err
			}
		}
	}

	return order, inst, nil
}

func (s *OrderServiceImpl) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.Repo.List(ctx)
}

func (s *OrderServiceImpl) UpdateOrder(ctx context.Context, id string, order *PurchaseOrder) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("order not found")
	}
	if existing.Status == common_models.DocumentStatusInApproval || existing.Status == common_models.DocumentStatusApproved {
		return fmt.Errorf("order cannot be edited while %s", existing.Status)
	}

	order.TotalAmount = order.ComputeTotal()
	order.Status = existing.Status
	order.WorkflowInstanceID = existing.WorkflowInstanceID
	order.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, id, order); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "purchase_order", id, map[string]common_models.Change{
		"total_amount": {Old: existing.TotalAmount, New: order.TotalAmount},
	})

	return nil
}

func (s *OrderServiceImpl) DeleteOrder(ctx context.Context, id string) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("order not found")
	}
	if existing.Status != common_models.DocumentStatusDraft {
		return errors.New("only draft orders can be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "purchase_order", id, nil)
	return nil
}

func (s *OrderServiceImpl) Submit(ctx context.Context, id string) (*workflow.WorkflowInstance, error) {
	order, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order not found")
	}
	if order.Status != common_models.DocumentStatusDraft {
		return nil, fmt.Errorf("order is %s, only drafts can be submitted", order.Status)
	}

	inst, err := s.WorkflowService.Start(ctx, workflow.DocumentTypeOrder, id, order.TotalAmount)
	if err != nil {
		return nil, err
	}

	order.Status = common_models.DocumentStatusInApproval
	order.WorkflowInstanceID = inst.ID.Hex()
	order.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, order); err != nil {
		return nil, err
	}

	return inst, nil
}

func (s *OrderServiceImpl) Withdraw(ctx context.Context, id, actorID, reason string) error {
	order, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New("order not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeOrder, id)
	if err != nil {
		return err
	}
	if inst == nil {
		return errors.New("order has no approval in progress")
	}

	if _, err := s.WorkflowService.Cancel(ctx, inst.ID.Hex(), actorID, reason, inst.Version); err != nil {
		return err
	}

	order.Status = common_models.DocumentStatusWithdrawn
	order.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, id, order)
}

func (s *OrderServiceImpl) Resubmit(ctx context.Context, id, actorID string) (*workflow.WorkflowInstance, error) {
	order, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order not found")
	}

	inst, err := s.WorkflowService.GetInstanceByDocument(ctx, workflow.DocumentTypeOrder, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errors.New("order has no approval to resubmit")
	}

	total := order.TotalAmount
	replacement, err := s.WorkflowService.Resubmit(ctx, inst.ID.Hex(), actorID, &total)
	if err != nil {
		return nil, err
	}

	order.Status = common_models.DocumentStatusInApproval
	order.WorkflowInstanceID = replacement.ID.Hex()
	order.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, id, order); err != nil {
		return nil, err
	}

	return replacement, nil
}

func (s *OrderServiceImpl) ExportExcel(ctx context.Context) ([]byte, error) {
	orders, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	columns := []string{"order_number", "supplier_id", "currency", "total_amount", "status", "created_at"}
	rows := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, map[string]any{
			"order_number": o.OrderNumber,
			"supplier_id":  o.SupplierID,
			"currency":     o.Currency,
			"total_amount": o.TotalAmount,
			"status":       string(o.Status),
			"created_at":   o.CreatedAt,
		})
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "purchase_order", "", nil)

	return s.ExportService.ToExcel("PurchaseOrders", columns, rows)
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
