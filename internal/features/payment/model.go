package payment

import (
	"time"

	common_models "go-procure/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrePayment is an advance payment request against a purchase order.
// Approval routing uses the payment amount.
type PrePayment struct {
	ID                 primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	PaymentNumber      string                       `bson:"payment_number" json:"payment_number"`
	OrderID            string                       `bson:"order_id" json:"order_id"`
	SupplierID         string                       `bson:"supplier_id" json:"supplier_id"`
	Amount             float64                      `bson:"amount" json:"amount"`
	Currency           string                       `bson:"currency" json:"currency"`
	DueDate            *time.Time                   `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Purpose            string                       `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Status             common_models.DocumentStatus `bson:"status" json:"status"`
	WorkflowInstanceID string                       `bson:"workflow_instance_id,omitempty" json:"workflow_instance_id,omitempty"`
	CreatedBy          string                       `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `bson:"updated_at" json:"updated_at"`
}
