package order

import (
	"time"

	common_models "go-procure/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderLine struct {
	MaterialCode string  `bson:"material_code" json:"material_code"`
	Description  string  `bson:"description,omitempty" json:"description,omitempty"`
	Quantity     float64 `bson:"quantity" json:"quantity"`
	UnitPrice    float64 `bson:"unit_price" json:"unit_price"`
}

// PurchaseOrder routes through approval on its total amount: higher
// totals activate more approval levels.
type PurchaseOrder struct {
	ID                 primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	OrderNumber        string                       `bson:"order_number" json:"order_number"`
	SupplierID         string                       `bson:"supplier_id" json:"supplier_id"`
	Currency           string                       `bson:"currency" json:"currency"`
	Lines              []OrderLine                  `bson:"lines" json:"lines"`
	TotalAmount        float64                      `bson:"total_amount" json:"total_amount"`
	ExpectedDelivery   *time.Time                   `bson:"expected_delivery,omitempty" json:"expected_delivery,omitempty"`
	Remark             string                       `bson:"remark,omitempty" json:"remark,omitempty"`
	Status             common_models.DocumentStatus `bson:"status" json:"status"`
	WorkflowInstanceID string                       `bson:"workflow_instance_id,omitempty" json:"workflow_instance_id,omitempty"`
	CreatedBy          string                       `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `bson:"updated_at" json:"updated_at"`
}

// ComputeTotal recalculates the order total from its lines.
func (o *PurchaseOrder) ComputeTotal() float64 {
	var total float64
	for _, line := range o.Lines {
		total += line.Quantity * line.UnitPrice
	}
	return total
}
