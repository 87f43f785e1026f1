package quotation

import (
	"time"

	common_models "go-procure/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaterialQuotation is a supplier's quoted price for a material. The
// quoted amount drives approval routing.
type MaterialQuotation struct {
	ID                 primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	QuotationNumber    string                       `bson:"quotation_number" json:"quotation_number"`
	SupplierID         string                       `bson:"supplier_id" json:"supplier_id"`
	MaterialCode       string                       `bson:"material_code" json:"material_code"`
	MaterialName       string                       `bson:"material_name" json:"material_name"`
	Quantity           float64                      `bson:"quantity" json:"quantity"`
	UnitPrice          float64                      `bson:"unit_price" json:"unit_price"`
	QuotedAmount       float64                      `bson:"quoted_amount" json:"quoted_amount"`
	Currency           string                       `bson:"currency" json:"currency"`
	ValidUntil         *time.Time                   `bson:"valid_until,omitempty" json:"valid_until,omitempty"`
	Remark             string                       `bson:"remark,omitempty" json:"remark,omitempty"`
	Status             common_models.DocumentStatus `bson:"status" json:"status"`
	WorkflowInstanceID string                       `bson:"workflow_instance_id,omitempty" json:"workflow_instance_id,omitempty"`
	CreatedBy          string                       `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `bson:"updated_at" json:"updated_at"`
}
