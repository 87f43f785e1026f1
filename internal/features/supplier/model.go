package supplier

import (
	"time"

	common_models "go-procure/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supplier onboarding goes through approval before the supplier becomes
// usable on orders; Status mirrors the workflow outcome.
type Supplier struct {
	ID                 primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	Code               string                       `bson:"code" json:"code"`
	Name               string                       `bson:"name" json:"name"`
	ContactName        string                       `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	Email              string                       `bson:"email,omitempty" json:"email,omitempty"`
	Phone              string                       `bson:"phone,omitempty" json:"phone,omitempty"`
	Address            string                       `bson:"address,omitempty" json:"address,omitempty"`
	TaxNumber          string                       `bson:"tax_number,omitempty" json:"tax_number,omitempty"`
	BankAccount        string                       `bson:"bank_account,omitempty" json:"bank_account,omitempty"`
	Status             common_models.DocumentStatus `bson:"status" json:"status"`
	WorkflowInstanceID string                       `bson:"workflow_instance_id,omitempty" json:"workflow_instance_id,omitempty"`
	CreatedBy          string                       `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                    `bson:"updated_at" json:"updated_at"`
}
