package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names double as approver-role identifiers in workflow levels
// (e.g. procurement_manager, cost_center, general_manager).
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	IsSystem    bool               `json:"is_system" bson:"is_system"` // Prevent deletion of system roles
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
