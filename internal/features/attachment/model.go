package attachment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment is a file stored on local disk and bound to a procurement
// document (supplier, purchase_order, material_quotation, pre_payment).
type Attachment struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OriginalFilename string             `json:"original_filename" bson:"original_filename"`
	URL              string             `json:"url" bson:"url"`
	Path             string             `json:"path" bson:"path"`
	Size             int64              `json:"size" bson:"size"`
	MimeType         string             `json:"mime_type" bson:"mime_type"`
	DocumentType     string             `json:"document_type" bson:"document_type"`
	DocumentID       string             `json:"document_id" bson:"document_id"`
	UploadedBy       string             `json:"uploaded_by" bson:"uploaded_by"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}
