package attachment

import (
	"context"
	"fmt"
	"os"
)

const maxAttachmentSize = 20 << 20

var knownDocumentTypes = map[string]bool{
	"supplier":           true,
	"purchase_order":     true,
	"material_quotation": true,
	"pre_payment":        true,
}

const maxAttachmentsPerDocument = 20

type AttachmentService interface {
	ListByDocument(ctx context.Context, documentType, documentID string) ([]*Attachment, error)
	Get(ctx context.Context, id string) (*Attachment, error)
	Save(ctx context.Context, attachment *Attachment) error
	Delete(ctx context.Context, id, userID string) error
	ValidateUpload(ctx context.Context, documentType, documentID string, size int64) error
}

type AttachmentServiceImpl struct {
	Repo AttachmentRepository
}

func NewAttachmentService(repo AttachmentRepository) AttachmentService {
	return &AttachmentServiceImpl{Repo: repo}
}

func (s *AttachmentServiceImpl) ListByDocument(ctx context.Context, documentType, documentID string) ([]*Attachment, error) {
	return s.Repo.FindByDocument(ctx, documentType, documentID)
}

func (s *AttachmentServiceImpl) Get(ctx context.Context, id string) (*Attachment, error) {
	return s.Repo.Get(ctx, id)
}

func (s *AttachmentServiceImpl) Save(ctx context.Context, attachment *Attachment) error {
	return s.Repo.Save(ctx, attachment)
}

// Delete removes the attachment metadata and the file on disk. Only the
// uploader may delete.
func (s *AttachmentServiceImpl) Delete(ctx context.Context, id, userID string) error {
	attachment, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if attachment == nil {
		return fmt.Errorf("attachment not found")
	}
	if attachment.UploadedBy != userID {
		return fmt.Errorf("unauthorized: you can only delete your own attachments")
	}

	if err := os.Remove(attachment.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file from disk: %w", err)
	}

	return s.Repo.Delete(ctx, id)
}

func (s *AttachmentServiceImpl) ValidateUpload(ctx context.Context, documentType, documentID string, size int64) error {
	if !knownDocumentTypes[documentType] {
		return fmt.Errorf("unknown document type: %s", documentType)
	}
	if documentID == "" {
		return fmt.Errorf("document id is required")
	}
	if size > maxAttachmentSize {
		return fmt.Errorf("file too large (max %dMB)", maxAttachmentSize>>20)
	}

	count, err := s.Repo.CountByDocument(ctx, documentType, documentID)
	if err != nil {
		return fmt.Errorf("failed to check attachment count: %w", err)
	}
	if count >= maxAttachmentsPerDocument {
		return fmt.Errorf("maximum attachments per document reached (%d)", maxAttachmentsPerDocument)
	}

	return nil
}
