package attachment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-procure/internal/config"
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AttachmentController struct {
	UploadDir string
	Service   AttachmentService
}

func NewAttachmentController(service AttachmentService, cfg *config.Config) *AttachmentController {
	if _, err := os.Stat(cfg.FSPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.FSPath, 0755)
	}
	return &AttachmentController{
		UploadDir: cfg.FSPath,
		Service:   service,
	}
}

func (c *AttachmentController) Upload(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Error retrieving file"})
	}

	documentType := ctx.FormValue("document_type")
	documentID := ctx.FormValue("document_id")
	description := ctx.FormValue("description")

	if err := c.Service.ValidateUpload(ctx.UserContext(), documentType, documentID, file.Size); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	originalName := filepath.Base(file.Filename)
	uniqueName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), originalName)
	uniqueName = strings.ReplaceAll(uniqueName, " ", "_")

	dstPath := filepath.Join(c.UploadDir, uniqueName)

	if err := ctx.SaveFile(file, dstPath); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving file to disk"})
	}

	attachment := &Attachment{
		OriginalFilename: originalName,
		Path:             dstPath,
		URL:              "/api/attachments/download/" + uniqueName,
		Size:             file.Size,
		MimeType:         file.Header.Get("Content-Type"),
		DocumentType:     documentType,
		DocumentID:       documentID,
		UploadedBy:       claims.UserID,
		Description:      description,
		CreatedAt:        time.Now(),
	}

	if err := c.Service.Save(ctx.UserContext(), attachment); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving attachment metadata"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(attachment)
}

func (c *AttachmentController) ListByDocument(ctx *fiber.Ctx) error {
	attachments, err := c.Service.ListByDocument(ctx.UserContext(), ctx.Params("documentType"), ctx.Params("documentId"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error retrieving attachments"})
	}
	return ctx.JSON(attachments)
}

func (c *AttachmentController) Download(ctx *fiber.Ctx) error {
	attachment, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil || attachment == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attachment not found"})
	}
	return ctx.Download(attachment.Path, attachment.OriginalFilename)
}

func (c *AttachmentController) Delete(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.Delete(ctx.UserContext(), ctx.Params("id"), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Attachment deleted successfully"})
}
