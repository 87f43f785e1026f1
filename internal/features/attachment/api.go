package attachment

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AttachmentApi struct {
	controller *AttachmentController
	config     *config.Config
}

func NewAttachmentApi(controller *AttachmentController, config *config.Config) *AttachmentApi {
	return &AttachmentApi{
		controller: controller,
		config:     config,
	}
}

func (h *AttachmentApi) Setup(app *fiber.App) {
	group := app.Group("/api/attachments", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/upload", h.controller.Upload)
	group.Get("/download/:id", h.controller.Download)
	group.Get("/:documentType/:documentId", h.controller.ListByDocument)
	group.Delete("/:id", h.controller.Delete)
}
