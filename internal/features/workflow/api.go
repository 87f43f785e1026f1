package workflow

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller *WorkflowController
	config     *config.Config
}

func NewWorkflowApi(controller *WorkflowController, config *config.Config) *WorkflowApi {
	return &WorkflowApi{
		controller: controller,
		config:     config,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	// Definition management
	workflows := app.Group("/api/workflows", middleware.AuthMiddleware(h.config.SkipAuth))

	workflows.Post("/", h.controller.CreateDefinition)
	workflows.Get("/", h.controller.ListDefinitions)
	workflows.Get("/:id", h.controller.GetDefinition)
	workflows.Put("/:id", h.controller.UpdateDefinition)
	workflows.Delete("/:id", h.controller.DeleteDefinition)

	workflows.Post("/:documentType/instances", h.controller.StartInstance)

	// Instance lifecycle
	instances := app.Group("/api/instances", middleware.AuthMiddleware(h.config.SkipAuth))

	instances.Get("/pending/me", h.controller.PendingForMe)
	instances.Get("/:id", h.controller.GetInstance)
	instances.Post("/:id/decisions", h.controller.Decide)
	instances.Post("/:id/resubmit", h.controller.Resubmit)
	instances.Post("/:id/cancel", h.controller.Cancel)
}
