package supplier

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SupplierApi struct {
	controller *SupplierController
	config     *config.Config
}

func NewSupplierApi(controller *SupplierController, config *config.Config) *SupplierApi {
	return &SupplierApi{
		controller: controller,
		config:     config,
	}
}

func (h *SupplierApi) Setup(app *fiber.App) {
	group := app.Group("/api/suppliers", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.Create)
	group.Get("/", h.controller.List)
	group.Get("/export", h.controller.Export)
	group.Get("/:id", h.controller.Get)
	group.Put("/:id", h.controller.Update)
	group.Delete("/:id", h.controller.Delete)

	group.Post("/:id/submit", h.controller.Submit)
	group.Post("/:id/withdraw", h.controller.Withdraw)
	group.Post("/:id/resubmit", h.controller.Resubmit)
}
