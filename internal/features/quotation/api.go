package quotation

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type QuotationApi struct {
	controller *QuotationController
	config     *config.Config
}

func NewQuotationApi(controller *QuotationController, config *config.Config) *QuotationApi {
	return &QuotationApi{
		controller: controller,
		config:     config,
	}
}

func (h *QuotationApi) Setup(app *fiber.App) {
	group := app.Group("/api/quotations", middleware.AuthMiddleware(h.config.SkipAuth))

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
