package order

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrderApi struct {
	controller *OrderController
	config     *config.Config
}

func NewOrderApi(controller *OrderController, config *config.Config) *OrderApi {
	return &OrderApi{
		controller: controller,
		config:     config,
	}
}

func (h *OrderApi) Setup(app *fiber.App) {
	group := app.Group("/api/orders", middleware.AuthMiddleware(h.config.SkipAuth))

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
