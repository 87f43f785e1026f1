package payment

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentApi struct {
	controller *PaymentController
	config     *config.Config
}

func NewPaymentApi(controller *PaymentController, config *config.Config) *PaymentApi {
	return &PaymentApi{
		controller: controller,
		config:     config,
	}
}

func (h *PaymentApi) Setup(app *fiber.App) {
	group := app.Group("/api/payments", middleware.AuthMiddleware(h.config.SkipAuth))

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
