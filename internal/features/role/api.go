package role

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	config     *config.Config
}

func NewRoleApi(controller *RoleController, config *config.Config) *RoleApi {
	return &RoleApi{
		controller: controller,
		config:     config,
	}
}

func (h *RoleApi) Setup(app *fiber.App) {
	group := app.Group("/api/roles", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.CreateRole)
	group.Get("/", h.controller.ListRoles)
	group.Get("/:id", h.controller.GetRole)
	group.Put("/:id", h.controller.UpdateRole)
	group.Delete("/:id", h.controller.DeleteRole)
}
