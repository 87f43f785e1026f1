package user

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListUsers)
	group.Get("/:id", h.controller.GetUser)
	group.Put("/:id", h.controller.UpdateUser)
	group.Delete("/:id", h.controller.DeleteUser)
	group.Post("/:id/roles", h.controller.AssignRoles)
}
