package order

import (
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	Service OrderService
}

func NewOrderController(service OrderService) *OrderController {
	return &OrderController{Service: service}
}

func (c *OrderController) Create(ctx *fiber.Ctx) error {
	var input PurchaseOrder
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	created, err := c.Service.CreateOrder(ctx.UserContext(), &input, claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *OrderController) Get(ctx *fiber.Ctx) error {
	order, inst, err := c.Service.GetOrder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if order == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return ctx.JSON(fiber.Map{"order": order, "approval": inst})
}

func (c *OrderController) List(ctx *fiber.Ctx) error {
	orders, err := c.Service.ListOrders(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(orders)
}

func (c *OrderController) Update(ctx *fiber.Ctx) error {
	var input PurchaseOrder
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateOrder(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Order updated successfully"})
}

func (c *OrderController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteOrder(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *OrderController) Submit(ctx *fiber.Ctx) error {
	inst, err := c.Service.Submit(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inst)
}

func (c *OrderController) Withdraw(ctx *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.Withdraw(ctx.UserContext(), ctx.Params("id"), claims.UserID, body.Reason); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Order withdrawn from approval"})
}

func (c *OrderController) Resubmit(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	inst, err := c.Service.Resubmit(ctx.UserContext(), ctx.Params("id"), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *OrderController) Export(ctx *fiber.Ctx) error {
	data, err := c.Service.ExportExcel(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="purchase_orders.xlsx"`)
	return ctx.Send(data)
}
