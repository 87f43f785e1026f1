package payment

import (
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	Service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{Service: service}
}

func (c *PaymentController) Create(ctx *fiber.Ctx) error {
	var input PrePayment
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	created, err := c.Service.CreatePayment(ctx.UserContext(), &input, claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *PaymentController) Get(ctx *fiber.Ctx) error {
	payment, inst, err := c.Service.GetPayment(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if payment == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	return ctx.JSON(fiber.Map{"payment": payment, "approval": inst})
}

func (c *PaymentController) List(ctx *fiber.Ctx) error {
	payments, err := c.Service.ListPayments(ctx.UserContext(), ctx.Query("order_id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(payments)
}

func (c *PaymentController) Update(ctx *fiber.Ctx) error {
	var input PrePayment
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdatePayment(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Payment updated successfully"})
}

func (c *PaymentController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeletePayment(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *PaymentController) Submit(ctx *fiber.Ctx) error {
	inst, err := c.Service.Submit(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inst)
}

func (c *PaymentController) Withdraw(ctx *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.Withdraw(ctx.UserContext(), ctx.Params("id"), claims.UserID, body.Reason); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Payment withdrawn from approval"})
}

func (c *PaymentController) Resubmit(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	inst, err := c.Service.Resubmit(ctx.UserContext(), ctx.Params("id"), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *PaymentController) Export(ctx *fiber.Ctx) error {
	data, err := c.Service.ExportExcel(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="pre_payments.xlsx"`)
	return ctx.Send(data)
}
