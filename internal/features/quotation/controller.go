package quotation

import (
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type QuotationController struct {
	Service QuotationService
}

func NewQuotationController(service QuotationService) *QuotationController {
	return &QuotationController{Service: service}
}

func (c *QuotationController) Create(ctx *fiber.Ctx) error {
	var input MaterialQuotation
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	created, err := c.Service.CreateQuotation(ctx.UserContext(), &input, claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *QuotationController) Get(ctx *fiber.Ctx) error {
	quotation, inst, err := c.Service.GetQuotation(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if quotation == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quotation not found"})
	}
	return ctx.JSON(fiber.Map{"quotation": quotation, "approval": inst})
}

func (c *QuotationController) List(ctx *fiber.Ctx) error {
	quotations, err := c.Service.ListQuotations(ctx.UserContext(), ctx.Query("supplier_id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(quotations)
}

func (c *QuotationController) Update(ctx *fiber.Ctx) error {
	var input MaterialQuotation
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateQuotation(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Quotation updated successfully"})
}

func (c *QuotationController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteQuotation(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *QuotationController) Submit(ctx *fiber.Ctx) error {
	inst, err := c.Service.Submit(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inst)
}

func (c *QuotationController) Withdraw(ctx *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.Withdraw(ctx.UserContext(), ctx.Params("id"), claims.UserID, body.Reason); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Quotation withdrawn from approval"})
}

func (c *QuotationController) Resubmit(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	inst, err := c.Service.Resubmit(ctx.UserContext(), ctx.Params("id"), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *QuotationController) Export(ctx *fiber.Ctx) error {
	data, err := c.Service.ExportExcel(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="material_quotations.xlsx"`)
	return ctx.Send(data)
}
