package supplier

import (
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type SupplierController struct {
	Service SupplierService
}

func NewSupplierController(service SupplierService) *SupplierController {
	return &SupplierController{Service: service}
}

func (c *SupplierController) Create(ctx *fiber.Ctx) error {
	var input Supplier
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	created, err := c.Service.CreateSupplier(ctx.UserContext(), &input, claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *SupplierController) Get(ctx *fiber.Ctx) error {
	supplier, inst, err := c.Service.GetSupplier(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if supplier == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Supplier not found"})
	}
	return ctx.JSON(fiber.Map{"supplier": supplier, "approval": inst})
}

func (c *SupplierController) List(ctx *fiber.Ctx) error {
	suppliers, err := c.Service.ListSuppliers(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(suppliers)
}

func (c *SupplierController) Update(ctx *fiber.Ctx) error {
	var input Supplier
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateSupplier(ctx.UserContext(), ctx.Params("id"), &input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Supplier updated successfully"})
}

func (c *SupplierController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteSupplier(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *SupplierController) Submit(ctx *fiber.Ctx) error {
	inst, err := c.Service.Submit(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(inst)
}

func (c *SupplierController) Withdraw(ctx *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.Withdraw(ctx.UserContext(), ctx.Params("id"), claims.UserID, body.Reason); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Supplier withdrawn from approval"})
}

func (c *SupplierController) Resubmit(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	inst, err := c.Service.Resubmit(ctx.UserContext(), ctx.Params("id"), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *SupplierController) Export(ctx *fiber.Ctx) error {
	data, err := c.Service.ExportExcel(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="suppliers.xlsx"`)
	return ctx.Send(data)
}
