package workflow

import (
	"errors"

	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

func (c *WorkflowController) CreateDefinition(ctx *fiber.Ctx) error {
	var input WorkflowDefinition
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateDefinition(ctx.UserContext(), &input); err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(input)
}

func (c *WorkflowController) UpdateDefinition(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	var input WorkflowDefinition
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDefinition(ctx.UserContext(), id, &input); err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(fiber.Map{"message": "Definition updated successfully"})
}

func (c *WorkflowController) DeleteDefinition(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDefinition(ctx.UserContext(), ctx.Params("id")); err != nil {
		return respondError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *WorkflowController) GetDefinition(ctx *fiber.Ctx) error {
	def, err := c.Service.GetDefinition(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	if def == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Definition not found"})
	}
	return ctx.JSON(def)
}

func (c *WorkflowController) ListDefinitions(ctx *fiber.Ctx) error {
	defs, err := c.Service.ListDefinitions(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(defs)
}

func (c *WorkflowController) StartInstance(ctx *fiber.Ctx) error {
	docType := DocumentType(ctx.Params("documentType"))

	var body struct {
		DocumentID   string  `json:"document_id"`
		RoutingValue float64 `json:"routing_value"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	inst, err := c.Service.Start(ctx.UserContext(), docType, body.DocumentID, body.RoutingValue)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *WorkflowController) GetInstance(ctx *fiber.Ctx) error {
	inst, err := c.Service.GetInstance(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	if inst == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instance not found"})
	}
	return ctx.JSON(inst)
}

// Decide records an approve/reject decision. A stale version is retried
// once against re-read state so routine optimistic-lock collisions stay
// invisible to the approver; a second collision surfaces as 409.
func (c *WorkflowController) Decide(ctx *fiber.Ctx) error {
	instanceID := ctx.Params("id")

	var body struct {
		Action          DecisionAction `json:"action"`
		Comment         string         `json:"comment"`
		ExpectedVersion int64          `json:"expected_version"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	expectedVersion := body.ExpectedVersion
	if expectedVersion == 0 {
		current, err := c.Service.GetInstance(ctx.UserContext(), instanceID)
		if err != nil {
			return respondError(ctx, err)
		}
		if current == nil {
			return respondError(ctx, ErrInstanceNotFound)
		}
		expectedVersion = current.Version
	}

	inst, err := c.Service.Decide(ctx.UserContext(), instanceID, claims.UserID, claims.Roles, body.Action, body.Comment, expectedVersion)
	if errors.Is(err, ErrStaleVersion) {
		current, ferr := c.Service.GetInstance(ctx.UserContext(), instanceID)
		if ferr != nil || current == nil {
			return respondError(ctx, err)
		}
		inst, err = c.Service.Decide(ctx.UserContext(), instanceID, claims.UserID, claims.Roles, body.Action, body.Comment, current.Version)
	}
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(inst)
}

func (c *WorkflowController) Resubmit(ctx *fiber.Ctx) error {
	instanceID := ctx.Params("id")

	var body struct {
		RoutingValue *float64 `json:"routing_value"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	inst, err := c.Service.Resubmit(ctx.UserContext(), instanceID, claims.UserID, body.RoutingValue)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(inst)
}

func (c *WorkflowController) Cancel(ctx *fiber.Ctx) error {
	instanceID := ctx.Params("id")

	var body struct {
		Reason          string `json:"reason"`
		ExpectedVersion int64  `json:"expected_version"`
	}
	_ = ctx.BodyParser(&body)

	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	expectedVersion := body.ExpectedVersion
	if expectedVersion == 0 {
		current, err := c.Service.GetInstance(ctx.UserContext(), instanceID)
		if err != nil {
			return respondError(ctx, err)
		}
		if current == nil {
			return respondError(ctx, ErrInstanceNotFound)
		}
		expectedVersion = current.Version
	}

	inst, err := c.Service.Cancel(ctx.UserContext(), instanceID, claims.UserID, body.Reason, expectedVersion)
	if errors.Is(err, ErrStaleVersion) {
		current, ferr := c.Service.GetInstance(ctx.UserContext(), instanceID)
		if ferr != nil || current == nil {
			return respondError(ctx, err)
		}
		inst, err = c.Service.Cancel(ctx.UserContext(), instanceID, claims.UserID, body.Reason, current.Version)
	}
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(inst)
}

func (c *WorkflowController) PendingForMe(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	instances, err := c.Service.PendingFor(ctx.UserContext(), claims.UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	if instances == nil {
		instances = []WorkflowInstance{}
	}
	return ctx.JSON(instances)
}

// respondError maps the engine's error taxonomy onto HTTP statuses.
func respondError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidDefinition):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrDefinitionNotFound), errors.Is(err, ErrInstanceNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrNotAuthorizedForLevel):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrDuplicatePendingInstance),
		errors.Is(err, ErrInstanceNotPending),
		errors.Is(err, ErrInstanceNotRejected),
		errors.Is(err, ErrStaleVersion),
		errors.Is(err, ErrDuplicateDecisionByRole):
		status = fiber.StatusConflict
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
