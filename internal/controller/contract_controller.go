package controller

import (
	"idea-contract-be/internal/dto"
	"idea-contract-be/internal/pkg/serverutils"
	"idea-contract-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContractController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Categorize(ctx *fiber.Ctx) error
	ScoreAll(ctx *fiber.Ctx) error
	ForceScore(ctx *fiber.Ctx) error
}

type contractController struct {
	service       service.IContractService
	jwtMiddleware fiber.Handler
}

// NewContractController guards reviewer routes with jwtMiddleware.
func NewContractController(service service.IContractService, jwtMiddleware fiber.Handler) IContractController {
	return &contractController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *contractController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contract/v1")
	h.Get("contracts", c.GetAll)
	h.Post("contracts", c.Create)
	h.Get("contracts/:session_id", c.Show)

	// reviewer actions
	h.Post("update-contract-status", c.jwtMiddleware, c.UpdateStatus)
	h.Post("categorize-contracts", c.jwtMiddleware, c.Categorize)
	h.Post("score-all-contracts", c.jwtMiddleware, c.ScoreAll)
	h.Post("force-score-contracts", c.jwtMiddleware, c.ForceScore)
}

func (c *contractController) GetAll(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)

	res, err := c.service.GetAll(ctx.UserContext(), limit, ctx.Query("status"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all contracts", res))
}

func (c *contractController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateContractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.Response[*dto.CreateContractResponse]{
		Success: true,
		Code:    fiber.StatusCreated,
		Message: "Contract saved, scoring queued",
		Data:    res,
	})
}

func (c *contractController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetBySession(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get contract", res))
}

func (c *contractController) UpdateStatus(ctx *fiber.Ctx) error {
	var req dto.UpdateContractStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpdateStatus(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Contract status updated", nil))
}

func (c *contractController) Categorize(ctx *fiber.Ctx) error {
	res, err := c.service.CategorizeAll(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Contracts categorized", res))
}

func (c *contractController) ScoreAll(ctx *fiber.Ctx) error {
	res, err := c.service.ScoreAll(ctx.UserContext(), false)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Unscored contracts scored", res))
}

func (c *contractController) ForceScore(ctx *fiber.Ctx) error {
	res, err := c.service.ScoreAll(ctx.UserContext(), true)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("All contracts rescored", res))
}
