package controller

import (
	"encoding/json"

	"idea-contract-be/internal/dto"
	"idea-contract-be/internal/pkg/serverutils"
	"idea-contract-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDraftingController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type draftingController struct {
	service service.IDraftingService
}

func NewDraftingController(service service.IDraftingService) IDraftingController {
	return &draftingController{service: service}
}

func (c *draftingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contract/v1")
	h.Post("chat", c.Chat)
}

// Chat answers with a single server-sent event frame carrying the next
// suspension, the terminal document or an error event.
func (c *draftingController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	frame, err := json.Marshal(res)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	return ctx.SendString("data: " + string(frame) + "\n\n")
}
