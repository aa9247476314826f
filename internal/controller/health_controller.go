package controller

import (
	"context"
	"time"

	"idea-contract-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	db Pinger
}

// NewHealthController accepts a nil db when the catalog is disabled.
func NewHealthController(db Pinger) IHealthController {
	return &healthController{db: db}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{Status: "healthy", Database: "disabled", Timestamp: time.Now().UTC()}

	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()
		if err := c.db.PingContext(pingCtx); err != nil {
			res.Status = "degraded"
			res.Database = "unreachable"
		} else {
			res.Database = "connected"
		}
	}

	return ctx.JSON(res)
}
