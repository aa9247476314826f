package server

import (
	"idea-contract-be/internal/bootstrap"
	"idea-contract-be/internal/config"
	"idea-contract-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const bodyLimit = 2 * 1024 * 1024 // drafts are plain text

type Server struct {
	app       *fiber.App
	addr      string
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "idea-contract",
		BodyLimit: bodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
	}))
	if cfg.App.OtelEnabled {
		app.Use(otelfiber.Middleware())
	}
	app.Use(serverutils.RequestLogger(container.Logger))
	app.Use(serverutils.ErrorHandlerMiddleware())

	container.HealthController.RegisterRoutes(app)

	api := app.Group("/api")
	container.DraftingController.RegisterRoutes(api)
	container.ContractController.RegisterRoutes(api)
	container.SessionHandler.RegisterRoutes(api)

	return &Server{app: app, addr: ":" + cfg.App.Port, container: container}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Listening", map[string]interface{}{"addr": s.addr})
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
