package handler

import (
	"idea-contract-be/internal/pkg/logger"
	internalWS "idea-contract-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionHandler streams the events of one drafting session over a WebSocket.
type SessionHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSessionHandler(hub *internalWS.Hub, log logger.ILogger) *SessionHandler {
	return &SessionHandler{hub: hub, logger: log}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/contract/v1/ws/:session_id", h.ServeWs)
}

// ServeWs upgrades the request and attaches it to the session's watchers.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session id"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("SessionHandler", "Watcher connected", map[string]interface{}{"session_id": sessionID})
		internalWS.Serve(h.hub, conn, sessionID)
		h.logger.Info("SessionHandler", "Watcher disconnected", map[string]interface{}{"session_id": sessionID})
	})(c)
}
