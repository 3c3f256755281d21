package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"neuroviz-server/internal/pkg/logger"
	internalWS "neuroviz-server/internal/websocket"
)

// EventHandler exposes the operator console's websocket event feed.
type EventHandler struct {
	hub    *internalWS.Hub
	secret string
	logger logger.ILogger
}

func NewEventHandler(hub *internalWS.Hub, secret string, log logger.ILogger) *EventHandler {
	return &EventHandler{
		hub:    hub,
		secret: secret,
		logger: log,
	}
}

// ServeWs upgrades the connection after checking the pairing secret. The
// secret travels as a query parameter because browser WebSocket clients
// cannot set headers on the handshake.
func (h *EventHandler) ServeWs(c *fiber.Ctx) error {
	provided := c.Query("secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		h.logger.Warn("events", "rejected ws handshake with bad secret", map[string]interface{}{"ip": c.IP()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing secret"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			internalWS.ServeWs(h.hub, conn)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *EventHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/events", h.ServeWs)
}
