package handler

import (
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/internal/pkg/serverutils"
	"storyspark-be/internal/service"
	internalWS "storyspark-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SnapshotEvent marks the status frame sent when a client connects.
const SnapshotEvent = "SNAPSHOT"

type StatusHandler struct {
	sessions service.ISessionService
	hub      *internalWS.Hub
	secret   string
	logger   logger.ILogger
}

func NewStatusHandler(sessions service.ISessionService, hub *internalWS.Hub, secret string, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		sessions: sessions,
		hub:      hub,
		secret:   secret,
		logger:   log,
	}
}

// ServeWs upgrades to the status stream of the token's session. The token
// comes from the "token" query parameter (browsers) or a Bearer header.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := serverutils.TokenFromRequest(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	sessionID, err := serverutils.ParseSessionToken(h.secret, tokenStr)
	if err != nil {
		h.logger.Warn("StatusHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	snapshot, err := h.sessions.Get(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	first := &internalWS.Message{
		Type: service.MessageStatus,
		Data: service.StatusFrame{Event: SnapshotEvent, Session: snapshot},
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StatusHandler", "Starting status stream", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, first)
		h.logger.Info("StatusHandler", "Status stream ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
