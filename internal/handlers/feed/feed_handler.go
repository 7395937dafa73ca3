package feed

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"service-admin/internal/middleware"
	"service-admin/internal/pkg/response"
	ws "service-admin/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the admin console domain is fixed
		return true
	},
}

// Handler serves the live audit event feed over WebSocket.
type Handler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewHandler(hub *ws.Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Connect upgrades an authenticated request to a WebSocket connection and
// attaches it to the hub. Authentication has already run in the middleware;
// clients may pass the token via a "token" query parameter.
func (h *Handler) Connect(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()))
		return
	}

	client := ws.NewClient(h.hub, conn, adminID, h.logger)
	h.hub.Register(client)

	h.logger.Info("feed client connected",
		zap.Int64("admin_id", adminID),
		zap.String("ip", c.ClientIP()))

	go client.WritePump()
	go client.ReadPump()
}

// Stats reports feed connection counts.
func (h *Handler) Stats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}

	response.Success(c, http.StatusOK, "feed stats", stats)
}
