package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jpark/addressbook-backend/internal/middleware"
	ws "github.com/jpark/addressbook-backend/internal/websocket"
)

// EventsController upgrades HTTP connections to WebSocket subscriptions on
// the address change feed.
type EventsController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewEventsController(hub *ws.Hub, allowedOrigins []string) *EventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &EventsController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Non-browser clients send no Origin header
					return true
				}
				return allowed["*"] || allowed[origin]
			},
		},
	}
}

// Subscribe joins the address change feed
// GET /api/v1/ws/addresses
func (ctrl *EventsController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, nil)
		return
	}

	client := ws.NewClient(ctrl.hub, conn)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket subscriber connected", map[string]interface{}{
		"subscribers": ctrl.hub.ClientCount(),
	})
}
