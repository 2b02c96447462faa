package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/auto-service/hub"
	"github.com/yeremiapane/auto-service/utils"
)

type WSController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWSController accepts upgrades from allowedOrigin only; "*" accepts any.
func NewWSController(h *hub.Hub, allowedOrigin string) *WSController {
	return &WSController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// Connect -> endpoint WebSocket untuk notifikasi realtime
func (wc *WSController) Connect(c *gin.Context) {
	accountID, role := currentAccount(c)
	if accountID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed for account %d: %v", accountID, err)
		return
	}
	wc.Hub.RegisterClient(ws, accountID, role)

	// Clients only listen; reads just detect the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	wc.Hub.UnregisterClient(ws)
}
