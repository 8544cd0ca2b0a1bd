package ws

import (
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
)

// ServeWS upgrades the request to a WebSocket connection. Browsers
// cannot set headers on the upgrade request, so the access token comes
// in as a ?token= query parameter.
func ServeWS(hub *Hub, authService *authsvc.Service, gate RoomGate, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := authService.ValidateAccessToken(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Debug("ws accept failed", zap.Error(err))
			return
		}

		client := NewClient(hub, conn, gate, logger, claims.UserID)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
