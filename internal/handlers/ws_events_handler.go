package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/phocus/phocus/internal/events"
	jwtutil "github.com/phocus/phocus/pkg/jwt"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler streams engine events (goals changed, period rollover)
// to connected clients. Events carry no domain payload; clients re-fetch
// on receipt.
type EventsHandler struct {
	Bus       *events.Bus
	JWTSecret string
}

func NewEventsHandler(bus *events.Bus, jwtSecret string) *EventsHandler {
	return &EventsHandler{Bus: bus, JWTSecret: jwtSecret}
}

// EventsWebSocketHandler upgrades the connection and relays bus events.
func (h *EventsHandler) EventsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	subID, ch := h.Bus.Subscribe()
	logrus.WithFields(logrus.Fields{
		"userID": claims.UserID,
		"subID":  subID,
	}).Info("Event feed client connected")

	// Drain reads so close frames are processed; the feed is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Bus.Unsubscribe(subID)
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for event := range ch {
			if err := conn.WriteJSON(event); err != nil {
				h.Bus.Unsubscribe(subID)
				return
			}
		}
	}()
}
