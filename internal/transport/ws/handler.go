package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"classpulse/internal/model"
	"classpulse/internal/service"
	"classpulse/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections to the live broadcast topic.
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	store   *store.Store
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, st *store.Store) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		store:   st,
	}
}

// LiveWS handles GET /v1/ws/live
func (h *Handler) LiveWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := NewClient()
	h.hub.Register(client)

	log.Printf("Client %s (%s) connected to live channel", claims.UserID, claims.Role)

	go h.writePump(wsConn, client)
	go h.readPump(wsConn, client)
}

// readPump consumes inbound messages. Snapshots are stamped with the server
// receipt time, recorded in the live table and echoed to every subscriber,
// the sender included. Malformed payloads are dropped and counted, never
// escalated; the relay has no caller to report to.
func (h *Handler) readPump(wsConn *websocket.Conn, client *Client) {
	defer func() {
		h.hub.Unregister(client)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.NoteDropped()
			continue
		}

		switch msg.Type {
		case MsgSnapshot:
			var snap model.LiveSnapshot
			if err := json.Unmarshal(msg.Payload, &snap); err != nil || snap.StudentID == "" {
				h.hub.NoteDropped()
				continue
			}
			snap.ServerTS = time.Now()
			h.store.SetLive(snap)
			h.hub.Broadcast(MsgSnapshot, snap)

		case MsgPing:
			// Liveness probe, answered to the sender only.
			pong, _ := json.Marshal(&Message{Type: MsgPong})
			select {
			case client.Send <- pong:
			default:
			}

		default:
			h.hub.NoteDropped()
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
