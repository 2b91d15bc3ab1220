package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"roomchat/auth"
	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/services"
)

// WSHandler upgrades /ws requests and binds the connection lifetime to
// the session registry and presence tracker. One connection serves one
// room plus the user's private notification topic.
type WSHandler struct {
	log       *slog.Logger
	upgrader  websocket.Upgrader
	tokens    *auth.TokenManager
	hub       *broadcast.Hub
	registry  contract.SessionRegistry
	presence  *services.PresenceService
	queueSize int
}

func NewWSHandler(log *slog.Logger, tokens *auth.TokenManager, hub *broadcast.Hub,
	registry contract.SessionRegistry, presence *services.PresenceService, queueSize int) *WSHandler {
	return &WSHandler{
		log:    log,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		hub:       hub,
		registry:  registry,
		presence:  presence,
		queueSize: queueSize,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	rawRoom, err := strconv.ParseInt(r.URL.Query().Get("roomId"), 10, 64)
	if err != nil {
		http.Error(w, "roomId must be an integer", http.StatusBadRequest)
		return
	}
	roomID := domain.RoomID(rawRoom)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(fmt.Sprintf("WebSocket upgrade failed: %v", err))
		return
	}

	sessionID := uuid.NewString()
	client := broadcast.NewClient(sessionID, conn, h.queueSize)

	h.hub.Subscribe(client, broadcast.RoomPublicTopic(roomID))
	h.hub.Subscribe(client, broadcast.RoomUsersTopic(roomID))
	h.hub.Subscribe(client, broadcast.RoomPreviewsTopic(roomID))
	h.hub.Subscribe(client, broadcast.UserNotificationsTopic(userID))

	h.registry.Register(roomID, userID, sessionID)
	h.presence.HandleConnect(r.Context(), sessionID, userID)

	go client.WritePump()
	// ReadPump blocks until the peer disconnects; teardown runs inline.
	client.ReadPump()

	h.hub.Detach(client)
	client.Close()
	h.registry.Unregister(sessionID)
	// The request context dies with the connection; fan-out still has to
	// reach the user's friends.
	h.presence.HandleDisconnect(context.Background(), sessionID)
}
