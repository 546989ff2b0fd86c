package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

// Gateway upgrades authenticated HTTP requests into room sessions.
type Gateway struct {
	log      *slog.Logger
	auth     *auth.Authenticator
	registry *runtime.Registry
	events   contract.EventLog
	upgrader websocket.Upgrader
}

func NewGateway(
	log *slog.Logger,
	authenticator *auth.Authenticator,
	registry *runtime.Registry,
	events contract.EventLog,
) *Gateway {
	return &Gateway{
		log:      log,
		auth:     authenticator,
		registry: registry,
		events:   events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins; the token
			// requirement is the actual gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handle serves GET /ws/{room}. A valid token is a precondition to the
// upgrade; afterwards the session runs on the handler goroutine until
// the connection dies.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := g.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	room, err := domain.ParseRoomID(chi.URLParam(r, "room"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		g.log.Debug("Upgrade failed", "room", room, "error", err)
		return
	}

	g.log.Info("Session attached", "room", room, "user", claims.UserID)

	channel, sub := g.registry.Join(room)
	defer g.registry.Leave(room, sub)

	NewSession(g.log, conn, room, channel, sub, g.events).Run(r.Context())

	g.log.Info("Session detached", "room", room, "user", claims.UserID)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
