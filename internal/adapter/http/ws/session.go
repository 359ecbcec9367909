package wshandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/adapter/http/middleware"
	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/hasher"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/jwt-auth/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	authTimeout  = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Message types exchanged on the sessions socket
const (
	TypeAuth   = "auth"
	TypeAuthOK = "auth_ok"
	TypeError  = "error"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeLogin  = "login"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Claims, error)
}

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Sessions streams account activity of the authenticated user over a websocket.
// The client authenticates with an Authorization header or with a first
// {"type":"auth","token":"..."} message; the socket is closed when the token expires.
type Sessions struct {
	hub      *ws.ConnectionHub
	auth     Authenticator
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewSessions(hub *ws.ConnectionHub, auth Authenticator, log logger.Logger) *Sessions {
	return &Sessions{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Handle godoc
// @Summary      Account activity stream
// @Description  Websocket that notifies the user about new logins to the account
// @Tags         auth
// @Success      101
// @Failure      400 {string} string "Not a websocket handshake"
// @Security     BearerAuth
// @Router       /ws/sessions [get]
func (h *Sessions) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_sessions")

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		h.log.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	claims, err := h.authenticate(ctx, r, raw)
	if err != nil {
		h.log.Warn(wrap.ErrorCtx(ctx, err), "websocket authentication failed", "error", err.Error())
		_ = raw.WriteJSON(map[string]any{"type": TypeError, "error": "invalid token"})
		_ = raw.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
			time.Now().Add(time.Second),
		)
		raw.Close()
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		raw.Close()
		return
	}
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{UserID: claims.UserID, TokenID: claims.TokenID()})

	// the hub connection must not outlive the request context
	conn := ws.NewConn(context.WithoutCancel(ctx), userID, raw)
	if err := h.hub.Add(conn); err != nil {
		raw.Close()
		return
	}
	defer h.hub.Remove(conn)

	hello := map[string]any{"type": TypeAuthOK, "user_id": claims.UserID}
	if claims.ExpiresAt != nil {
		hello["expires_at"] = claims.ExpiresAt.Time.UTC()
	}
	if err := conn.Send(hello); err != nil {
		return
	}
	h.log.Info(ctx, "websocket session opened")

	go h.keepAlive(conn, claims)

	err = conn.Listen(func(msg map[string]any) error {
		if msg["type"] == TypePing {
			return conn.Send(map[string]any{"type": TypePong})
		}
		return nil
	})
	if err != nil && !errors.Is(err, ws.ErrConnClosed) && !isNormalClose(err) {
		h.log.Debug(ctx, "websocket session ended", "error", err.Error())
	}
}

func (h *Sessions) authenticate(ctx context.Context, r *http.Request, raw *websocket.Conn) (*models.Claims, error) {
	var token string
	if header := r.Header.Get("Authorization"); header != "" {
		// a malformed header is rejected instead of waiting for an auth message
		t, err := middleware.BearerToken(header)
		if err != nil {
			return nil, err
		}
		token = t
	} else {
		if err := raw.SetReadDeadline(time.Now().Add(authTimeout)); err != nil {
			return nil, err
		}

		var msg authMessage
		if err := raw.ReadJSON(&msg); err != nil {
			return nil, err
		}
		if msg.Type != TypeAuth || msg.Token == "" {
			return nil, errors.New("first message must be of type auth")
		}
		token = msg.Token

		if err := raw.SetReadDeadline(time.Time{}); err != nil {
			return nil, err
		}
	}

	claims, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		h.log.Debug(ctx, "rejected websocket token", "token_fingerprint", hasher.Fingerprint(token))
		return nil, err
	}
	return claims, nil
}

// keepAlive pings the client and closes the connection once the token expires.
func (h *Sessions) keepAlive(conn *ws.Conn, claims *models.Claims) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var expired <-chan time.Time
	if claims.ExpiresAt != nil {
		timer := time.NewTimer(time.Until(claims.ExpiresAt.Time))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-conn.Done():
			return
		case <-expired:
			h.hub.Remove(conn)
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				h.hub.Remove(conn)
				return
			}
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
