package wshandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	ws "github.com/Temutjin2k/jwt-auth/pkg/wsHub"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good.token.value"

type fakeAuthenticator struct {
	userID uuid.UUID
	exp    time.Time
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Claims, error) {
	if token != goodToken {
		return nil, errors.New("invalid token")
	}
	return &models.Claims{
		UserID: f.userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(f.exp),
		},
	}, nil
}

type fixture struct {
	hub    *ws.ConnectionHub
	userID uuid.UUID
	url    string
}

func newFixture(t *testing.T, exp time.Time) *fixture {
	t.Helper()

	log := logger.New(io.Discard, "test", logger.LevelError)
	hub := ws.NewConnHub(log)
	userID := uuid.New()

	h := NewSessions(hub, fakeAuthenticator{userID: userID, exp: exp}, log)
	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	return &fixture{
		hub:    hub,
		userID: userID,
		url:    "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitForConnections(t *testing.T, hub *ws.ConnectionHub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestSessions_FirstMessageAuth(t *testing.T) {
	f := newFixture(t, time.Now().Add(time.Hour))
	conn := dial(t, f.url, nil)

	require.NoError(t, conn.WriteJSON(authMessage{Type: TypeAuth, Token: goodToken}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeAuthOK, msg["type"])
	assert.Equal(t, f.userID.String(), msg["user_id"])
	assert.NotEmpty(t, msg["expires_at"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": TypePing}))
	assert.Equal(t, TypePong, readMessage(t, conn)["type"])
}

func TestSessions_HeaderAuthAndLoginNotification(t *testing.T) {
	f := newFixture(t, time.Now().Add(time.Hour))
	conn := dial(t, f.url, http.Header{"Authorization": []string{"Bearer " + goodToken}})

	assert.Equal(t, TypeAuthOK, readMessage(t, conn)["type"])
	waitForConnections(t, f.hub, 1)

	notifier := NewNotifier(f.hub)
	err := notifier.PublishUserLoggedIn(context.Background(), models.UserLoggedInEvent{
		UserID:     f.userID,
		TokenID:    "jti-2",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeLogin, msg["type"])
	assert.Equal(t, "jti-2", msg["token_id"])
}

func TestSessions_RejectsBadToken(t *testing.T) {
	f := newFixture(t, time.Now().Add(time.Hour))
	conn := dial(t, f.url, nil)

	require.NoError(t, conn.WriteJSON(authMessage{Type: TypeAuth, Token: "forged"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg["type"])

	var next map[string]any
	err := conn.ReadJSON(&next)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Zero(t, f.hub.Len())
}

func TestSessions_HeaderSchemeIsCaseInsensitive(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	f := newFixture(t, exp)
	conn := dial(t, f.url, http.Header{"Authorization": []string{"bearer " + goodToken}})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeAuthOK, msg["type"])

	expiresAt, err := time.Parse(time.RFC3339, msg["expires_at"].(string))
	require.NoError(t, err)
	assert.True(t, exp.Equal(expiresAt), "expires_at %v, want %v", expiresAt, exp)
	waitForConnections(t, f.hub, 1)
}

func TestSessions_RejectsMalformedHeader(t *testing.T) {
	f := newFixture(t, time.Now().Add(time.Hour))
	conn := dial(t, f.url, http.Header{"Authorization": []string{"Token " + goodToken}})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg["type"])

	var next map[string]any
	err := conn.ReadJSON(&next)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Zero(t, f.hub.Len())
}

func TestSessions_ClosedWhenTokenExpires(t *testing.T) {
	f := newFixture(t, time.Now().Add(200*time.Millisecond))
	conn := dial(t, f.url, http.Header{"Authorization": []string{"Bearer " + goodToken}})

	assert.Equal(t, TypeAuthOK, readMessage(t, conn)["type"])

	var msg map[string]any
	err := conn.ReadJSON(&msg)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	waitForConnections(t, f.hub, 0)
}

func TestSessions_NewConnectionReplacesOld(t *testing.T) {
	f := newFixture(t, time.Now().Add(time.Hour))
	header := http.Header{"Authorization": []string{"Bearer " + goodToken}}

	first := dial(t, f.url, header)
	assert.Equal(t, TypeAuthOK, readMessage(t, first)["type"])
	waitForConnections(t, f.hub, 1)

	second := dial(t, f.url, header)
	assert.Equal(t, TypeAuthOK, readMessage(t, second)["type"])

	var msg map[string]any
	assert.Error(t, first.ReadJSON(&msg))
	waitForConnections(t, f.hub, 1)
}

func TestNotifier_NoConnectionIsNotAnError(t *testing.T) {
	hub := ws.NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	n := NewNotifier(hub)

	assert.NoError(t, n.PublishUserLoggedIn(context.Background(), models.UserLoggedInEvent{UserID: uuid.New()}))
	assert.NoError(t, n.PublishUserRegistered(context.Background(), models.UserRegisteredEvent{}))
}
