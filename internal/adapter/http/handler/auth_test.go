package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/internal/service/auth"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	registerErr error
	loginErr    error
	profileErr  error

	gotRequest *models.UserCreateRequest
	gotEmail   string
	user       *models.User
}

var issued = &models.IssuedToken{
	Token:     "header.payload.signature",
	TokenID:   "jti-1",
	ExpiresAt: time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC),
}

func (f *fakeAuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.IssuedToken, error) {
	f.gotRequest = req
	if f.registerErr != nil {
		return nil, wrap.Error(ctx, f.registerErr)
	}
	return issued, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*models.IssuedToken, error) {
	f.gotEmail = email
	if f.loginErr != nil {
		return nil, wrap.Error(ctx, f.loginErr)
	}
	return issued, nil
}

func (f *fakeAuthService) Profile(ctx context.Context, claims *models.Claims) (*models.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.user, nil
}

func newTestAuth(svc AuthService) *Auth {
	return NewAuth(svc, logger.New(io.Discard, "test", logger.LevelError))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantField  string
	}{
		{
			name:       "success",
			body:       `{"name":"Ann","email":"ann@example.com","password":"correct horse"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"name":"Ann",`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"name":"Ann","email":"ann@example.com","password":"correct horse","role":"admin"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"email":"ann@example.com","password":"correct horse"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "name",
		},
		{
			name:       "invalid email",
			body:       `{"name":"Ann","email":"not-an-email","password":"correct horse"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "email",
		},
		{
			name:       "short password",
			body:       `{"name":"Ann","email":"ann@example.com","password":"short"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "password",
		},
		{
			name:       "password over bcrypt limit",
			body:       `{"name":"Ann","email":"ann@example.com","password":"` + strings.Repeat("p", 73) + `"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "password",
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Ann","email":"ann@example.com","password":"correct horse"}`,
			serviceErr: auth.ErrNotUniqueEmail,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unexpected error",
			body:       `{"name":"Ann","email":"ann@example.com","password":"correct horse"}`,
			serviceErr: auth.ErrUnexpected,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{registerErr: tt.serviceErr}
			h := newTestAuth(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeBody(t, rec)
			switch {
			case tt.wantStatus == http.StatusOK:
				assert.Equal(t, true, body["result"])
				assert.Equal(t, issued.Token, body["token"])
				assert.Equal(t, "2024-05-01T16:00:00Z", body["expires_at"])
				assert.Equal(t, "Ann", svc.gotRequest.Name)
			case tt.wantField != "":
				fields, ok := body["error"].(map[string]any)
				require.True(t, ok, "validation errors must be a field map")
				assert.Contains(t, fields, tt.wantField)
				assert.Nil(t, svc.gotRequest)
			default:
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestAuth_Register_DoesNotLeakInternalErrors(t *testing.T) {
	h := newTestAuth(&fakeAuthService{registerErr: types.ErrDatabaseFailed})

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Ann","email":"ann@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database")
}

func TestAuth_Login(t *testing.T) {
	svc := &fakeAuthService{}
	h := newTestAuth(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ann@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, issued.Token, body["token"])
	assert.Equal(t, "ann@example.com", svc.gotEmail)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	h := newTestAuth(&fakeAuthService{loginErr: auth.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ann@example.com","password":"wrong password"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["error"])
}

func TestAuth_Login_Validation(t *testing.T) {
	svc := &fakeAuthService{}
	h := newTestAuth(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"","password":""}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, svc.gotEmail)
}

func TestAuth_Profile(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Ann", Email: "ann@example.com", PasswordHash: "secret-hash"}
	h := newTestAuth(&fakeAuthService{user: user})

	claims := &models.Claims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(models.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	h.Profile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	body := decodeBody(t, rec)
	assert.Equal(t, "jti-1", body["token_id"])
	profile := body["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", profile["email"])
}

func TestAuth_Profile_Errors(t *testing.T) {
	h := newTestAuth(&fakeAuthService{profileErr: types.ErrUserNotFound})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Profile(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = req.WithContext(models.WithClaims(req.Context(), &models.Claims{UserID: uuid.NewString()}))
	rec = httptest.NewRecorder()
	h.Profile(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	log := logger.New(io.Discard, "test", logger.LevelError)

	rec := httptest.NewRecorder()
	NewHealth(types.ServiceName, "memory", nil, log).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", decodeBody(t, rec)["status"])

	rec = httptest.NewRecorder()
	NewHealth(types.ServiceName, "postgres", fakePinger{err: io.EOF}, log).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, GetCode(auth.ErrNotUniqueEmail))
	assert.Equal(t, http.StatusUnauthorized, GetCode(auth.ErrExpToken))
	assert.Equal(t, http.StatusUnauthorized, GetCode(wrap.Error(context.Background(), auth.ErrInvalidToken)))
	assert.Equal(t, http.StatusNotFound, GetCode(types.ErrUserNotFound))
	assert.Equal(t, http.StatusInternalServerError, GetCode(io.EOF))
}
