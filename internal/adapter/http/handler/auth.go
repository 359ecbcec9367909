package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/jwt-auth/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/validator"
)

type AuthService interface {
	Register(ctx context.Context, newUser *models.UserCreateRequest) (*models.IssuedToken, error)
	Login(ctx context.Context, email, password string) (*models.IssuedToken, error)
	Profile(ctx context.Context, claims *models.Claims) (*models.User, error)
}

type Auth struct {
	auth AuthService
	l    logger.Logger
}

func NewAuth(service AuthService, l logger.Logger) *Auth {
	return &Auth{
		auth: service,
		l:    l,
	}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account and returns a signed access token valid for 4 hours
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterUserRequest true "User registration details"
// @Success      200 {object} dto.TokenResponse
// @Failure      400 {object} map[string]interface{} "Malformed body"
// @Failure      409 {object} map[string]interface{} "Email already registered"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /auth/register [post]
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "register_user")

	req := &dto.RegisterUserRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateNewUser(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	token, err := h.auth.Register(ctx, req.ToModel())
	if err != nil {
		h.logServiceError(ctx, "failed to register a new user", err)
		errorResponse(w, GetCode(err), ErrorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewTokenResponse(token), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Login godoc
// @Summary      User login
// @Description  Checks email and password and returns a fresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Login credentials"
// @Success      200 {object} dto.TokenResponse
// @Failure      400 {object} map[string]interface{} "Malformed body"
// @Failure      401 {object} map[string]interface{} "Invalid credentials"
// @Failure      422 {object} map[string]interface{} "Validation error"
// @Router       /auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "login_user")

	req := &dto.LoginRequest{}
	if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateLogin(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logServiceError(ctx, "failed to login user", err)
		errorResponse(w, GetCode(err), ErrorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewTokenResponse(token), nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// Profile godoc
// @Summary      Get user profile
// @Description  Returns the user the bearer token was issued for
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.ProfileResponse
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Failure      404 {object} map[string]interface{} "User no longer exists"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_profile")

	claims := models.ClaimsFromContext(ctx)
	if claims == nil {
		h.l.Warn(ctx, "profile requested without claims")
		errorResponse(w, http.StatusUnauthorized, "authorization required")
		return
	}

	user, err := h.auth.Profile(ctx, claims)
	if err != nil {
		h.logServiceError(ctx, "failed to get profile", err)
		errorResponse(w, GetCode(err), ErrorMessage(err))
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewProfileResponse(user, claims), nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w, "failed to write JSON response")
	}
}

// logServiceError logs client errors at warn level and everything else as errors.
func (h *Auth) logServiceError(ctx context.Context, msg string, err error) {
	ctx = wrap.ErrorCtx(ctx, err)
	if GetCode(err) < http.StatusInternalServerError {
		h.l.Warn(ctx, msg, "error", err.Error())
		return
	}
	h.l.Error(ctx, msg, err)
}
