package dto

import (
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/validator"
)

const (
	maxNameLength     = 500
	maxEmailLength    = 500
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

type RegisterUserRequest struct {
	Name     string `json:"name" example:"Ann"`
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"correct horse"`
}

func (r *RegisterUserRequest) ToModel() *models.UserCreateRequest {
	return &models.UserCreateRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

type LoginRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"correct horse"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Result    bool      `json:"result" example:"true"`
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewTokenResponse(t *models.IssuedToken) TokenResponse {
	return TokenResponse{
		Result:    true,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	}
}

// ProfileResponse is returned by GET /auth/me.
type ProfileResponse struct {
	User      *models.User `json:"user"`
	TokenID   string       `json:"token_id"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

func NewProfileResponse(user *models.User, claims *models.Claims) ProfileResponse {
	resp := ProfileResponse{
		User:    user,
		TokenID: claims.TokenID(),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = &claims.ExpiresAt.Time
	}
	return resp
}

func ValidateNewUser(v *validator.Validator, user *RegisterUserRequest) {
	v.Check(user.Name != "", "name", "must be provided")
	v.Check(len(user.Name) <= maxNameLength, "name", "must not be more than 500 bytes long")

	validateEmail(v, user.Email)

	v.Check(user.Password != "", "password", "must be provided")
	v.Check(len(user.Password) >= minPasswordLength, "password", "must be at least 8 bytes long")
	v.Check(len(user.Password) <= maxPasswordLength, "password", "must not be more than 72 bytes long")
}

func ValidateLogin(v *validator.Validator, user *LoginRequest) {
	validateEmail(v, user.Email)
	v.Check(user.Password != "", "password", "must be provided")
}

func validateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(len(email) <= maxEmailLength, "email", "must not be more than 500 bytes long")
}
