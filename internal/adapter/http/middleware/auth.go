package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/service/auth"
	"github.com/Temutjin2k/jwt-auth/pkg/hasher"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
)

var errMissingToken = errors.New("authorization required")

// Auth validates the bearer token and injects its claims into the context.
// Missing, malformed, tampered or expired tokens get 401 before next runs.
func (h *Middleware) Auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wrap.WithAction(r.Context(), "authenticate")

		header := r.Header.Get("Authorization")
		if header == "" {
			errorResponse(w, http.StatusUnauthorized, errMissingToken.Error())
			return
		}

		token, err := BearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := h.auth.Authenticate(ctx, token)
		if err != nil || claims == nil {
			// never log the token itself
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate request",
				"token_fingerprint", hasher.Fingerprint(token),
				"error", errString(err),
			)
			errorResponse(w, http.StatusUnauthorized, tokenErrorMessage(err))
			return
		}

		ctx = wrap.WithLogCtx(r.Context(), wrap.LogCtx{
			UserID:  claims.UserID,
			TokenID: claims.TokenID(),
		})
		next.ServeHTTP(w, r.WithContext(models.WithClaims(ctx, claims)))
	})
}

func tokenErrorMessage(err error) string {
	if errors.Is(err, auth.ErrExpToken) {
		return auth.ErrExpToken.Error()
	}
	return auth.ErrInvalidToken.Error()
}

func errString(err error) string {
	if err == nil {
		return "no claims"
	}
	return err.Error()
}

// BearerToken extracts the token from an Authorization header value. The scheme is case-insensitive.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}
