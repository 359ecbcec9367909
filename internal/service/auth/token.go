package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the smallest accepted HMAC-SHA256 key in bytes.
const MinSecretLength = 16

// TokenConfig holds the shared secret and the validation switches.
// Issuer and audience checks only apply when the corresponding value is set.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string

	EnforceExpiry     bool
	RequireExpiration bool
	ValidateIssuer    bool
	ValidateAudience  bool
}

// DefaultTokenConfig returns a config with every check enabled.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret:            secret,
		EnforceExpiry:     true,
		RequireExpiration: true,
		ValidateIssuer:    true,
		ValidateAudience:  true,
	}
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuance and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService issues and validates HS256 signed access tokens.
// It is immutable after construction and safe for concurrent use.
type TokenService struct {
	secret []byte
	cfg    TokenConfig
	now    func() time.Time
	log    logger.Logger
}

func NewTokenService(cfg TokenConfig, log logger.Logger, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}

	s := &TokenService{
		secret: []byte(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Issue creates a signed token for an already authenticated user.
// Every call gets a fresh random jti.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*models.IssuedToken, error) {
	ctx = wrap.WithAction(ctx, "issue_token")
	if user == nil {
		return nil, wrap.Error(ctx, errors.New("user is nil"))
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to generate token id: %w", err))
	}

	// NumericDate has second precision, keep iat/exp consistent with what is encoded
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(models.TokenTTL)

	claims := NewAccessClaims(user, tokenID.String(), issuedAt, s.cfg.Issuer, s.cfg.Audience)
	token, err := s.signClaims(claims)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to sign token: %w", err))
	}

	metrics.RecordTokenIssued()
	s.log.Debug(wrap.WithTokenID(ctx, tokenID.String()), "token issued", "expires_at", expiresAt)

	return &models.IssuedToken{
		Token:     token,
		TokenID:   tokenID.String(),
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies the signature of token and, depending on config, its
// expiry, issuer and audience. It returns ErrExpToken or ErrInvalidToken on failure.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Claims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.RecordTokenValidation(metrics.ResultExpired)
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		metrics.RecordTokenValidation(metrics.ResultInvalid)
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}

	if !parsed.Valid {
		metrics.RecordTokenValidation(metrics.ResultInvalid)
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	// claims validation is skipped as a whole when expiry is not enforced
	if !s.cfg.EnforceExpiry {
		if err := s.verifyIssuerAudience(claims); err != nil {
			metrics.RecordTokenValidation(metrics.ResultInvalid)
			return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
		}
	}

	if claims.UserID == "" || claims.ID == "" {
		metrics.RecordTokenValidation(metrics.ResultInvalid)
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'id' or 'jti' claim", ErrInvalidToken))
	}

	metrics.RecordTokenValidation(metrics.ResultSuccess)
	return claims, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

func (s *TokenService) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		// rejects non-zero padding bits, so every signature has exactly one encoding
		jwt.WithStrictDecoding(),
	}

	if !s.cfg.EnforceExpiry {
		return append(opts, jwt.WithoutClaimsValidation())
	}

	if s.cfg.RequireExpiration {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	if s.cfg.ValidateIssuer && s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.ValidateAudience && s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	return opts
}

func (s *TokenService) verifyIssuerAudience(claims *models.Claims) error {
	if s.cfg.ValidateIssuer && s.cfg.Issuer != "" && claims.Issuer != s.cfg.Issuer {
		return jwt.ErrTokenInvalidIssuer
	}
	if s.cfg.ValidateAudience && s.cfg.Audience != "" && !slices.Contains(claims.Audience, s.cfg.Audience) {
		return jwt.ErrTokenInvalidAudience
	}
	return nil
}

func (s *TokenService) signClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// NewAccessClaims builds the claim set of an access token issued at issuedAt.
func NewAccessClaims(user *models.User, tokenID string, issuedAt time.Time, issuer, audience string) *models.Claims {
	claims := &models.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ID:        tokenID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(models.TokenTTL)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return claims
}
