package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/metrics"
	"github.com/Temutjin2k/jwt-auth/pkg/trm"
	"github.com/google/uuid"
)

type AuthService struct {
	identities   Identities
	tokenService TokenProvider
	txManager    trm.TxManager
	events       EventPublisher
	log          logger.Logger
}

// NewAuthService wires the service. events may be nil when publishing is disabled.
func NewAuthService(identities Identities, tokenService TokenProvider, txManager trm.TxManager, events EventPublisher, log logger.Logger) *AuthService {
	return &AuthService{
		identities:   identities,
		tokenService: tokenService,
		txManager:    txManager,
		events:       events,
		log:          log,
	}
}

// Register creates a new user and returns a token for it.
// An already registered email yields ErrNotUniqueEmail.
func (s *AuthService) Register(ctx context.Context, req *models.UserCreateRequest) (*models.IssuedToken, error) {
	ctx = wrap.WithAction(ctx, "register_user")

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: models.NormalizeEmail(req.Email),
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := s.identities.FindByEmail(txCtx, user.Email)
		if err != nil && !errors.Is(err, types.ErrUserNotFound) {
			return err
		}
		if existing != nil {
			return ErrNotUniqueEmail
		}

		if _, err := s.identities.Create(txCtx, user, req.Password); err != nil {
			// lost a race against a concurrent registration
			if errors.Is(err, types.ErrUserAlreadyExists) {
				return ErrNotUniqueEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotUniqueEmail) {
			metrics.RecordRegistration(metrics.ResultConflict)
			return nil, wrap.Error(ctx, ErrNotUniqueEmail)
		}
		metrics.RecordRegistration(metrics.ResultError)
		s.log.Error(ctx, "failed to save user", err)
		return nil, wrap.Error(ctx, ErrUnexpected)
	}

	ctx = wrap.WithUserID(ctx, user.ID.String())

	token, err := s.tokenService.Issue(ctx, user)
	if err != nil {
		metrics.RecordRegistration(metrics.ResultError)
		s.log.Error(ctx, "failed to issue token for new user", err)
		return nil, wrap.Error(ctx, ErrTokenGenerateFail)
	}

	metrics.RecordRegistration(metrics.ResultSuccess)
	s.log.Info(ctx, "user registered")

	if s.events != nil {
		event := models.UserRegisteredEvent{
			UserID:     user.ID,
			Email:      user.Email,
			Name:       user.Name,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.log.Warn(wrap.WithAction(ctx, types.ActionEventPublishFailed), "failed to publish user registered event", "error", err.Error())
		}
	}

	return token, nil
}

// Login checks the credentials and returns a fresh token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.IssuedToken, error) {
	ctx = wrap.WithAction(ctx, "login_user")

	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, types.ErrUserNotFound) {
		metrics.RecordLogin(metrics.ResultError)
		s.log.Error(ctx, "failed to load user", err)
		return nil, wrap.Error(ctx, ErrUnexpected)
	}

	if !s.identities.VerifyPassword(user, password) {
		metrics.RecordLogin(metrics.ResultInvalid)
		return nil, wrap.Error(ctx, ErrInvalidCredentials)
	}

	ctx = wrap.WithUserID(ctx, user.ID.String())

	token, err := s.tokenService.Issue(ctx, user)
	if err != nil {
		metrics.RecordLogin(metrics.ResultError)
		s.log.Error(ctx, "failed to issue token", err)
		return nil, wrap.Error(ctx, ErrTokenGenerateFail)
	}

	metrics.RecordLogin(metrics.ResultSuccess)

	if s.events != nil {
		event := models.UserLoggedInEvent{
			UserID:     user.ID,
			Email:      user.Email,
			TokenID:    token.TokenID,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
			s.log.Warn(wrap.WithAction(ctx, types.ActionEventPublishFailed), "failed to publish user logged in event", "error", err.Error())
		}
	}

	return token, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Claims, error) {
	return s.tokenService.Validate(ctx, token)
}

// Profile returns the user a validated token was issued for.
func (s *AuthService) Profile(ctx context.Context, claims *models.Claims) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "get_profile")
	if claims == nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	user, err := s.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, wrap.Error(ctx, types.ErrUserNotFound)
		}
		s.log.Error(ctx, "failed to load user", err)
		return nil, wrap.Error(ctx, ErrUnexpected)
	}

	return user, nil
}
