package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// UserService coordina signup y login.
type UserService struct {
	logger  *zap.Logger
	store   repository.Store
	codec   *TokenCodec
	limiter LoginRateLimiter
	now     func() time.Time
}

func NewUserService(logger *zap.Logger, store repository.Store, codec *TokenCodec, limiter LoginRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger:  logger,
		store:   store,
		codec:   codec,
		limiter: limiter,
		now:     time.Now,
	}
}

type Credentials struct {
	Email    string
	Password string
}

// Signup crea el usuario con un token recién emitido y lo devuelve.
func (s *UserService) Signup(ctx context.Context, input Credentials) (string, error) {
	if s.store == nil || s.codec == nil {
		return "", errServiceNotConfigured
	}

	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	token, err := s.codec.Issue(email, now)
	if err != nil {
		return "", err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Token:        token,
		CreatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrEmailAlreadyExists
		}
		return "", err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return token, nil
}

// Login reutiliza el token guardado si sigue vigente; si no, emite y persiste
// uno nuevo. Lectura y escritura ocurren en la misma transacción.
func (s *UserService) Login(ctx context.Context, input Credentials) (string, error) {
	if s.store == nil || s.codec == nil {
		return "", errServiceNotConfigured
	}

	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", ErrInvalidCredentials
	}
	if s.limiter != nil && !s.limiter.Allow(email) {
		return "", ErrRateLimited
	}

	var token string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			return ErrInvalidCredentials
		}

		now := s.now().UTC()
		if s.tokenStillValid(user.Token, now) {
			token = user.Token
			return nil
		}

		fresh, err := s.codec.Issue(user.Email, now)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateToken(ctx, user.ID, fresh); err != nil {
			return err
		}
		token = fresh
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) tokenStillValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	identity, err := s.codec.Decode(token)
	if err != nil {
		return false
	}
	return identity.ExpiresAt.After(now)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
