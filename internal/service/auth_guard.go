package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

// AuthGuard valida el header Authorization de cada request protegida.
type AuthGuard struct {
	codec *TokenCodec
	users repository.UserRepository
	now   func() time.Time
}

func NewAuthGuard(codec *TokenCodec, users repository.UserRepository) *AuthGuard {
	return &AuthGuard{
		codec: codec,
		users: users,
		now:   time.Now,
	}
}

// Verify es puramente sintáctica y temporal: no consulta al store.
func (g *AuthGuard) Verify(authorization string) (Identity, error) {
	if g == nil || g.codec == nil {
		return Identity{}, errServiceNotConfigured
	}
	token, ok := bearerToken(authorization)
	if !ok {
		return Identity{}, ErrUnauthorized
	}

	identity, err := g.codec.Decode(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !identity.ExpiresAt.After(g.now()) {
		return Identity{}, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrTokenExpired)
	}
	return identity, nil
}

// Authenticate verifica el token y resuelve el usuario al que pertenece.
// Un token válido de un usuario inexistente se rechaza como ErrTokenInvalid.
func (g *AuthGuard) Authenticate(ctx context.Context, authorization string) (domain.Principal, error) {
	identity, err := g.Verify(authorization)
	if err != nil {
		return domain.Principal{}, err
	}
	if g.users == nil {
		return domain.Principal{}, errServiceNotConfigured
	}

	user, err := g.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, ErrTokenInvalid
		}
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: user.ID, Email: user.Email}, nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
