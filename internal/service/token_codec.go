package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

// TokenCodec emite y decodifica access tokens firmados con HMAC.
// El payload contiene solo email y exp.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// Identity es el contenido verificado de un token.
type Identity struct {
	Email     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewTokenCodec valida que el algoritmo sea HMAC (HS256, HS384, HS512).
func NewTokenCodec(secret, algorithm string, ttl, leeway time.Duration) (*TokenCodec, error) {
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if leeway < 0 {
		leeway = 0
	}
	return &TokenCodec{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		leeway: leeway,
		now:    time.Now,
	}, nil
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue firma {email, exp: now+ttl}.
func (c *TokenCodec) Issue(email string, now time.Time) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(email) == "" {
		return "", ErrTokenInvalid
	}
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifica firma, algoritmo y expiración. Cualquier fallo es un rechazo.
func (c *TokenCodec) Decode(token string) (Identity, error) {
	if len(c.secret) == 0 {
		return Identity{}, ErrTokenInvalid
	}
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrTokenInvalid
	}

	var claims tokenClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Email) == "" || claims.ExpiresAt == nil {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
