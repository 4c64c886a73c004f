package service

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTokenInvalid         = errors.New("access token invalid")
	ErrTokenExpired         = errors.New("access token expired")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("email or password incorrect")
	ErrRateLimited          = errors.New("rate limited")
	ErrPostAlreadyExists    = errors.New("post already exists")
	ErrPostNotFound         = errors.New("post not found")
	ErrNoPostsAssociated    = errors.New("no posts associated")
	ErrPayloadTooLarge      = errors.New("payload too large")
	errServiceNotConfigured = errors.New("service not configured")
)
