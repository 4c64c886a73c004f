package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/service"
)

// apiError es el cuerpo de toda respuesta de error.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
	body   apiError
}

// El orden importa: un token vencido también es ErrTokenInvalid.
var errorTable = []errorMapping{
	{service.ErrUnauthorized, http.StatusUnauthorized, apiError{"UNAUTHORIZED", "You need to be authenticated to perform this request"}},
	{service.ErrTokenExpired, http.StatusUnauthorized, apiError{"ACCESS_TOKEN_INVALID", "Access token is invalid or has expired"}},
	{service.ErrTokenInvalid, http.StatusUnauthorized, apiError{"ACCESS_TOKEN_INVALID", "Access token is invalid or has expired"}},
	{service.ErrEmailAlreadyExists, http.StatusBadRequest, apiError{"EMAIL_ALREADY_EXISTS", "This email is already registered"}},
	{service.ErrInvalidCredentials, http.StatusNotFound, apiError{"EMAIL_OR_PASSWORD_INCORRECT", "The requested email or password is incorrect!"}},
	{service.ErrRateLimited, http.StatusTooManyRequests, apiError{"RATE_LIMITED", "Too many login attempts, try again later"}},
	{service.ErrPostAlreadyExists, http.StatusBadRequest, apiError{"POST_ALREADY_EXISTS", "This POST is already registered"}},
	{service.ErrPostNotFound, http.StatusNotFound, apiError{"POST_NOT_FOUND", "The requested POST was not found"}},
	{service.ErrNoPostsAssociated, http.StatusNotFound, apiError{"NO_POSTS_ASSOCIATED", "No posts associated with the current user"}},
	{service.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, apiError{"PAYLOAD_TOO_LARGE", "The request payload exceeds the allowed size"}},
	{service.ErrInvalidInput, http.StatusBadRequest, apiError{"INVALID_REQUEST", "The request body is invalid"}},
}

var internalError = apiError{"INTERNAL_ERROR", "Something went wrong"}

// statusFor resuelve el status y cuerpo para err; lo desconocido es 500.
func statusFor(err error) (int, apiError) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.body
		}
	}
	return http.StatusInternalServerError, internalError
}

// writeError responde con el error mapeado y aborta la cadena de handlers.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

func invalidRequest(c *gin.Context) {
	writeError(c, nil, service.ErrInvalidInput)
}
