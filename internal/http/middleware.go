package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/service"
)

// RequestRecorder registra cada request atendida.
type RequestRecorder interface {
	RecordRequest(route, method string, status int, d time.Duration)
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware etiqueta por ruta registrada, no por path crudo.
func metricsMiddleware(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// rawBodySlack acota el cuerpo crudo a un múltiplo del límite; espacios y
// campos desconocidos no cuentan para el límite del post.
const rawBodySlack = 4

// postSizeGuard rechaza un CreatePost cuyo JSON serializado supera limit.
// Corre antes de autenticar, así un payload excedido nunca llega al store.
func postSizeGuard(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || limit <= 0 {
			c.Next()
			return
		}
		rawCap := limit * rawBodySlack
		if c.Request.ContentLength > rawCap {
			writeError(c, nil, service.ErrPayloadTooLarge)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, rawCap))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(c, nil, service.ErrPayloadTooLarge)
				return
			}
			invalidRequest(c)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// Un cuerpo que no decodifica lo rechaza el handler con INVALID_REQUEST.
		var input service.CreatePostInput
		if json.Unmarshal(body, &input) == nil {
			if size, err := service.PostPayloadSize(input); err == nil && size > limit {
				writeError(c, nil, service.ErrPayloadTooLarge)
				return
			}
		}
		c.Next()
	}
}
