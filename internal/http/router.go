package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker verifica las dependencias del servicio.
type HealthChecker func(ctx context.Context) error

// RouterDeps agrupa lo que el router necesita además de los handlers.
// Metrics, MetricsHandler y Health son opcionales.
type RouterDeps struct {
	Auth           Authenticator
	MaxPostBody    int64
	Metrics        RequestRecorder
	MetricsHandler http.Handler
	Health         HealthChecker
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, userH *UserHandler, postH *PostHandler, deps RouterDeps) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	users := r.Group("/user")
	users.POST("/signup", userH.Signup)
	users.POST("/login", userH.Login)

	auth := AuthMiddleware(logger, deps.Auth)
	posts := r.Group("/post")
	posts.POST("/", postSizeGuard(deps.MaxPostBody), auth, postH.CreatePost)
	posts.GET("/", auth, postH.ListPosts)
	posts.DELETE("/", auth, postH.DeletePost)

	r.GET("/healthz", healthHandler(deps.Health))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	return r
}

func healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
