package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"blog-api/internal/config"
	"blog-api/internal/db"
	apihttp "blog-api/internal/http"
	"blog-api/internal/metrics"
	"blog-api/internal/repository"
	"blog-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	store := repository.NewPgStore(pool)

	codec, err := service.NewTokenCodec(cfg.TokenSecret, cfg.TokenAlgorithm, cfg.TokenTTL(), cfg.TokenLeeway())
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}

	var (
		postCache    service.PostListCache
		loginLimiter service.LoginRateLimiter
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory cache and limiter", zap.Error(err))
		} else {
			postCache = service.NewRedisPostListCache(redisClient, cfg.PostCacheTTL())
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateLimitWindow(), cfg.LoginRateLimitMax)
		}
		cancel()
	}
	if postCache == nil {
		postCache = service.NewLRUPostListCache(cfg.PostCacheSize, cfg.PostCacheTTL())
	}
	if loginLimiter == nil {
		loginLimiter = service.NewLoginRateLimiter(cfg.LoginRateLimitWindow(), cfg.LoginRateLimitMax)
	}

	routerDeps := apihttp.RouterDeps{
		Auth:        service.NewAuthGuard(codec, store.Users()),
		MaxPostBody: cfg.MaxPostBodyBytes,
		Health:      pool.Ping,
	}
	var cacheMetrics service.PostCacheMetrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector := metrics.NewCollector(reg)
		cacheMetrics = collector
		routerDeps.Metrics = collector
		routerDeps.MetricsHandler = metrics.Handler(reg)
	}

	userSvc := service.NewUserService(logger, store, codec, loginLimiter)
	postSvc := service.NewPostService(logger, store, postCache, cacheMetrics, cfg.MaxPostBodyBytes)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	postHandler := apihttp.NewPostHandler(logger, postSvc)
	router := apihttp.NewRouter(logger, userHandler, postHandler, routerDeps)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
