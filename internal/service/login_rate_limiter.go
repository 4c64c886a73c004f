package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// LoginRateLimiter limita la frecuencia de intentos de login por clave.
type LoginRateLimiter interface {
	Allow(key string) bool
}

const maxTrackedLoginKeys = 10000

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type memoryLoginRateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limit    rate.Limit
	burst    int
	limiters map[string]*keyLimiter
}

// NewLoginRateLimiter crea un rate limiter en memoria que admite max intentos por ventana.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLoginRateLimiter{
		window:   window,
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		limiters: make(map[string]*keyLimiter),
	}
}

func (l *memoryLoginRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedLoginKeys {
			l.pruneLocked(now)
		}
		kl = &keyLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = kl
	}
	kl.lastAccess = now
	return kl.limiter.AllowN(now, 1)
}

// pruneLocked descarta claves sin actividad durante una ventana completa.
func (l *memoryLoginRateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	for k, kl := range l.limiters {
		if kl.lastAccess.Before(cutoff) {
			delete(l.limiters, k)
		}
	}
}

const redisLoginAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisLoginRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisLoginRateLimiter comparte el conteo entre instancias con un contador
// por email que vence al cerrar la ventana. Cuenta todos los intentos de login,
// también los exitosos.
func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:rl:",
	}
}

// Allow falla abierto si Redis no responde.
func (l *redisLoginRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisLoginAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
