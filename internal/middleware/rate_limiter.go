package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"stockmaster/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowLimiter counts requests per client IP in fixed windows. Each
// middleware instance has its own counters, so the login limiter and the
// general API limiter never share a budget.
type windowLimiter struct {
	nombre  string
	limit   int
	window  time.Duration
	mensaje string // format with the seconds until the window resets

	mu  sync.Mutex
	ips map[string]*ventana
}

type ventana struct {
	count int
	fin   time.Time
}

func newWindowLimiter(nombre string, limit int, window time.Duration, mensaje string) *windowLimiter {
	l := &windowLimiter{
		nombre:  nombre,
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		ips:     make(map[string]*ventana),
	}
	registrarLimiter(l)
	return l
}

// permitir counts one request from ip and reports whether it fits in the
// current window, plus when that window ends.
func (l *windowLimiter) permitir(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ips[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.ips[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *windowLimiter) purgar(now time.Time) (purgadas, restantes int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.ips {
		if now.After(v.fin) {
			delete(l.ips, ip)
			purgadas++
		}
	}
	return purgadas, len(l.ips)
}

func (l *windowLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		ok, fin := l.permitir(c.ClientIP(), now)
		if !ok {
			espera := int(math.Ceil(fin.Sub(now).Seconds()))
			if espera < 1 {
				espera = 1
			}
			c.Header("Retry-After", strconv.Itoa(espera))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.Newf(l.mensaje, espera))
			return
		}
		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }

// RateLimiter limits every client IP to limit requests per window
// (RATE_LIMIT_PER_MINUTE). A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return passThrough
	}
	return newWindowLimiter("api", limit, window,
		"Demasiadas solicitudes. Intente nuevamente en %d s.").middleware()
}

// LoginRateLimiter limits credential endpoints to perMinute attempts per IP
// (LOGIN_RATE_LIMIT_PER_MINUTE). Build it once and share it between routes
// that should draw from the same budget. A non-positive limit disables it.
func LoginRateLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return passThrough
	}
	return newWindowLimiter("login", perMinute, time.Minute,
		"Demasiados intentos de acceso. Intente nuevamente en %d s.").middleware()
}

// ── Purge ─────────────────────────────────────────────────────────────────────
// Expired windows are dropped periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	limiters   []*windowLimiter
	limitersMu sync.Mutex
	purgeOnce  sync.Once
)

func registrarLimiter(l *windowLimiter) {
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	purgeOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitersMu.Lock()
		activos := append([]*windowLimiter(nil), limiters...)
		limitersMu.Unlock()

		for _, l := range activos {
			purgadas, restantes := l.purgar(now)
			if purgadas > 0 {
				log.Debug().
					Str("limiter", l.nombre).
					Int("purged", purgadas).
					Int("remaining", restantes).
					Msg("rate limiter entries purged")
			}
		}
	}
}
