package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/txlens/internal/config"
)

const requestIDHeader = "X-Request-ID"

// RouterDependencies collects handler dependencies. Nil members disable the
// routes or middleware that need them.
type RouterDependencies struct {
	Health           HealthService
	Snapshot         SnapshotStats
	API              *APIHandlers
	Metrics          *Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      WindowCounter
	RateLimit        config.RateLimitConfig
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(recovery(logger), securityHeaders(), requestID(), loggingMiddleware(logger))
	if deps.Metrics != nil {
		engine.Use(metricsMiddleware(deps.Metrics))
	}
	if len(deps.AllowedOrigins) > 0 {
		engine.Use(corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := gin.H{"status": "ok"}
		if deps.Snapshot != nil {
			payload["records"] = deps.Snapshot.Len()
			payload["customers"] = deps.Snapshot.Customers()
		}

		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		c.JSON(status, payload)
	})

	if deps.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.API != nil {
		v1 := engine.Group("/api/v1")
		if deps.RateLimiter != nil && deps.RateLimit.Requests > 0 {
			v1.Use(rateLimit(logger, deps.RateLimiter, deps.RateLimit.Requests, deps.RateLimit.Window, deps.Metrics))
		}
		customers := v1.Group("/customers/:customerId")
		customers.GET("/transactions", deps.API.customerTransactions)
		customers.GET("/related-customers", deps.API.relatedCustomers)
	}

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})

	return engine
}

// recovery answers a panic the same way as any unexpected failure: 500 {"ok": false}.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("request panicked",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("requestId"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false})
	})
}

// defaultSecurityHeaders hardens every response, errors included. The API only
// serves JSON, so the content policy forbids loading anything.
var defaultSecurityHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Referrer-Policy", "no-referrer"},
	{"Strict-Transport-Security", "max-age=15552000; includeSubDomains"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-DNS-Prefetch-Control", "off"},
	{"X-Download-Options", "noopen"},
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"X-XSS-Protection", "0"},
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range defaultSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("requestId"),
		)
	}
}

func metricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func corsMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	_, wildcard := allowed["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions

		if origin == "" || !(wildcard || containsOrigin(allowed, origin)) {
			if preflight && origin != "" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		// Credentials are never granted to an origin matched only by "*".
		if allowCredentials && containsOrigin(allowed, origin) {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Expose-Headers", requestIDHeader+", X-RateLimit-Remaining")

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func containsOrigin(set map[string]struct{}, origin string) bool {
	_, ok := set[origin]
	return ok
}
