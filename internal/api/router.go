package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StatsProvider is the minimal read-only view the /api/stats endpoint
// needs from the tick orchestrator. Kept as an interface so the router
// stays testable with httptest.NewServer without pulling in the engine
// package (avoids an api <-> engine import cycle: engine already depends
// on api for RecordTick/RecordLOS and the player/visibility gauges).
type StatsProvider interface {
	ConnectedSessions() int
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    WebSocketHandler: wsHandler,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// WebSocketHandler serves the /ws upgrade (required).
	WebSocketHandler http.Handler

	// Stats optionally backs /api/stats. If nil, the route is omitted.
	Stats StatsProvider

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default local-dev origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// Side effects:
//   - No network listeners are opened
//   - When cfg.RateLimiter is nil, the IPRateLimiter built here starts its
//     cleanup goroutine (see NewIPRateLimiter); with a RateLimiter supplied,
//     no goroutine is started
//
// The returned router can be served with httptest.NewServer.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/ws")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// The authoritative game transport (spec.md §6.2). The rate-limiting
	// and CORS middleware above applies to this route too, and
	// transport.Handler adds its own connection-count limiting and
	// upgrade-time origin check on top of it, since a WebSocket upgrade
	// isn't a regular request/response.
	if cfg.WebSocketHandler != nil {
		r.Handle("/ws", cfg.WebSocketHandler)
	}

	if cfg.Stats != nil {
		r.Get("/api/stats", handleStats(cfg.Stats))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

func handleStats(stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"connectedPlayers": stats.ConnectedSessions(),
		})
		RecordRequest(req.Method, "/api/stats", http.StatusOK, time.Since(start))
	}
}

// GetRateLimiterFromRouter is a helper to extract the rate limiter from a configured router.
// It returns cfg.RateLimiter when set; otherwise it builds a new limiter
// from cfg.RateLimitConfig (or DefaultRateLimitConfig), which is a
// separate instance from the one NewRouter creates for the same cfg.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
