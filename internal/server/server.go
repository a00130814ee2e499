package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/config"
	"github.com/gravitas-games/hexspiral/internal/service"
)

// Server serves spiral conversions over HTTP and WebSocket
type Server struct {
	config       *config.Config
	svc          *service.Service
	session      *Session
	router       *chi.Mux
	upgrader     websocket.Upgrader
	httpSrv      *http.Server
	jwtValidator *JWTValidator
	mu           sync.Mutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance. rdb may be nil; it is only used for
// the token blacklist.
func New(cfg *config.Config, svc *service.Service, rdb *redis.Client) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:  cfg,
		svc:     svc,
		session: NewSession(svc),
		ctx:     ctx,
		cancel:  cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{tokenProtocol},
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	if cfg.JWT.Secret != "" {
		srv.jwtValidator = NewJWTValidator(cfg.JWT, cfg.Redis.BlacklistPrefix, rdb)
		log.Info().Str("issuer", cfg.JWT.Issuer).Msg("JWT authentication enabled")
	} else {
		log.Warn().Msg("JWT secret not set, authentication disabled")
	}

	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	timeout := time.Duration(s.config.Server.RequestTimeout) * time.Second
	r.Route("/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))
		r.Use(s.requireAuth)
		r.Get("/spiral/{index}", s.handleSpiral)
		r.Get("/cube", s.handleCube)
		r.Get("/rings/{ring}", s.handleRing)
		r.Post("/batch", s.handleBatch)
	})

	r.With(s.requireAuth).Get("/ws", s.handleWebSocket)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	return r
}

// Router exposes the HTTP handler (useful for tests).
func (s *Server) Router() http.Handler { return s.router }

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	httpSrv := s.httpSrv
	s.mu.Unlock()

	log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// Cancel context to signal shutdown
	s.cancel()

	s.mu.Lock()
	httpSrv := s.httpSrv
	s.mu.Unlock()

	var err error
	if httpSrv != nil {
		err = httpSrv.Shutdown(ctx)
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.session.CloseAll()

	log.Info().Msg("server shutdown complete")
	return err
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports connection and conversion counters
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
