package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	v1 "github.com/luc4spas/erp-joy-maker/internal/api/v1"
	"github.com/luc4spas/erp-joy-maker/internal/auth"
	"github.com/luc4spas/erp-joy-maker/internal/config"
	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// LocalUserID tenant used when no JWT secret is configured
const LocalUserID = "local"

// devFrontendURL Vite dev server that unknown paths redirect to in dev mode
const devFrontendURL = "http://localhost:5173"

// Server HTTP server
type Server struct {
	cfg        *config.AppConfig
	router     *gin.Engine
	store      *store.Store
	signer     *auth.Signer
	v1         *v1.Handler
	httpServer *http.Server
}

// NewServer wires the store, the import pipeline and the API
func NewServer(ctx context.Context, cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	coordinator, err := NewCoordinator(ctx, cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		router: gin.New(),
		store:  st,
		v1:     v1.NewHandler(st, coordinator, policy),
	}

	if cfg.Auth.JWTSecret != "" {
		s.signer, err = auth.NewSigner(cfg.Auth.JWTSecret, auth.DefaultTTL)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	} else {
		log.Warnf("no jwt secret configured, every request runs as tenant %q", LocalUserID)
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes registers middleware and routes
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), middleware.RequestLogger())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	if s.signer != nil {
		api.Use(middleware.AuthMiddleware(s.signer))
	} else {
		api.Use(middleware.StaticUser(LocalUserID))
	}
	s.v1.RegisterRoutes(api)

	if s.cfg.Server.DevMode {
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, devFrontendURL+c.Request.URL.Path)
		})
	}
}

// health reports whether the database answers
// GET /health
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": s.store.Driver()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": s.store.Driver()})
}

// Handler root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Signer token signer; nil in local mode
func (s *Server) Signer() *auth.Signer {
	return s.signer
}

// Run serves on addr until Shutdown
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// GetStore store in use (for tests)
func (s *Server) GetStore() *store.Store {
	return s.store
}
