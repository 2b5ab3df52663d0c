package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/collectdin/internal/node"
	"github.com/danmuck/collectdin/internal/observability"
	"github.com/danmuck/collectdin/internal/protocol/schema"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	Version = "0.1.0"

	shutdownTimeout = 5 * time.Second
)

// Types is the read side of the type registry served under /types.
type Types interface {
	schema.Lookup
	Names() []string
}

// Admin is the operator HTTP surface of a collectdin node.
type Admin struct {
	ID      string
	Addr    string
	Started time.Time

	types  Types
	ready  func() bool
	router *gin.Engine
	logger zerolog.Logger
}

var _ node.Node = (*Admin)(nil)

// New builds the admin router. ready reports whether ingestion is up; a nil
// ready is always ready.
func New(id, addr string, corsOrigins []string, types Types, ready func() bool, logger zerolog.Logger) *Admin {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger, "/metrics", "/health", "/ready"))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if ready == nil {
		ready = func() bool { return true }
	}
	a := &Admin{
		ID:      id,
		Addr:    addr,
		Started: time.Now(),
		types:   types,
		ready:   ready,
		router:  r,
		logger:  logger,
	}
	a.registerRoutes()
	return a
}

func (a *Admin) NodeID() string {
	return a.ID
}

func (a *Admin) Kind() string {
	return "collectdin"
}

func (a *Admin) HTTPRouter() *gin.Engine {
	return a.router
}

// Serve listens on Addr until ctx is cancelled, then shuts down gracefully.
func (a *Admin) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.Addr).Msg("admin listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin serve %s: %w", a.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info().Msg("admin stopped")
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
