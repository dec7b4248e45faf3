// Package server is the HTTP backend: static client assets, health,
// progress import/export and the chat completion proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
)

// Completer forwards a chat completion request upstream.
type Completer = llm.Completer

// Config wires the server's dependencies. Chat may be nil when no key is
// configured; the chat route then answers 500.
type Config struct {
	Progress  *progress.Store
	Chat      Completer
	Log       *logger.Logger
	StaticDir string

	// Tracing enables the otelgin middleware.
	Tracing     bool
	ServiceName string

	// Now is used for health timestamps and export names.
	Now func() time.Time
}

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

// New builds the gin engine and registers all routes.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(AttachRequestID())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS())

	h := &handlers{progress: cfg.Progress, chat: cfg.Chat, log: cfg.Log, now: cfg.Now}

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		if cfg.Progress != nil {
			api.GET("/progress", h.getProgress)
			api.POST("/progress", h.postProgress)
			api.GET("/export", h.export)
		}
		api.POST("/ai/chat", h.chat)
	}

	var spa gin.HandlerFunc
	if cfg.StaticDir != "" {
		spa = SPAHandler(cfg.StaticDir)
	}
	r.NoRoute(func(c *gin.Context) {
		if spa == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		spa(c)
	})

	return &Server{Engine: r, log: cfg.Log}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func notFound(c *gin.Context) {
	RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}
