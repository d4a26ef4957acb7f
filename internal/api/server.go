// Package api exposes the download queue over HTTP: a small JSON API built
// with gin and a websocket stream of item updates.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ytget/ytdl-mini/internal/appstate"
	"github.com/ytget/ytdl-mini/internal/model"
)

// DefaultAddr is the listen address of the serve command
const DefaultAddr = "127.0.0.1:8787"

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to the application state
type Server struct {
	state   *appstate.State
	hub     *Hub
	engine   *gin.Engine
	upgrader *websocket.Upgrader
	origins  []string
	logger  *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCORSOrigins sets the origins allowed by the CORS middleware and the
// websocket handshake
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer builds the router. Call Start (or Run) before serving so item
// updates reach websocket clients.
func NewServer(state *appstate.State, opts ...Option) *Server {
	s := &Server{
		state:  state,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.origins) == 0 {
		s.origins = DefaultCORSOrigins
	}
	s.logger = s.logger.With("component", "api")
	s.hub = NewHub(s.logger)
	s.upgrader = newUpgrader(s.origins)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(CORS(s.origins))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/downloads", s.listDownloads)
		api.POST("/downloads", s.createDownload)
		api.POST("/downloads/clear", s.clearCompleted)
		api.GET("/downloads/:id", s.getDownload)
		api.DELETE("/downloads/:id", s.deleteDownload)

		api.POST("/playlists", s.createPlaylist)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)

		api.GET("/ws", s.websocket)
	}

	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the websocket hub until ctx is done and forwards item updates to it
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	s.state.OnUpdate(func(item model.DownloadItem) {
		s.hub.Broadcast(itemMessage(item))
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
