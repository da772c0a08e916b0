package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/beka-birhanu/quill-api/api/i"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Router manages the HTTP server and its dependencies,
// including controllers and bearer token authentication.
type Router struct {
	baseURL                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
	middlewares             []gin.HandlerFunc
	metricsHandler          http.Handler
	accessLog               io.Writer
	logger                  logr.Logger
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	BaseURL                 string // Base URL for API routes
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc
	Middlewares             []gin.HandlerFunc // Run before every route
	MetricsHandler          http.Handler      // Served at /metrics when set
	AccessLog               io.Writer         // Request log, defaults to stdout
	Logger                  logr.Logger
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	accessLog := config.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	return &Router{
		baseURL:                 config.BaseURL,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
		middlewares:             config.Middlewares,
		metricsHandler:          config.MetricsHandler,
		accessLog:               accessLog,
		logger:                  config.Logger,
	}
}

// Handler builds the gin engine with routes under the base URL at two access levels:
// - Public routes: No authentication required.
// - Protected routes: Authentication required.
func (r *Router) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(r.accessLog), gin.Recovery())
	router.Use(r.middlewares...)

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		// Public routes (accessible without authentication)
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		// Protected routes (authentication required)
		protectedRoutes := api.Group("/v1")
		if r.authorizationMiddleware != nil {
			protectedRoutes.Use(r.authorizationMiddleware)
		}
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}
	}

	return router
}

// Serve answers requests on ln until ctx ends, then shuts down gracefully.
func (r *Router) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
