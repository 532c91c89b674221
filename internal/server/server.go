// Package server wires the GraphQL handler, the schema explorer page and
// the operational endpoints into an HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hmans/tweetgraph/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

const shutdownTimeout = 5 * time.Second

// Server serves the GraphQL API over HTTP.
type Server struct {
	addr    string
	graphql http.Handler
	metrics *metrics.Metrics
	logger  *zap.Logger
	router  *gin.Engine
}

// New builds a server listening on addr. graphql executes GraphQL requests.
func New(addr string, graphql http.Handler, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:    addr,
		graphql: graphql,
		metrics: m,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(s.recoverPanic), s.requestID(), s.accessLog())

	// The GraphQL handler answers unsupported methods with its own 405.
	api := s.graphqlEndpoint()
	for _, path := range []string{"/", "/graphql"} {
		r.Any(path, api)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

// graphqlEndpoint serves GraphQL requests, and the explorer page on a GET
// that carries no query.
func (s *Server) graphqlEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && c.Query("query") == "" {
			playground.Handler("tweetgraph", c.Request.URL.Path).ServeHTTP(c.Writer, c.Request)
			return
		}
		s.graphql.ServeHTTP(c.Writer, c.Request)
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
			s.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(latency.Seconds())
		}

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}

func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.logger.Error("panic serving request",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
		zap.Stack("stack"))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"errors": []gin.H{{"message": "internal server error"}},
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
