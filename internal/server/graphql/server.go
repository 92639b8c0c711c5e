package graphql

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go"
)

const shutdownTimeout = 10 * time.Second

// Server serves the GraphQL endpoint and a health check over HTTP.
type Server struct {
	address string
	logger  logging.Logger
	schema  *graphql.Schema
	users   UserService
	engine  *gin.Engine
}

func NewServer(address string, l logging.Logger, r *Resolver, allowedOrigins []string) (*Server, error) {
	schema, err := NewSchema(r)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		schema:  schema,
		users:   r.users,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	// cors.New rejects a config with no origin at all; no list means no CORS.
	if len(allowedOrigins) > 0 {
		engine.Use(cors.New(corsConfig(allowedOrigins)))
	}
	engine.Use(s.authenticate())
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/graphql", s.handleGraphQL)
	s.engine = engine

	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "http shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (s *Server) handleGraphQL(c *gin.Context) {
	var req graphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "request body must be a JSON object with a query"}}})
		return
	}

	resp := s.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
