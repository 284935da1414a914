// Package http exposes the authentication API over HTTP using gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type userService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Token, error)
}

type HTTPServer struct {
	address string
	users   userService
	tokens  *auth.TokenService
	logger  logging.Logger
	now     func() time.Time
	engine  *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, us userService, ts *auth.TokenService) *HTTPServer {
	s := &HTTPServer{
		address: a,
		users:   us,
		tokens:  ts,
		logger:  l.With("module", "http_server"),
		now:     time.Now,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger))

	r.GET("/health", s.health)

	for _, prefix := range []string{"/auth", "/api/v1/auth"} {
		g := r.Group(prefix)
		g.POST("/register", s.register)
		g.POST("/login", s.login)
	}

	api := r.Group("/api", JWTAuth(s.tokens, s.logger, s.clock))
	api.GET("/me", s.me)
	api.GET("/v2/weather", s.weather)

	return r
}

func (s *HTTPServer) clock() time.Time {
	return s.now()
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
