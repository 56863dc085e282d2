package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Server wraps the http.Server running the router.
type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
}

// NewServer prepares a server on addr. Zero timeouts leave the http.Server
// defaults in place.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, log logrus.FieldLogger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			MaxHeaderBytes:    1 << 20,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			ReadHeaderTimeout: 3 * time.Second,
		},
		log: log,
	}
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
