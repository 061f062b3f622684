package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.Server = (*Server)(nil)

// Server runs the operational HTTP endpoint.
type Server struct {
	server *http.Server
}

func NewServer(handler http.Handler, addr string) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves on the configured address through securityLayer. It blocks
// until the server stops and returns nil after a graceful shutdown.
func (s *Server) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Address() string {
	return s.server.Addr
}
