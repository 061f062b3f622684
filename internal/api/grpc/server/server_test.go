package server

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/dtroode/gatekeeper/internal/mocks"
)

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":50051")
	assert.Equal(t, ":50051", s.Address())
}

func TestGRPCServer_Stop(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.NoError(t, s.Stop(context.Background()))
}

func TestGRPCServer_Start_ListensAndServes(t *testing.T) {
	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := mocks.NewSecurityLayer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	sec.On("Listen", "tcp", ":0").Return(ln, nil)

	served := make(chan error, 1)
	go func() { served <- srv.Start(sec) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	_ = conn.Close()

	require.NoError(t, srv.Stop(context.Background()))
	if err := <-served; err != nil {
		// Stop may win the race against Serve
		assert.ErrorIs(t, err, grpc.ErrServerStopped)
	}
}

func TestGRPCServer_Start_ListenError(t *testing.T) {
	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(nil, errors.New("address in use"))

	err := srv.Start(sec)
	assert.ErrorContains(t, err, "failed to listen")
}
