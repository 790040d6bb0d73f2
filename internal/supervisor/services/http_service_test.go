// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockServer implements HTTPServer with controllable behavior.
type mockServer struct {
	listenErr   error
	shutdownErr error
	shutdown    chan struct{}
	done        chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.shutdown
	close(m.done)
	return nil
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	close(m.shutdown)
	return m.shutdownErr
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	srv := newMockServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	select {
	case <-srv.done:
	default:
		t.Error("server was not shut down")
	}
}

func TestHTTPServerServiceStartupFailure(t *testing.T) {
	srv := newMockServer()
	srv.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerServiceString(t *testing.T) {
	if got := NewHTTPServerService(newMockServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}
