package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ridertrack/internal/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// GracefulServer wraps Echo server with graceful shutdown capabilities
type GracefulServer struct {
	echo            *echo.Echo
	logger          *logger.ZapLogger
	port            int
	shutdownTimeout time.Duration
	components      *ShutdownManager
}

// NewGracefulServer creates a new server with graceful shutdown
func NewGracefulServer(e *echo.Echo, zapLogger *logger.ZapLogger, port int) *GracefulServer {
	return &GracefulServer{
		echo:            e,
		logger:          zapLogger,
		port:            port,
		shutdownTimeout: defaultShutdownTimeout,
		components:      NewShutdownManager(zapLogger),
	}
}

// WithShutdownTimeout bounds the time spent draining requests and components
func (s *GracefulServer) WithShutdownTimeout(d time.Duration) *GracefulServer {
	if d > 0 {
		s.shutdownTimeout = d
	}
	return s
}

// OnShutdown registers a component cleanup, run after the HTTP server stops
func (s *GracefulServer) OnShutdown(fn func(context.Context) error) {
	s.components.Register(fn)
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *GracefulServer) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done or the listener fails
func (s *GracefulServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", s.port)
		s.logger.Info("Starting HTTP server", logger.String("address", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", logger.Err(err))
			s.shutdownComponents()
			return fmt.Errorf("failed to start server: %w", err)
		}
		return s.shutdownComponents()
	case <-ctx.Done():
		s.logger.Info("Received shutdown signal")
	}

	return s.Shutdown()
}

// Shutdown stops accepting requests, drains in-flight ones, then runs the
// registered component cleanups
func (s *GracefulServer) Shutdown() error {
	s.logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	httpErr := s.echo.Shutdown(ctx)
	if httpErr != nil {
		s.logger.Error("Server forced to shutdown", logger.Err(httpErr))
	}

	compErr := s.components.Shutdown(ctx)
	if httpErr != nil || compErr != nil {
		return errors.Join(httpErr, compErr)
	}

	s.logger.Info("Server shutdown completed")
	return nil
}

func (s *GracefulServer) shutdownComponents() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.components.Shutdown(ctx)
}

// ShutdownManager runs registered cleanup functions in reverse order
type ShutdownManager struct {
	logger    *logger.ZapLogger
	functions []func(context.Context) error
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(zapLogger *logger.ZapLogger) *ShutdownManager {
	return &ShutdownManager{
		logger:    zapLogger,
		functions: make([]func(context.Context) error, 0),
	}
}

// Register adds a cleanup function to be called during shutdown
func (sm *ShutdownManager) Register(fn func(context.Context) error) {
	sm.functions = append(sm.functions, fn)
}

// Shutdown executes all registered cleanup functions, last registered first.
// A failing component does not stop the others.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.logger.Info("Starting graceful shutdown of components", logger.Int("components", len(sm.functions)))

	var errs []error
	for i := len(sm.functions) - 1; i >= 0; i-- {
		if err := sm.functions[i](ctx); err != nil {
			sm.logger.Error("Error during component shutdown",
				logger.Int("component", i),
				logger.Err(err))
			errs = append(errs, err)
		}
	}
	sm.functions = sm.functions[:0]

	if len(errs) > 0 {
		return fmt.Errorf("%d component(s) failed to shut down: %w", len(errs), errors.Join(errs...))
	}
	sm.logger.Info("All components shutdown completed")
	return nil
}
