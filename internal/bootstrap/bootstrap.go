// Package bootstrap runs a process until it fails or is asked to stop.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds the time all shutdown hooks get together
const DefaultShutdownTimeout = 5 * time.Second

type ShutdownHook func(ctx context.Context) error

type App struct {
	mu              sync.Mutex
	hooks           []ShutdownHook
	signals         []os.Signal
	shutdownTimeout time.Duration
}

type Option func(*App)

// WithShutdownTimeout sets the deadline of the context passed to the hooks.
// A non-positive timeout keeps the default.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) {
		if timeout > 0 {
			a.shutdownTimeout = timeout
		}
	}
}

// WithSignals replaces the signals that trigger a shutdown
func WithSignals(signals ...os.Signal) Option {
	return func(a *App) {
		a.signals = signals
	}
}

func New(opts ...Option) *App {
	app := &App{
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// AddShutdownHook registers fn to be called on shutdown.
// Hooks run in reverse order of registration. Safe for concurrent use.
func (a *App) AddShutdownHook(fn ShutdownHook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run calls run and waits for it to return or for a signal.
// On a signal, or when ctx is canceled, the shutdown hooks run and their joined error is returned.
// Otherwise the error of run is returned as is.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errCh:
		// run may return as a consequence of the signal
		if err == nil && ctx.Err() != nil {
			return a.shutdown()
		}
		return err
	}
}

func (a *App) shutdown() error {
	slog.Default().Info("shutting down", slog.Duration("timeout", a.shutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.mu.Lock()
	hooks := make([]ShutdownHook, len(a.hooks))
	copy(hooks, a.hooks)
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			slog.Default().Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
